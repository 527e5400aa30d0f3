package pricing

import "time"

var malaysiaLocation = loadMalaysia()

func loadMalaysia() *time.Location {
	loc, err := time.LoadLocation("Asia/Kuala_Lumpur")
	if err != nil {
		return time.FixedZone("MYT", 8*60*60)
	}
	return loc
}

// MalaysiaTime converts t to Kuala Lumpur local time.
func MalaysiaTime(t time.Time) time.Time {
	return t.In(malaysiaLocation)
}

// MalaysiaNow is the current time in Kuala Lumpur.
func MalaysiaNow() time.Time {
	return MalaysiaTime(time.Now())
}
