package enums

import "fmt"

// PriceSource records where a gold price sample came from.
type PriceSource string

const (
	PriceSourceSystem   PriceSource = "system"
	PriceSourceSeed     PriceSource = "seed"
	PriceSourceFallback PriceSource = "fallback"
)

var validPriceSources = []PriceSource{
	PriceSourceSystem,
	PriceSourceSeed,
	PriceSourceFallback,
}

func (p PriceSource) String() string {
	return string(p)
}

func (p PriceSource) IsValid() bool {
	for _, candidate := range validPriceSources {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParsePriceSource(value string) (PriceSource, error) {
	for _, candidate := range validPriceSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price source %q", value)
}
