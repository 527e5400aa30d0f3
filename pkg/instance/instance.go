// Package instance names the running replica for logs and lock ownership.
package instance

import "github.com/goldjewelmy/goldstore-backend/pkg/env"

// GetID returns the platform dyno name, then the host name, then "local".
func GetID() string {
	return env.First("local", "DYNO", "HOSTNAME")
}
