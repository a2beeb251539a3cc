package featureflags

import (
	"os"
	"strings"
)

// LiveFeed exposes GET /ws/appointments to doctors
const LiveFeed = "live_feed"

// Enabled reports whether FLAG_<NAME> is set to a truthy value
// (1, true, yes or on, case-insensitive)
func Enabled(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FLAG_" + strings.ToUpper(name)))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
