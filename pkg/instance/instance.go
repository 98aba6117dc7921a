package instance

import (
	"os"
	"strings"
)

// ID identifies the running process in logs. It prefers an explicit
// TRAILTEAMS_INSTANCE_ID, then the container hostname, then "<service>-0".
func ID(service string) string {
	for _, key := range []string{"TRAILTEAMS_INSTANCE_ID", "HOSTNAME"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if service == "" {
		service = "trailteams"
	}
	return service + "-0"
}
