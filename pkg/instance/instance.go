package instance

import "os"

const envKey = "ESTATEHUB_INSTANCE_ID"

// ID identifies the running process in lock values and logs. It falls back to
// the hostname, then to a fixed name when neither is available.
func ID() string {
	if id := os.Getenv(envKey); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "estatehub-0"
}
