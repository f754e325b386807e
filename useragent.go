package cloudrunauth

import "os"

// defaultUserAgent derives a User-Agent value from the K_SERVICE and
// K_REVISION environment variables, which are reserved on Cloud Run and
// Cloud Functions as per
// https://cloud.google.com/run/docs/container-contract#services-env-vars
func defaultUserAgent() string {
	service := os.Getenv("K_SERVICE")
	revision := os.Getenv("K_REVISION")
	switch {
	case service != "" && revision != "":
		return service + "/" + revision
	case service != "":
		return service
	case revision != "":
		return revision
	}
	return ""
}
