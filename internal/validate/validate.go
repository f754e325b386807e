package validate

import (
	"regexp"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// HostRegex matches the host:port form expected when dialling a service,
	// for example: my-service-abcdef-ew.a.run.app:443
	HostRegex = `^[a-zA-Z0-9.-]+:\d+$`
)

// Argument validates an argument and returns a grpc error if not valid.
func Argument(name string, value string, regex string) error {
	// validate the value using regex
	if !regexp.MustCompile(regex).MatchString(value) {
		return status.Errorf(
			codes.InvalidArgument,
			"%s (%s) is not of the right format: %s", name, value, regex)
	}
	return nil
}
