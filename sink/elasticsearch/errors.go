package elasticsearch

import (
	"errors"
	"fmt"
)

var (
	// ErrEndpointsExclusive is returned when both the deprecated `endpoint`
	// option and the `endpoints` list are set.
	ErrEndpointsExclusive = errors.New(`both "endpoint" and "endpoints" options are set; use only "endpoints"`)

	// ErrEndpointRequired is returned when no endpoint is configured at all.
	ErrEndpointRequired = errors.New(`at least one endpoint must be set in the "endpoints" option`)

	// ErrRegionRequired is returned when the "aws" auth strategy is selected
	// but no region could be resolved.
	ErrRegionRequired = errors.New(`aws auth requires a region; set the "aws.region" option`)
)

// InvalidHostError is returned when an endpoint is not a parseable URL.
type InvalidHostError struct {
	Host string
	Err  error
}

func (e *InvalidHostError) Error() string {
	return fmt.Sprintf("invalid host %q: %s", e.Host, e.Err)
}

func (e *InvalidHostError) Unwrap() error { return e.Err }

// MissingHostnameError is returned when an endpoint parses as a URL but has
// no hostname, e.g. a bare path.
type MissingHostnameError struct {
	Host string
}

func (e *MissingHostnameError) Error() string {
	return fmt.Sprintf("host %q must include a hostname", e.Host)
}

// AuthConflictError is returned when two competing sources of credentials
// are configured at once.
type AuthConflictError struct {
	Reason string
}

func (e *AuthConflictError) Error() string {
	return "conflicting authentication: " + e.Reason
}

// InvalidAPIVersionError is returned for an unknown `api_version` value.
type InvalidAPIVersionError struct {
	Value string
}

func (e *InvalidAPIVersionError) Error() string {
	return fmt.Sprintf(`unknown api_version %q, expected "auto", "v6", "v7" or "v8"`, e.Value)
}

// UnexpectedStatusError is returned by Healthcheck when the cluster health
// endpoint answers with anything but 200 OK.
type UnexpectedStatusError struct {
	Status int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("health check returned unexpected status code %d", e.Status)
}
