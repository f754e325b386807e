package cloudrunauth

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

type sessionOptions struct {
	timeout     time.Duration
	userAgent   string
	joinURL     URLJoiner
	keepAlive   bool
	client      *http.Client
	tokenSource oauth2.TokenSource
}

// SessionOption is a functional option for the NewSession method.
type SessionOption func(*sessionOptions)

// WithTimeout sets the session-wide request timeout.
//
// If not provided, DefaultTimeout is used. The timeout covers the whole
// request, including reading the response body. It is ignored when a custom
// client is supplied through WithHTTPClient.
func WithTimeout(timeout time.Duration) SessionOption {
	return func(opts *sessionOptions) {
		opts.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header for all requests of the session.
//
// If not provided, a default is derived from the K_SERVICE and K_REVISION
// environment variables which Cloud Run and Cloud Functions set on every
// container, so the calling service shows up in the request logs of the
// receiving service.
func WithUserAgent(userAgent string) SessionOption {
	return func(opts *sessionOptions) {
		opts.userAgent = userAgent
	}
}

// WithURLJoiner overrides how request paths are resolved against the base
// URL. The default is JoinURL.
func WithURLJoiner(joinURL URLJoiner) SessionOption {
	return func(opts *sessionOptions) {
		opts.joinURL = joinURL
	}
}

// WithoutKeepAlive forces the connection to close after each request.
//
// In general connections should be reused, but this can be useful when the
// receiving service scales aggressively and stale connections start failing.
func WithoutKeepAlive() SessionOption {
	return func(opts *sessionOptions) {
		opts.keepAlive = false
	}
}

// WithHTTPClient makes the session dispatch requests through the given
// client instead of a default one built from the session timeout.
func WithHTTPClient(client *http.Client) SessionOption {
	return func(opts *sessionOptions) {
		opts.client = client
	}
}

// WithTokenSource makes the session use the given token source instead of
// resolving the ambient credentials. The source must mint tokens whose
// audience is the session's base URL.
func WithTokenSource(tokenSource oauth2.TokenSource) SessionOption {
	return func(opts *sessionOptions) {
		opts.tokenSource = tokenSource
	}
}
