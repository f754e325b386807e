package cloudrunauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"go.dealroom.build/cloudrunauth/credentials"
)

// DefaultTimeout is the session-wide request timeout used when no
// WithTimeout option is provided.
const DefaultTimeout = 120 * time.Second

// URLJoiner resolves a request path against the session's base URL.
type URLJoiner func(baseURL, path string) string

// Session issues HTTP requests to a single service, attaching a Google
// identity token for that service to every request. The configuration is
// fixed at construction.
//
// A Session may be shared across goroutines: the underlying token source
// serializes refreshes and the remaining fields are read-only.
type Session struct {
	baseURL     string
	tokenSource oauth2.TokenSource
	client      *http.Client
	userAgent   string
	joinURL     URLJoiner
	closeConn   bool
}

/*
NewSession returns a session which makes authorized requests to the service
at baseURL.

baseURL is both the prefix all request paths are resolved against and the
audience the identity token is minted for. The ambient identity is resolved
through the credentials package; if no identity is available, NewSession
fails with credentials.ErrCredentialsNotFound rather than producing a
session that would send unauthenticated requests.
*/
func NewSession(ctx context.Context, baseURL string, opts ...SessionOption) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("base URL (%s) is not an absolute http(s) URL", baseURL)
	}

	options := &sessionOptions{
		timeout:   DefaultTimeout,
		userAgent: defaultUserAgent(),
		joinURL:   JoinURL,
		keepAlive: true,
	}
	for _, opt := range opts {
		opt(options)
	}

	s := &Session{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: options.userAgent,
		joinURL:   options.joinURL,
		closeConn: !options.keepAlive,
	}

	if options.tokenSource != nil {
		s.tokenSource = options.tokenSource
	} else {
		ts, err := credentials.NewTokenSource(ctx, s.baseURL)
		if err != nil {
			return nil, err
		}
		s.tokenSource = ts
	}

	if options.client != nil {
		s.client = options.client
	} else {
		s.client = &http.Client{Timeout: options.timeout}
	}

	return s, nil
}

// BaseURL returns the base URL all request paths are resolved against, which
// is also the audience of the attached identity tokens.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// UserAgent returns the User-Agent header value set on requests that do not
// provide their own. An empty string leaves the header to net/http.
func (s *Session) UserAgent() string {
	return s.userAgent
}

// Get issues a GET request to the given path.
func (s *Session) Get(ctx context.Context, path string) (*http.Response, error) {
	return s.do(ctx, http.MethodGet, path, "", nil)
}

// Head issues a HEAD request to the given path.
func (s *Session) Head(ctx context.Context, path string) (*http.Response, error) {
	return s.do(ctx, http.MethodHead, path, "", nil)
}

// Delete issues a DELETE request to the given path.
func (s *Session) Delete(ctx context.Context, path string) (*http.Response, error) {
	return s.do(ctx, http.MethodDelete, path, "", nil)
}

// Post issues a POST request to the given path with the given body.
func (s *Session) Post(ctx context.Context, path string, contentType string, body io.Reader) (*http.Response, error) {
	return s.do(ctx, http.MethodPost, path, contentType, body)
}

// Put issues a PUT request to the given path with the given body.
func (s *Session) Put(ctx context.Context, path string, contentType string, body io.Reader) (*http.Response, error) {
	return s.do(ctx, http.MethodPut, path, contentType, body)
}

// Patch issues a PATCH request to the given path with the given body.
func (s *Session) Patch(ctx context.Context, path string, contentType string, body io.Reader) (*http.Response, error) {
	return s.do(ctx, http.MethodPatch, path, contentType, body)
}

// Do issues a request with an arbitrary method to the given path. The path is
// resolved against the base URL, so pass "resource" or "/resource" rather
// than an absolute URL.
func (s *Session) Do(ctx context.Context, method string, path string, body io.Reader) (*http.Response, error) {
	return s.do(ctx, method, path, "", body)
}

func (s *Session) do(ctx context.Context, method string, path string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.joinURL(s.baseURL, path), body)
	if err != nil {
		return nil, err
	}

	// Obtain a valid token before dispatch. The source re-acquires the token
	// if the cached one is absent or expired.
	token, err := s.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("obtain identity token for %s: %w", s.baseURL, err)
	}
	token.SetAuthHeader(req)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.closeConn {
		req.Close = true
	}

	return s.client.Do(req)
}

// JoinURL is the default URLJoiner. The path is resolved against the base
// URL, and the leading-slash and slash-less forms of a path resolve to the
// same URL, also when the base URL itself carries a path.
func JoinURL(baseURL, path string) string {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	return base.ResolveReference(ref).String()
}
