package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"cloud.google.com/go/compute/metadata"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

const (
	// EnvVar is the environment variable pointing at an explicit credentials file,
	// as per https://cloud.google.com/docs/authentication/application-default-credentials
	EnvVar = "GOOGLE_APPLICATION_CREDENTIALS"

	serviceAccountType = "service_account"
	authorizedUserType = "authorized_user"

	adcFilename = "application_default_credentials.json"
)

// defaultScopes are the scopes requested when refreshing authorized user
// credentials. The openid scope is what makes the token endpoint return an
// id_token alongside the access token.
var defaultScopes = []string{"openid"}

// ErrCredentialsNotFound is returned when no ambient identity could be resolved.
var ErrCredentialsNotFound = errors.New(
	"could not automatically determine credentials: " +
		"set " + EnvVar + ", run 'gcloud auth application-default login', " +
		"or run on an environment with a metadata server such as Cloud Run")

// Options configure the resolution of a token source.
type Options struct {
	credentialsFile string
	credentialsJSON []byte
	scopes          []string
}

// Option is a functional option for the NewTokenSource method.
type Option func(*Options)

// WithCredentialsFile bypasses the ambient credential chain and loads the
// given service account or authorized user key file instead.
func WithCredentialsFile(path string) Option {
	return func(opts *Options) {
		opts.credentialsFile = path
	}
}

// WithCredentialsJSON bypasses the ambient credential chain and uses the
// given service account or authorized user key JSON instead.
func WithCredentialsJSON(data []byte) Option {
	return func(opts *Options) {
		opts.credentialsJSON = data
	}
}

// WithScopes overrides the scopes requested when refreshing authorized user
// credentials. The default is the single scope "openid".
func WithScopes(scopes ...string) Option {
	return func(opts *Options) {
		opts.scopes = scopes
	}
}

/*
NewTokenSource returns a token source which mints Google identity tokens for
the given audience. With Cloud Run, the audience is the URL of the service
you are invoking.

The ambient identity is resolved in the same order as Application Default
Credentials:

 1. the key file named by the GOOGLE_APPLICATION_CREDENTIALS environment variable
 2. the gcloud application-default credentials file
 3. the metadata server, when running on Google infrastructure

Tokens generally have a one-hour expiration time. The returned source caches
the token in memory and re-acquires it synchronously once expired, so it is
safe to call Token before every request.

If none of the above yields an identity, NewTokenSource fails with
ErrCredentialsNotFound. It never falls back to an unauthenticated source.

The audience may only be empty for authorized user credentials, which are not
bound to a specific audience by the token endpoint.
*/
func NewTokenSource(ctx context.Context, audience string, opts ...Option) (oauth2.TokenSource, error) {
	options := &Options{scopes: defaultScopes}
	for _, opt := range opts {
		opt(options)
	}

	if options.credentialsJSON != nil {
		return tokenSourceFromJSON(ctx, options.credentialsJSON, audience, options.scopes)
	}
	if options.credentialsFile != "" {
		return tokenSourceFromFile(ctx, options.credentialsFile, audience, options.scopes)
	}

	// 1. Explicit credentials file from the environment.
	if path := os.Getenv(EnvVar); path != "" {
		return tokenSourceFromFile(ctx, path, audience, options.scopes)
	}

	// 2. Credentials stored by 'gcloud auth application-default login'.
	if path := gcloudCredentialsPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return tokenSourceFromFile(ctx, path, audience, options.scopes)
		}
	}

	// 3. The metadata server's identity endpoint.
	if metadata.OnGCE() {
		return newMetadataTokenSource(ctx, audience)
	}

	return nil, ErrCredentialsNotFound
}

// tokenSourceFromFile loads a credentials key file and returns an identity
// token source for it.
func tokenSourceFromFile(ctx context.Context, path string, audience string, scopes []string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", path, err)
	}
	ts, err := tokenSourceFromJSON(ctx, data, audience, scopes)
	if err != nil {
		return nil, fmt.Errorf("credentials file %s: %w", path, err)
	}
	return ts, nil
}

// tokenSourceFromJSON dispatches on the "type" key of a credentials key file.
func tokenSourceFromJSON(ctx context.Context, data []byte, audience string, scopes []string) (oauth2.TokenSource, error) {
	var info struct {
		Type         string `json:"type"`
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("credentials are not valid JSON: %w", err)
	}

	switch info.Type {
	case serviceAccountType:
		if audience == "" {
			return nil, errors.New("an audience is required for service account credentials")
		}
		ts, err := idtoken.NewTokenSource(ctx, audience, idtoken.WithCredentialsJSON(data))
		if err != nil {
			return nil, fmt.Errorf("service account token source: %w", err)
		}
		return ts, nil

	case authorizedUserType:
		cfg := &oauth2.Config{
			ClientID:     info.ClientID,
			ClientSecret: info.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		}
		base := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: info.RefreshToken})
		return oauth2.ReuseTokenSource(nil, &userIDTokenSource{base: base}), nil

	default:
		return nil, fmt.Errorf("invalid credentials type (%s), expected one of: %s, %s",
			info.Type, serviceAccountType, authorizedUserType)
	}
}

// userIDTokenSource converts authorized user credentials into identity tokens
// by surfacing the id_token field of the token endpoint's refresh response.
type userIDTokenSource struct {
	base oauth2.TokenSource
}

func (s *userIDTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, errors.New("token response did not include an id_token, ensure the openid scope is requested")
	}
	expiry, err := tokenExpiry(raw)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: raw,
		TokenType:   "Bearer",
		Expiry:      expiry,
	}, nil
}

// gcloudCredentialsPath returns the well-known location of the gcloud
// application-default credentials file, or "" if it cannot be determined.
func gcloudCredentialsPath() string {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return ""
		}
		return filepath.Join(appData, "gcloud", adcFilename)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gcloud", adcFilename)
}
