package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"cloud.google.com/go/compute/metadata"
	"golang.org/x/oauth2"
)

// newMetadataTokenSource returns a token source backed by the metadata
// server's identity endpoint, as per
// https://cloud.google.com/run/docs/authenticating/service-to-service
func newMetadataTokenSource(ctx context.Context, audience string) (oauth2.TokenSource, error) {
	if audience == "" {
		return nil, errors.New("an audience is required for metadata server credentials")
	}
	return oauth2.ReuseTokenSource(nil, &metadataTokenSource{
		ctx:      ctx,
		audience: audience,
		client:   metadata.NewClient(nil),
	}), nil
}

// metadataTokenSource mints identity tokens for the default service account
// attached to the instance or Cloud Run revision.
type metadataTokenSource struct {
	ctx      context.Context
	audience string
	client   *metadata.Client
}

func (s *metadataTokenSource) Token() (*oauth2.Token, error) {
	query := url.Values{}
	query.Set("audience", s.audience)
	query.Set("format", "full")

	raw, err := s.client.GetWithContext(s.ctx, "instance/service-accounts/default/identity?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("metadata server identity endpoint: %w", err)
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
