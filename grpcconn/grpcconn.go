package grpcconn

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcCredentials "google.golang.org/grpc/credentials"
	insecureGrpc "google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/credentials/oauth"
	"google.golang.org/grpc/status"

	"go.dealroom.build/cloudrunauth/credentials"
	"go.dealroom.build/cloudrunauth/internal/validate"
)

type identityTokenCredentials struct {
	oauth.TokenSource
}

/*
New creates a gRPC connection to a private Cloud Run service.
  - host should be of the form domain:port, for example: `your-app-on-cloudrun-abcdef-ew.a.run.app:443`
  - set insecure to `true` when testing your gRPC server locally.

Rather than adding the Authorization header to each request by hand, the
connection carries per-RPC credentials backed by the same identity token
chain the HTTP session uses: the audience is derived from the host, and the
token is cached and refreshed upon expiry.
*/
func New(ctx context.Context, host string, insecure bool) (*grpc.ClientConn, error) {
	if err := validate.Argument("host", host, validate.HostRegex); err != nil {
		return nil, err
	}

	opts := []grpc.DialOption{grpc.WithAuthority(host)}

	if insecure {
		opts = append(opts, grpc.WithTransportCredentials(insecureGrpc.NewCredentials()))
	} else {
		systemRoots, err := x509.SystemCertPool()
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithTransportCredentials(
			grpcCredentials.NewTLS(&tls.Config{RootCAs: systemRoots})))

		// With Cloud Run, the audience is the URL of the service you are invoking.
		audience := "https://" + strings.Split(host, ":")[0]
		tokenSource, err := credentials.NewTokenSource(ctx, audience)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "resolve identity token source: %s", err)
		}
		opts = append(opts, grpc.WithPerRPCCredentials(identityTokenCredentials{
			TokenSource: oauth.TokenSource{TokenSource: tokenSource},
		}))
	}

	return grpc.NewClient(host, opts...)
}
