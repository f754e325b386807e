// Command idtoken prints a Google identity token for the ambient credentials.
// Useful for quick local development:
//
//	ID_TOKEN="$(idtoken -audience https://my-service-abcdef-ew.a.run.app)"
//	curl "https://www.googleapis.com/oauth2/v3/tokeninfo?id_token=${ID_TOKEN}"
package main

import (
	"context"
	"flag"
	"fmt"

	"go.alis.build/alog"

	"go.dealroom.build/cloudrunauth/credentials"
)

func main() {
	audience := flag.String("audience", "", "audience to mint the token for, typically the URL of a Cloud Run service; may be empty for authorized user credentials")
	credentialsFile := flag.String("credentials-file", "", "path to a service account or authorized user key file; defaults to the ambient credential chain")
	flag.Parse()

	ctx := context.Background()

	var opts []credentials.Option
	if *credentialsFile != "" {
		opts = append(opts, credentials.WithCredentialsFile(*credentialsFile))
	}

	tokenSource, err := credentials.NewTokenSource(ctx, *audience, opts...)
	if err != nil {
		alog.Fatalf(ctx, "resolve credentials: %s", err)
	}
	token, err := tokenSource.Token()
	if err != nil {
		alog.Fatalf(ctx, "obtain identity token: %s", err)
	}

	fmt.Println(token.AccessToken)
}
