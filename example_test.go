package cloudrunauth_test

import (
	"context"
	"log"
	"time"

	"go.dealroom.build/cloudrunauth"
)

func ExampleNewSession() {
	ctx := context.Background()

	// The base URL of the Cloud Run service is also the audience the
	// identity token is minted for.
	session, err := cloudrunauth.NewSession(ctx, "https://my-service-abcdef-ew.a.run.app",
		cloudrunauth.WithTimeout(30*time.Second))
	if err != nil {
		log.Println(err)
		return
	}

	resp, err := session.Get(ctx, "companies/123")
	if err != nil {
		log.Println(err)
		return
	}
	defer resp.Body.Close()
}
