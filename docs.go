// Copyright 2024 Dealroom. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cloudrunauth provides a session-like HTTP client which authorizes
service-to-service requests to private Cloud Run services and Cloud Functions
through a Google identity token, as per the service-to-service authentication
documentation at https://cloud.google.com/run/docs/authenticating/service-to-service

A Session is bound to the base URL of the target service. That same URL is the
audience the identity token is minted for, and all request paths are resolved
against it. Tokens are cached and refreshed transparently when expired.
*/
package cloudrunauth //import "go.dealroom.build/cloudrunauth"
