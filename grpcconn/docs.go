// Copyright 2024 Dealroom. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package grpcconn creates gRPC connections to private Cloud Run services with
identity-token credentials injected per RPC.

It follows the example: Send gRPC requests with authentication as per the
Cloud Run endpoints documentation at
https://cloud.google.com/run/docs/samples/cloudrun-grpc-request-auth
*/
package grpcconn //import "go.dealroom.build/cloudrunauth/grpcconn"
