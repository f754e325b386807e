// Copyright 2024 Dealroom. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package credentials resolves the ambient Google identity and produces identity
tokens bound to a target audience, typically the URL of a private Cloud Run
service or Cloud Function.

The resolution order matches Application Default Credentials: the file named by
the GOOGLE_APPLICATION_CREDENTIALS environment variable, then the gcloud
application-default credentials file, then the metadata server. Unlike the
standard ADC flow, authorized user credentials are also turned into an identity
token source, which makes local development with 'gcloud auth
application-default login' work the same way as a deployed service account.
*/
package credentials //import "go.dealroom.build/cloudrunauth/credentials"
