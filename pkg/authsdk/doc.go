/*
Package authsdk is a Go client for the login gateway.

# Overview

The gateway exchanges an email and password for three session cookies and
later verifies the access token cookie on behalf of other services.

	client := authsdk.NewSDKClient("https://login.example.com")

	cookies, err := client.Login(ctx, "user@example.com", "password")
	if err != nil {
		// *authsdk.Error carries the status and the plain text message.
	}

	info, err := client.Authorize(ctx, cookies)
	if authsdk.IsUnauthorized(err) {
		// Missing cookie or rejected token.
	}

# Errors

Every non-2xx response is returned as *Error. Login failures carry the
gateway's user facing message. Authorize failures have an empty body so
only StatusCode is meaningful.
*/
package authsdk
