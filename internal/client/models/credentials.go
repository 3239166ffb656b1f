// Package models defines client-side data models used by the Snipper CLI.
package models

// Credentials is the token pair issued by the Snipper auth endpoints.
// The two tokens travel together: an access token is never cached without
// the refresh token that can replace it.
type Credentials struct {
	// AccessToken is the short-lived bearer token attached to API calls.
	AccessToken string

	// RefreshToken is the longer-lived token used only to mint a new pair.
	RefreshToken string
}
