package models

// User is the identity record returned by the auth endpoints, or derived
// from access-token claims when the session is restored from the local cache
// (in that case only Username is populated).
type User struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// Profile is the editable part of the signed-in user's account.
type Profile struct {
	Email string `json:"email"`
	Bio   string `json:"bio"`
}
