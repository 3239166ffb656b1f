// Package services holds the client-side application logic: the session
// service that owns authentication state and token persistence, and the
// snippet service that validates input before handing it to the API layer.
package services
