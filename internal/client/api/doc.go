// Package api contains the HTTP building blocks of the Snipper CLI.
//
// # Overview
//
// The package provides:
//  1. Transport-facing contracts: AuthClient for the unauthenticated auth
//     endpoints and Client for everything that requires a bearer token.
//  2. Concrete implementations (HTTPAuthClient, HTTPClient) over net/http.
//  3. The request gateway: every Client call attaches the current access
//     token and, on a 401, performs exactly one refresh through the
//     injected Refresher followed by one resend. A second 401 invalidates
//     the session and surfaces ErrUnauthorized, so a call can never loop.
//
// # Error Handling
//
// Failed calls map to sentinel errors matched with errors.Is:
// ErrUnauthorized, ErrForbidden, ErrNotFound, ErrServer, ErrUnavailable.
// Forbidden, not-found, server and network failures are returned untouched;
// only 401 engages the refresh path.
//
// Concurrency & Contexts
//
// Both clients are safe for concurrent use. All operations accept a
// context.Context and honor cancellation; a per-request timeout applies
// when the context carries no deadline.
package api
