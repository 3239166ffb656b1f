// Package cli implements the interactive Snipper terminal client.
//
// The entry point is NewApp, which wires the credential store, the session
// service and the API gateway together, and (*App).Run, which restores a
// cached session and starts a small REPL. Command handlers live next to the
// domain they serve: auth.go for the account lifecycle, snippet.go for
// snippet CRUD and discovery, profile.go for account details.
//
// Handlers report their own errors to the user; the REPL only dispatches.
package cli
