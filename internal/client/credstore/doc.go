// Package credstore persists the Snipper credential pair across CLI runs.
//
// The store is a small key-value table in a local SQLite database. Both
// tokens are written inside one transaction, so a reader can never observe
// an access token paired with a stale refresh token. Loading a store where
// either token is missing reports "no session" rather than a partial pair.
//
// Besides the token pair the store holds a generated client id that is
// attached to outgoing requests; unlike the tokens it survives Clear.
package credstore
