package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, email and password and attempts to create
// a new account. On success the session is already authenticated with the
// issued tokens, so the user can start working right away.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Register(ctx, username, email, password); err != nil {
		printlnFn(a.session.Snapshot().Err)
		return err
	}

	fmt.Printf("Account created. Welcome, %s!\n", username)
	return nil
}

// Login prompts for credentials and authenticates against the server.
// Failures are reported as a single user-facing message taken from the
// session snapshot; the session never panics on a rejected login.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		printlnFn(a.session.Snapshot().Err)
		return err
	}

	fmt.Printf("Logged in as %s.\n", username)
	return nil
}

// Logout revokes the server-side session if possible and always clears the
// cached tokens, even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	a.loggingOut = true
	defer func() { a.loggingOut = false }()

	a.session.Logout(ctx)
	fmt.Println("Logged out.")
	return nil
}
