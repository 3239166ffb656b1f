package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/snipperhq/snipper-cli/internal/client/models"
)

// Profile prints the authenticated user's account details.
func (a *App) Profile(ctx context.Context) error {
	user, err := a.snippets.Profile(ctx)
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}

	printlnFn(fmt.Sprintf("Username: %s", user.Username))
	printlnFn(fmt.Sprintf("Email:    %s", user.Email))
	if user.Bio != "" {
		printlnFn(fmt.Sprintf("Bio:      %s", user.Bio))
	}
	return nil
}

// EditProfile prompts for the editable profile fields; empty answers keep
// the current values.
func (a *App) EditProfile(ctx context.Context) error {
	current, err := a.snippets.Profile(ctx)
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}

	email, err := getSimpleText(a.reader, promptWithDefault("Email", current.Email), os.Stdout)
	if err != nil {
		return err
	}
	if email == "" {
		email = current.Email
	}

	bio, err := getSimpleText(a.reader, promptWithDefault("Bio", current.Bio), os.Stdout)
	if err != nil {
		return err
	}
	if bio == "" {
		bio = current.Bio
	}

	updated, err := a.snippets.UpdateProfile(ctx, models.Profile{Email: email, Bio: bio})
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}
	fmt.Printf("Profile updated for %s.\n", updated.Username)
	return nil
}
