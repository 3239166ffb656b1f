package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/snipperhq/snipper-cli/internal/client/api"
	"github.com/snipperhq/snipper-cli/internal/client/models"
	"github.com/snipperhq/snipper-cli/internal/client/services"
)

// errorMessage maps gateway sentinels onto single-line messages suitable
// for the prompt. Anything unrecognized falls back to the error text.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrValidation):
		return err.Error()
	case errors.Is(err, api.ErrUnauthorized):
		return "Please log in first."
	case errors.Is(err, api.ErrForbidden):
		return "You do not have access to this snippet."
	case errors.Is(err, api.ErrNotFound):
		return "Snippet not found."
	case errors.Is(err, api.ErrUnavailable):
		return "Server is unreachable, try again later."
	case errors.Is(err, api.ErrServer):
		return "Server error, try again later."
	default:
		return err.Error()
	}
}

// snippetID resolves the target id from command arguments, prompting when
// the command was issued without one.
func (a *App) snippetID(args []string) (int64, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else {
		var err error
		raw, err = getSimpleText(a.reader, "Enter snippet id", os.Stdout)
		if err != nil {
			return 0, err
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snippet id %q", raw)
	}
	return id, nil
}

func printSummaryPage(page *models.Page[models.SnippetSummary]) {
	if page.TotalElements == 0 {
		printlnFn("Nothing found.")
		return
	}
	for _, s := range page.Content {
		line := fmt.Sprintf("#%d  %s", s.ID, s.Title)
		if s.Language != "" {
			line += fmt.Sprintf("  [%s]", s.Language)
		}
		line += fmt.Sprintf("  by %s  (%d views)", s.AuthorUsername, s.ViewCount)
		printlnFn(line)
	}
	printlnFn(fmt.Sprintf("Page %d of %d (%d total)", page.Page+1, page.TotalPages, page.TotalElements))
}

func printSnippet(s *models.Snippet) {
	printlnFn(fmt.Sprintf("#%d  %s", s.ID, s.Title))
	if s.Description != "" {
		printlnFn(s.Description)
	}
	meta := fmt.Sprintf("by %s  %s  %d views", s.AuthorUsername, strings.ToLower(string(s.Visibility)), s.ViewCount)
	if s.Language != "" {
		meta += "  " + s.Language
	}
	if s.Tags != "" {
		meta += "  tags: " + s.Tags
	}
	printlnFn(meta)
	printlnFn("---")
	printlnFn(s.Content)
}

// List shows the authenticated user's snippets.
func (a *App) List(ctx context.Context) error {
	page, err := a.snippets.Mine(ctx, models.ListOptions{})
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}
	printSummaryPage(page)
	return nil
}

// Explore shows public snippets; works without a session.
func (a *App) Explore(ctx context.Context) error {
	page, err := a.snippets.Explore(ctx, models.ListOptions{})
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}
	printSummaryPage(page)
	return nil
}

// Search looks up public snippets by free-text query. The query is taken
// from the command arguments or prompted for interactively.
func (a *App) Search(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		var err error
		query, err = getSimpleText(a.reader, "Search for", os.Stdout)
		if err != nil {
			return err
		}
	}

	page, err := a.snippets.Search(ctx, models.SearchOptions{Query: query})
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}
	printSummaryPage(page)
	return nil
}

// Show fetches one snippet by id and prints it in full.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.snippetID(args)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	snippet, err := a.snippets.Get(ctx, id)
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}
	printSnippet(snippet)
	return nil
}

// Create walks the user through the snippet fields and persists a new one.
func (a *App) Create(ctx context.Context) error {
	in, err := a.snippetInput(ctx, models.SnippetInput{})
	if err != nil {
		return err
	}

	created, err := a.snippets.Create(ctx, in)
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}
	fmt.Printf("Created snippet #%d.\n", created.ID)
	return nil
}

// Edit fetches a snippet and prompts for replacements; empty answers keep
// the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.snippetID(args)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	current, err := a.snippets.Get(ctx, id)
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}

	in, err := a.snippetInput(ctx, models.SnippetInput{
		Title:       current.Title,
		Description: current.Description,
		Content:     current.Content,
		Language:    current.Language,
		Tags:        current.Tags,
		Visibility:  current.Visibility,
	})
	if err != nil {
		return err
	}

	updated, err := a.snippets.Update(ctx, id, in)
	if err != nil {
		printlnFn(errorMessage(err))
		return err
	}
	fmt.Printf("Updated snippet #%d.\n", updated.ID)
	return nil
}

// Delete removes a snippet after an explicit confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.snippetID(args)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete snippet #%d? (y/N)", id), os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.snippets.Delete(ctx, id); err != nil {
		printlnFn(errorMessage(err))
		return err
	}
	fmt.Printf("Deleted snippet #%d.\n", id)
	return nil
}

// snippetInput prompts for every snippet field, seeded with defaults. An
// empty answer keeps the default, which makes the same flow usable for
// both create (zero defaults) and edit.
func (a *App) snippetInput(ctx context.Context, defaults models.SnippetInput) (models.SnippetInput, error) {
	var zero models.SnippetInput

	title, err := getSimpleText(a.reader, promptWithDefault("Title", defaults.Title), os.Stdout)
	if err != nil {
		return zero, err
	}
	if title == "" {
		title = defaults.Title
	}

	description, err := getSimpleText(a.reader, promptWithDefault("Description", defaults.Description), os.Stdout)
	if err != nil {
		return zero, err
	}
	if description == "" {
		description = defaults.Description
	}

	language, err := getSimpleText(a.reader, promptWithDefault("Language", defaults.Language), os.Stdout)
	if err != nil {
		return zero, err
	}
	if language == "" {
		language = defaults.Language
	}

	tags, err := getSimpleText(a.reader, promptWithDefault("Tags (comma-separated)", defaults.Tags), os.Stdout)
	if err != nil {
		return zero, err
	}
	if tags == "" {
		tags = defaults.Tags
	}

	visibility, err := getSimpleText(a.reader, promptWithDefault("Visibility (public/private)", string(defaults.Visibility)), os.Stdout)
	if err != nil {
		return zero, err
	}
	if visibility == "" {
		visibility = string(defaults.Visibility)
	}

	content, err := GetMultiline(a.reader, "Enter snippet content (double Enter to finish):", os.Stdout)
	if err != nil {
		return zero, err
	}
	if content == "" {
		content = defaults.Content
	}

	return models.SnippetInput{
		Title:       title,
		Description: description,
		Content:     content,
		Language:    language,
		Tags:        tags,
		Visibility:  models.Visibility(strings.ToUpper(visibility)),
	}, nil
}

func promptWithDefault(prompt, def string) string {
	if def == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, def)
}
