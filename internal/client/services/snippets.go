package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/snipperhq/snipper-cli/internal/client/api"
	"github.com/snipperhq/snipper-cli/internal/client/models"
)

// SnippetService defines the snippet operations available to the CLI. It
// validates input before the network and applies the listing defaults the
// server would otherwise pick.
type SnippetService interface {
	Mine(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error)
	Explore(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error)
	Search(ctx context.Context, opts models.SearchOptions) (*models.Page[models.SnippetSummary], error)
	Get(ctx context.Context, id int64) (*models.Snippet, error)
	Create(ctx context.Context, in models.SnippetInput) (*models.Snippet, error)
	Update(ctx context.Context, id int64, in models.SnippetInput) (*models.Snippet, error)
	Delete(ctx context.Context, id int64) error
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.Profile) (*models.User, error)
}

type snippetService struct {
	client api.Client
}

// NewSnippetService constructs a SnippetService on top of the API client.
func NewSnippetService(client api.Client) SnippetService {
	return &snippetService{client: client}
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func normalizeListOptions(opts models.ListOptions) models.ListOptions {
	if opts.Page < 0 {
		opts.Page = 0
	}
	if opts.Size <= 0 {
		opts.Size = defaultPageSize
	}
	if opts.Size > maxPageSize {
		opts.Size = maxPageSize
	}
	if opts.SortBy == "" {
		opts.SortBy = "createdAt"
	}
	if opts.SortDir == "" {
		opts.SortDir = "desc"
	}
	return opts
}

func validateSnippetInput(in *models.SnippetInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return validationError("title is required")
	}
	if in.Content == "" {
		return validationError("content is required")
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPrivate
	}
	if !in.Visibility.Valid() {
		return validationError("visibility must be PUBLIC or PRIVATE")
	}
	return nil
}

func (s *snippetService) Mine(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error) {
	page, err := s.client.Snippets(ctx, normalizeListOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return page, nil
}

func (s *snippetService) Explore(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error) {
	page, err := s.client.PublicSnippets(ctx, normalizeListOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("listing public snippets: %w", err)
	}
	return page, nil
}

func (s *snippetService) Search(ctx context.Context, opts models.SearchOptions) (*models.Page[models.SnippetSummary], error) {
	opts.ListOptions = normalizeListOptions(opts.ListOptions)
	opts.Query = strings.TrimSpace(opts.Query)
	page, err := s.client.SearchSnippets(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("searching snippets: %w", err)
	}
	return page, nil
}

func (s *snippetService) Get(ctx context.Context, id int64) (*models.Snippet, error) {
	snippet, err := s.client.Snippet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching snippet %d: %w", id, err)
	}
	return snippet, nil
}

func (s *snippetService) Create(ctx context.Context, in models.SnippetInput) (*models.Snippet, error) {
	if err := validateSnippetInput(&in); err != nil {
		return nil, err
	}
	snippet, err := s.client.CreateSnippet(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("creating snippet: %w", err)
	}
	return snippet, nil
}

func (s *snippetService) Update(ctx context.Context, id int64, in models.SnippetInput) (*models.Snippet, error) {
	if err := validateSnippetInput(&in); err != nil {
		return nil, err
	}
	snippet, err := s.client.UpdateSnippet(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("updating snippet %d: %w", id, err)
	}
	return snippet, nil
}

func (s *snippetService) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteSnippet(ctx, id); err != nil {
		return fmt.Errorf("deleting snippet %d: %w", id, err)
	}
	return nil
}

func (s *snippetService) Profile(ctx context.Context) (*models.User, error) {
	user, err := s.client.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return user, nil
}

func (s *snippetService) UpdateProfile(ctx context.Context, p models.Profile) (*models.User, error) {
	user, err := s.client.UpdateProfile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}
