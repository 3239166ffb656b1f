package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snipperhq/snipper-cli/internal/client/api"
	"github.com/snipperhq/snipper-cli/internal/client/models"
)

// fakeAPIClient implements api.Client and records the arguments it saw.
type fakeAPIClient struct {
	pageRet    *models.Page[models.SnippetSummary]
	snippetRet *models.Snippet
	userRet    *models.User
	err        error

	lastListOpts   models.ListOptions
	lastSearchOpts models.SearchOptions
	lastID         int64
	lastInput      models.SnippetInput

	createCalls int
	updateCalls int
	deleteCalls int
}

func (f *fakeAPIClient) Snippets(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error) {
	f.lastListOpts = opts
	return f.pageRet, f.err
}

func (f *fakeAPIClient) PublicSnippets(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error) {
	f.lastListOpts = opts
	return f.pageRet, f.err
}

func (f *fakeAPIClient) SearchSnippets(ctx context.Context, opts models.SearchOptions) (*models.Page[models.SnippetSummary], error) {
	f.lastSearchOpts = opts
	return f.pageRet, f.err
}

func (f *fakeAPIClient) Snippet(ctx context.Context, id int64) (*models.Snippet, error) {
	f.lastID = id
	return f.snippetRet, f.err
}

func (f *fakeAPIClient) CreateSnippet(ctx context.Context, in models.SnippetInput) (*models.Snippet, error) {
	f.createCalls++
	f.lastInput = in
	return f.snippetRet, f.err
}

func (f *fakeAPIClient) UpdateSnippet(ctx context.Context, id int64, in models.SnippetInput) (*models.Snippet, error) {
	f.updateCalls++
	f.lastID = id
	f.lastInput = in
	return f.snippetRet, f.err
}

func (f *fakeAPIClient) DeleteSnippet(ctx context.Context, id int64) error {
	f.deleteCalls++
	f.lastID = id
	return f.err
}

func (f *fakeAPIClient) Profile(ctx context.Context) (*models.User, error) {
	return f.userRet, f.err
}

func (f *fakeAPIClient) UpdateProfile(ctx context.Context, p models.Profile) (*models.User, error) {
	return f.userRet, f.err
}

func TestMine_AppliesListingDefaults(t *testing.T) {
	fc := &fakeAPIClient{pageRet: &models.Page[models.SnippetSummary]{}}
	s := NewSnippetService(fc)

	_, err := s.Mine(context.Background(), models.ListOptions{})
	require.NoError(t, err)

	require.Equal(t, models.ListOptions{
		Page:    0,
		Size:    10,
		SortBy:  "createdAt",
		SortDir: "desc",
	}, fc.lastListOpts)
}

func TestMine_ClampsOversizedPage(t *testing.T) {
	fc := &fakeAPIClient{pageRet: &models.Page[models.SnippetSummary]{}}
	s := NewSnippetService(fc)

	_, err := s.Mine(context.Background(), models.ListOptions{Size: 5000})
	require.NoError(t, err)
	require.Equal(t, 100, fc.lastListOpts.Size)
}

func TestSearch_TrimsQuery(t *testing.T) {
	fc := &fakeAPIClient{pageRet: &models.Page[models.SnippetSummary]{}}
	s := NewSnippetService(fc)

	_, err := s.Search(context.Background(), models.SearchOptions{Query: "  quicksort  "})
	require.NoError(t, err)
	require.Equal(t, "quicksort", fc.lastSearchOpts.Query)
}

func TestCreate_ValidationSkipsNetwork(t *testing.T) {
	tests := []struct {
		name string
		in   models.SnippetInput
	}{
		{"missing title", models.SnippetInput{Content: "x := 1"}},
		{"blank title", models.SnippetInput{Title: "   ", Content: "x := 1"}},
		{"missing content", models.SnippetInput{Title: "t"}},
		{"bad visibility", models.SnippetInput{Title: "t", Content: "c", Visibility: "FRIENDS"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fc := &fakeAPIClient{}
			s := NewSnippetService(fc)

			_, err := s.Create(context.Background(), tc.in)
			require.ErrorIs(t, err, ErrValidation)
			require.Zero(t, fc.createCalls)
		})
	}
}

func TestCreate_DefaultsToPrivate(t *testing.T) {
	fc := &fakeAPIClient{snippetRet: &models.Snippet{ID: 1}}
	s := NewSnippetService(fc)

	_, err := s.Create(context.Background(), models.SnippetInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, models.VisibilityPrivate, fc.lastInput.Visibility)
}

func TestUpdate_PassesThrough(t *testing.T) {
	fc := &fakeAPIClient{snippetRet: &models.Snippet{ID: 7, Title: "new"}}
	s := NewSnippetService(fc)

	in := models.SnippetInput{Title: "new", Content: "c", Visibility: models.VisibilityPublic}
	got, err := s.Update(context.Background(), 7, in)
	require.NoError(t, err)
	require.Equal(t, int64(7), fc.lastID)
	require.Equal(t, "new", got.Title)
}

func TestDelete_WrapsSentinel(t *testing.T) {
	fc := &fakeAPIClient{err: api.ErrNotFound}
	s := NewSnippetService(fc)

	err := s.Delete(context.Background(), 9)
	require.ErrorIs(t, err, api.ErrNotFound)
	require.Equal(t, int64(9), fc.lastID)
}

func TestGet_PassesID(t *testing.T) {
	fc := &fakeAPIClient{snippetRet: &models.Snippet{ID: 3, Title: "t"}}
	s := NewSnippetService(fc)

	got, err := s.Get(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), got.ID)
}
