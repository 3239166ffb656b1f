package api

import (
	"context"

	"github.com/snipperhq/snipper-cli/internal/client/models"
)

// AuthResponse is the payload of successful login and register calls.
type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	TokenType    string      `json:"tokenType,omitempty"`
	User         models.User `json:"user"`
}

// AuthClient covers the auth endpoints. Apart from Logout these calls carry
// no bearer token and never go through the refresh-and-retry path: a 401
// from login or refresh is an answer, not a recoverable condition.
type AuthClient interface {
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Credentials, error)
	Logout(ctx context.Context, accessToken string) error
	Health(ctx context.Context) error
}

// Client is the authenticated API surface. Every call is sent through the
// gateway: the current access token is attached and a single transparent
// refresh-and-retry is performed on 401.
type Client interface {
	Snippets(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error)
	PublicSnippets(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error)
	SearchSnippets(ctx context.Context, opts models.SearchOptions) (*models.Page[models.SnippetSummary], error)
	Snippet(ctx context.Context, id int64) (*models.Snippet, error)
	CreateSnippet(ctx context.Context, in models.SnippetInput) (*models.Snippet, error)
	UpdateSnippet(ctx context.Context, id int64, in models.SnippetInput) (*models.Snippet, error)
	DeleteSnippet(ctx context.Context, id int64) error
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.Profile) (*models.User, error)
}

// Refresher is the session-side contract the gateway depends on. It is
// injected at construction time; the gateway never reaches into session
// internals beyond these three operations.
type Refresher interface {
	// AccessToken returns the current access token, or "" when signed out.
	AccessToken() string

	// Refresh obtains a new access token using the cached refresh token.
	// On failure the session is expected to have been torn down already.
	Refresh(ctx context.Context) (string, error)

	// Invalidate clears the local session after a terminal auth failure
	// and signals subscribers that a fresh login is required.
	Invalidate(ctx context.Context)
}
