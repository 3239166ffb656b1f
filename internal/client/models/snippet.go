package models

import "time"

// Visibility controls who can read a snippet.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Valid reports whether v is one of the values the server accepts.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Snippet is a full snippet record as returned by the API.
type Snippet struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Content        string     `json:"content"`
	Language       string     `json:"language,omitempty"`
	Tags           string     `json:"tags,omitempty"`
	Visibility     Visibility `json:"visibility"`
	ViewCount      int64      `json:"viewCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	AuthorUsername string     `json:"authorUsername"`
	AuthorID       int64      `json:"authorId"`
}

// SnippetSummary is the lightweight list representation (no content body).
type SnippetSummary struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Language       string     `json:"language,omitempty"`
	Tags           string     `json:"tags,omitempty"`
	Visibility     Visibility `json:"visibility"`
	ViewCount      int64      `json:"viewCount"`
	CreatedAt      time.Time  `json:"createdAt"`
	AuthorUsername string     `json:"authorUsername"`
}

// SnippetInput is the payload for create and update calls.
type SnippetInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content"`
	Language    string     `json:"language,omitempty"`
	Tags        string     `json:"tags,omitempty"`
	Visibility  Visibility `json:"visibility"`
}
