package models

// Page is one page of a server-side paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// ListOptions controls paging and ordering of snippet listings.
// Zero values mean "use the server defaults" (first page, ten items,
// newest first).
type ListOptions struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// SearchOptions extends ListOptions with the public-search filters.
type SearchOptions struct {
	ListOptions
	Query    string
	Language string
	Tags     string
}
