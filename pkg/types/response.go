package types

// Envelope is the uniform response wrapper every endpoint returns.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Errors  any    `json:"errors,omitempty"`
}

// PageInfo describes offset pagination metadata for list responses.
type PageInfo struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

// Page bundles a result slice with its pagination metadata.
type Page[T any] struct {
	Items      []T      `json:"items"`
	Pagination PageInfo `json:"pagination"`
}
