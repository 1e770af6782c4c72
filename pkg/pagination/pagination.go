package pagination

import "github.com/angelmondragon/clinicdesk-backend/pkg/types"

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their allowed ranges.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the SQL OFFSET for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// PageInfo builds the response metadata for a total row count.
func (p Params) PageInfo(totalItems int64) types.PageInfo {
	n := p.Normalize()
	totalPages := int(totalItems / int64(n.Limit))
	if totalItems%int64(n.Limit) != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	return types.PageInfo{
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: n.Page,
		PageSize:    n.Limit,
	}
}
