package pagination

import "gorm.io/gorm"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination carries offset-style paging parameters bound from the query
// string.
type Pagination struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// PageInfo describes one page of results.
type PageInfo struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// Normalize clamps paging parameters to sane bounds. Zero limit falls back
// to the default.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Apply scopes a gorm statement to this page.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	return stmt.Limit(p.Limit).Offset(p.Offset)
}

// BuildPageInfo derives the page descriptor from the overall row count.
func BuildPageInfo(page Pagination, total int64) PageInfo {
	return PageInfo{
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: int64(page.Offset+page.Limit) < total,
	}
}
