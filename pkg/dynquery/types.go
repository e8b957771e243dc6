// Package dynquery defines the query model shared by the console API and its
// clients: sort/filter descriptors, the dynamic listing request, and the
// paginated response envelope.
package dynquery

import "fmt"

// Sort directions accepted by the listing endpoints.
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// OpContains is the only filter operator the console emits today. The
// descriptor tree (Logic + Filters) is accepted on the wire for forward
// compatibility but is never built with more than one leaf.
const OpContains = "contains"

type SortDescriptor struct {
	Field string `json:"field"`
	Dir   string `json:"dir"`
}

type FilterDescriptor struct {
	Field         string              `json:"field,omitempty"`
	Operator      string              `json:"operator,omitempty"`
	Value         string              `json:"value,omitempty"`
	Logic         string              `json:"logic,omitempty"`
	Filters       []*FilterDescriptor `json:"filters,omitempty"`
	CaseSensitive bool                `json:"isCaseSensitive"`
}

// DynamicQuery is the body of a POST /<resource>/dynamic request. PageIndex is
// zero-based.
type DynamicQuery struct {
	Sort      []SortDescriptor  `json:"sort,omitempty"`
	Filter    *FilterDescriptor `json:"filter,omitempty"`
	PageIndex int               `json:"pageIndex"`
	PageSize  int               `json:"pageSize"`
}

// Validate checks the pagination invariants.
func (q *DynamicQuery) Validate() error {
	if q.PageIndex < 0 {
		return fmt.Errorf("pageIndex must be >= 0, got %d", q.PageIndex)
	}
	if q.PageSize <= 0 {
		return fmt.Errorf("pageSize must be > 0, got %d", q.PageSize)
	}
	for _, s := range q.Sort {
		if s.Dir != DirAsc && s.Dir != DirDesc {
			return fmt.Errorf("invalid sort direction %q for field %q", s.Dir, s.Field)
		}
	}
	return nil
}

type PaginatedResponse[T any] struct {
	Items           []T  `json:"items"`
	PageIndex       int  `json:"pageIndex"`
	PageSize        int  `json:"pageSize"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPaginatedResponse builds the response envelope for one page of results.
// TotalPages is ceil(totalCount / pageSize).
func NewPaginatedResponse[T any](items []T, pageIndex, pageSize, totalCount int) *PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return &PaginatedResponse[T]{
		Items:           items,
		PageIndex:       pageIndex,
		PageSize:        pageSize,
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		HasPreviousPage: pageIndex > 0,
		HasNextPage:     pageIndex+1 < totalPages,
	}
}

// BuildFilterDescriptor returns a contains filter for the given search text,
// or nil when the text is empty. An absent filter means "match all"; callers
// must not send an always-true filter in its place.
func BuildFilterDescriptor(text, field string) *FilterDescriptor {
	if text == "" {
		return nil
	}
	return &FilterDescriptor{
		Field:         field,
		Operator:      OpContains,
		Value:         text,
		CaseSensitive: false,
	}
}
