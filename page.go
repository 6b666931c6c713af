package crudgen

import "fmt"

// ContentRange describes the window of a list response, rendered the way
// the Content-Range header expects: "authors 0-24/319".
type ContentRange struct {
	Resource string
	Start    int
	End      int // inclusive; less than Start when the window is empty
	Total    int
}

// NewContentRange returns the range for count items starting at offset.
func NewContentRange(resource string, offset, count, total int) ContentRange {
	return ContentRange{
		Resource: resource,
		Start:    offset,
		End:      offset + count - 1,
		Total:    total,
	}
}

// Empty reports whether the window holds no items.
func (r ContentRange) Empty() bool {
	return r.End < r.Start
}

// String implements fmt.Stringer.
func (r ContentRange) String() string {
	if r.Empty() {
		return fmt.Sprintf("%s */%d", r.Resource, r.Total)
	}
	return fmt.Sprintf("%s %d-%d/%d", r.Resource, r.Start, r.End, r.Total)
}

// Page is one window of a list operation.
type Page[T any] struct {
	Items []T          `json:"items"`
	Total int          `json:"total"`
	Range ContentRange `json:"-"`
}

// NewPage builds a Page for items fetched at offset out of total matches.
func NewPage[T any](resource string, items []T, offset, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items: items,
		Total: total,
		Range: NewContentRange(resource, offset, len(items), total),
	}
}
