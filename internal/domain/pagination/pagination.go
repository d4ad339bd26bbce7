// Package pagination models relay-style cursor pages and the accumulation
// of successive pages into one ordered list.
package pagination

const (
	// DefaultPageSize is used when a caller does not request a page size.
	DefaultPageSize = 10
	// MaxPageSize caps requested page sizes.
	MaxPageSize = 100
)

// PageInfo is the cursor state returned alongside a page of nodes.
type PageInfo struct {
	EndCursor   string `json:"end_cursor,omitempty" yaml:"end_cursor,omitempty"`
	HasNextPage bool   `json:"has_next_page" yaml:"has_next_page"`
}

// Collection is one page of items in server order.
// A nil PageInfo means the result is not pageable.
type Collection[T any] struct {
	Items    []T       `json:"items" yaml:"items"`
	PageInfo *PageInfo `json:"page_info,omitempty" yaml:"page_info,omitempty"`
}

// Len returns the number of items in the page.
func (c Collection[T]) Len() int { return len(c.Items) }

// NextCursor returns the cursor to request the following page, if any.
// The end cursor is never reported when HasNextPage is false.
func NextCursor(info *PageInfo) (string, bool) {
	if info == nil || !info.HasNextPage || info.EndCursor == "" {
		return "", false
	}
	return info.EndCursor, true
}

// HasMore reports whether another page can be requested.
func HasMore(info *PageInfo) bool {
	_, ok := NextCursor(info)
	return ok
}

// ClampPageSize normalizes a requested page size: non-positive sizes fall
// back to def and sizes above maxSize are capped.
func ClampPageSize(size, def, maxSize int) int {
	if def <= 0 {
		def = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if def > maxSize {
		def = maxSize
	}
	if size <= 0 {
		return def
	}
	if size > maxSize {
		return maxSize
	}
	return size
}
