package pagination

import "sync"

// Accumulate merges a freshly fetched page into an existing list.
//
// A first page (requested without a cursor) replaces the list. A later page
// is appended unless the identity of its first item already occurs in the
// list, in which case the whole page is dropped as a repeat. Only the first
// item is checked: a page whose head is new but which contains duplicates
// further down is appended as is.
//
// The returned slice never aliases fetched.
func Accumulate[T any](existing, fetched []T, wasFirstPage bool, identity func(T) string) []T {
	if wasFirstPage {
		out := make([]T, len(fetched))
		copy(out, fetched)
		return out
	}
	if len(fetched) == 0 {
		return existing
	}

	head := identity(fetched[0])
	for _, item := range existing {
		if identity(item) == head {
			return existing
		}
	}

	out := make([]T, 0, len(existing)+len(fetched))
	out = append(out, existing...)
	return append(out, fetched...)
}

// Accumulator holds the running list of a "load more" view together with
// the page info of the most recent response. It is safe for concurrent use.
type Accumulator[T any] struct {
	mu       sync.RWMutex
	identity func(T) string
	items    []T
	pageInfo *PageInfo
	loaded   bool
}

// NewAccumulator creates an empty Accumulator using identity to detect
// repeated pages.
func NewAccumulator[T any](identity func(T) string) *Accumulator[T] {
	return &Accumulator[T]{identity: identity}
}

// Merge folds page into the list. cursorUsed is the cursor the page was
// requested with; empty means it was a first page. The tracked page info is
// overwritten with page.PageInfo even when the items are discarded.
func (a *Accumulator[T]) Merge(page Collection[T], cursorUsed string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.items = Accumulate(a.items, page.Items, cursorUsed == "", a.identity)
	if page.PageInfo != nil {
		pi := *page.PageInfo
		a.pageInfo = &pi
	} else {
		a.pageInfo = nil
	}
	a.loaded = true
}

// Items returns a copy of the accumulated list.
func (a *Accumulator[T]) Items() []T {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]T, len(a.items))
	copy(out, a.items)
	return out
}

// PageInfo returns a copy of the latest page info, or nil.
func (a *Accumulator[T]) PageInfo() *PageInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.pageInfo == nil {
		return nil
	}
	pi := *a.pageInfo
	return &pi
}

// Snapshot returns the accumulated list and latest page info as one
// collection.
func (a *Accumulator[T]) Snapshot() Collection[T] {
	return Collection[T]{Items: a.Items(), PageInfo: a.PageInfo()}
}

// Loaded reports whether at least one page has been merged.
func (a *Accumulator[T]) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loaded
}

// NextCursor returns the cursor for the next page, if any.
func (a *Accumulator[T]) NextCursor() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return NextCursor(a.pageInfo)
}

// HasMore reports whether another page can be loaded.
func (a *Accumulator[T]) HasMore() bool {
	_, ok := a.NextCursor()
	return ok
}

// Len returns the number of accumulated items.
func (a *Accumulator[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// Reset empties the accumulator.
func (a *Accumulator[T]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = nil
	a.pageInfo = nil
	a.loaded = false
}
