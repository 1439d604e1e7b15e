// Package querycache keeps the last fetched page of catalog results per
// query fingerprint, so the dashboard can render without refetching and
// mutations can patch what is already on screen.
package querycache

import "prodash/internal/catalog"

// Fingerprint identifies one page of results: two fingerprints are equal iff
// page, search term and category filter are all equal.
type Fingerprint struct {
	Page     int
	Search   string
	Category string
}

// PageResult is the cached outcome of one successful list call. Items keeps
// the service's ordering; Total counts matches across all pages.
type PageResult struct {
	Items []catalog.Product
	Total int
}

// Status is the fetch state of one cache entry.
type Status int

const (
	StatusPending Status = iota // a fetch is in flight for this fingerprint
	StatusSuccess
	StatusError
)

// entry is the per-fingerprint slot. data holds the last successful result
// and survives while a newer fetch is pending, so readers can keep showing
// it (stale-while-revalidate). gen rises on every Begin; a Commit carrying
// an older token is dropped.
type entry struct {
	status  Status
	gen     uint64
	data    PageResult
	hasData bool
	err     error
}

// Store maps fingerprints to their latest results. It is not safe for
// concurrent use; callers must confine access to a single goroutine
// (e.g. the Bubble Tea update loop).
type Store struct {
	entries map[Fingerprint]*entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Fingerprint]*entry)}
}

// Get returns the last successful result for fp and its current status.
// ok reports whether a successful result exists at all; with a pending or
// failed newer fetch the previous result is still returned.
func (s *Store) Get(fp Fingerprint) (res PageResult, status Status, ok bool) {
	e, exists := s.entries[fp]
	if !exists {
		return PageResult{}, StatusPending, false
	}
	return e.data, e.status, e.hasData
}

// Pending reports whether a fetch is currently in flight for fp.
func (s *Store) Pending(fp Fingerprint) bool {
	e, exists := s.entries[fp]
	return exists && e.status == StatusPending
}

// Err returns the stored error for fp, or nil when the entry is absent or
// not in the error state.
func (s *Store) Err(fp Fingerprint) error {
	e, exists := s.entries[fp]
	if !exists || e.status != StatusError {
		return nil
	}
	return e.err
}

// Begin marks fp pending and returns the generation token for the new
// fetch. Any result committed with an older token is discarded, so of two
// in-flight fetches for the same fingerprint only the most recent one wins.
func (s *Store) Begin(fp Fingerprint) uint64 {
	e, exists := s.entries[fp]
	if !exists {
		e = &entry{}
		s.entries[fp] = e
	}
	e.gen++
	e.status = StatusPending
	e.err = nil
	return e.gen
}

// Commit stores the outcome of the fetch identified by token. It reports
// whether the result was accepted; a stale token (a newer Begin has since
// happened) or an unknown fingerprint leaves the entry untouched.
func (s *Store) Commit(fp Fingerprint, token uint64, res PageResult, err error) bool {
	e, exists := s.entries[fp]
	if !exists || e.gen != token {
		return false
	}
	if err != nil {
		e.status = StatusError
		e.err = err
		return true
	}
	e.status = StatusSuccess
	e.data = res
	e.hasData = true
	e.err = nil
	return true
}

// PatchMatching applies patch to the stored result of every successful entry
// whose fingerprint satisfies pred. patch returns the new result and whether
// anything changed; unchanged entries keep their stored value. Each entry is
// swapped wholesale, so a reader sees either the full old or full new result.
func (s *Store) PatchMatching(pred func(Fingerprint) bool, patch func(PageResult) (PageResult, bool)) {
	for fp, e := range s.entries {
		if !e.hasData || !pred(fp) {
			continue
		}
		if next, changed := patch(e.data); changed {
			e.data = next
		}
	}
}

// Invalidate drops every entry whose fingerprint satisfies pred, forcing the
// next fetch for it to reload.
func (s *Store) Invalidate(pred func(Fingerprint) bool) {
	for fp := range s.entries {
		if pred(fp) {
			delete(s.entries, fp)
		}
	}
}

// Len returns the number of stored fingerprints.
func (s *Store) Len() int { return len(s.entries) }
