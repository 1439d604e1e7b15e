// Package mutation coordinates catalog writes with the query cache: it
// gates duplicate submissions, models the delete confirmation handshake,
// and applies the per-kind cache patch once a write has succeeded. Failed
// writes never touch the cache.
package mutation

import (
	"prodash/internal/catalog"
	"prodash/internal/querycache"
)

// Kind names one mutation operation.
type Kind int

const (
	KindAdd Kind = iota
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Outcome is the result of one awaited mutation call: either Product is the
// record the service returned, or Err explains the failure. TargetID is the
// id captured at dispatch time (zero for add), so a failed call can still be
// matched to its in-flight mark.
type Outcome struct {
	Kind     Kind
	TargetID int
	Product  catalog.Product
	Err      error
}

// flightKey identifies one in-flight mutation. Add has no target id and
// uses the zero id; update and delete are gated per target.
type flightKey struct {
	kind Kind
	id   int
}

// Coordinator tracks in-flight mutations and patches the store on success.
// Like the store it serves, it is confined to a single goroutine.
type Coordinator struct {
	store    *querycache.Store
	pageSize int
	inflight map[flightKey]struct{}

	deleteRequested int // id awaiting confirmation; 0 means none
}

// New creates a Coordinator patching pages of the given size in store.
func New(store *querycache.Store, pageSize int) *Coordinator {
	return &Coordinator{
		store:    store,
		pageSize: pageSize,
		inflight: make(map[flightKey]struct{}),
	}
}

// Begin marks a mutation in flight. It reports false, without side effects,
// when the same mutation is already in flight for the same target; callers
// must not dispatch in that case.
func (c *Coordinator) Begin(kind Kind, id int) bool {
	key := flightKey{kind: kind, id: id}
	if _, busy := c.inflight[key]; busy {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

// Finish clears the in-flight mark. Call it on both success and failure.
func (c *Coordinator) Finish(kind Kind, id int) {
	delete(c.inflight, flightKey{kind: kind, id: id})
}

// InFlight reports whether the given mutation is currently dispatched.
func (c *Coordinator) InFlight(kind Kind, id int) bool {
	_, busy := c.inflight[flightKey{kind: kind, id: id}]
	return busy
}

// RequestDelete records that deletion of id needs user confirmation. The
// request replaces any earlier unconfirmed one.
func (c *Coordinator) RequestDelete(id int) {
	c.deleteRequested = id
}

// RequestedDelete returns the id awaiting confirmation, if any.
func (c *Coordinator) RequestedDelete() (int, bool) {
	return c.deleteRequested, c.deleteRequested != 0
}

// ConfirmDelete consumes the pending request and marks the delete in
// flight. It reports false when nothing was requested or the same delete is
// already running.
func (c *Coordinator) ConfirmDelete() (int, bool) {
	id := c.deleteRequested
	if id == 0 {
		return 0, false
	}
	c.deleteRequested = 0
	if !c.Begin(KindDelete, id) {
		return 0, false
	}
	return id, true
}

// CancelDelete drops the pending confirmation request.
func (c *Coordinator) CancelDelete() {
	c.deleteRequested = 0
}

// Apply patches every cached page according to a successful outcome and
// clears the in-flight mark. Outcomes carrying an error only clear the
// mark; the cache stays exactly as it was.
func (c *Coordinator) Apply(out Outcome) {
	c.Finish(out.Kind, out.TargetID)
	if out.Err != nil {
		return
	}
	switch out.Kind {
	case KindAdd:
		c.store.PatchMatching(querycache.AllPages, querycache.PrependTrim(out.Product, c.pageSize))
	case KindUpdate:
		c.store.PatchMatching(querycache.AllPages, querycache.ReplaceByID(out.Product))
	case KindDelete:
		c.store.PatchMatching(querycache.AllPages, querycache.RemoveByID(out.Product.ID))
	}
}
