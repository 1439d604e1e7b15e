// Package dashboard implements the interactive product-catalog TUI: a paged
// product table with search and category filters, an add/edit form, and a
// delete confirmation flow. All state lives in the Bubble Tea update loop;
// network calls run as commands and report back through the messages below.
package dashboard

import (
	"prodash/internal/mutation"
	"prodash/internal/querycache"
)

// Mode represents the current dashboard view mode.
type Mode int

const (
	ModeBrowse  Mode = iota // Paged product table with search and filters.
	ModeForm                // Add or edit dialog.
	ModeConfirm             // Delete confirmation.
)

// --- tea.Msg types ---

// PageLoadedMsg carries the result of one list fetch. Fingerprint and Token
// identify which fetch this was; the store decides on commit whether the
// result is still current or a stale straggler.
type PageLoadedMsg struct {
	Fingerprint querycache.Fingerprint
	Token       uint64
	Result      querycache.PageResult
	Err         error
}

// CategoriesMsg carries the category names for the filter cycle. Failures
// are tolerated: filtering is just unavailable until a retry.
type CategoriesMsg struct {
	Categories []string
	Err        error
}

// MutationMsg carries the outcome of one add, update or delete call.
type MutationMsg struct {
	Outcome mutation.Outcome
}
