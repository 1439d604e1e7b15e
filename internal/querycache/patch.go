package querycache

import "prodash/internal/catalog"

// Patch functions are the pure half of mutation handling: each maps an old
// page result to a new one, and reports whether anything changed. They never
// touch the network; the mutation layer applies them through
// Store.PatchMatching after the corresponding write has succeeded.

// PrependTrim returns a patch that inserts p at the front of a page and
// drops items past pageSize, incrementing the total. Keeping the page size
// constant without a refetch is an approximation: the first page shows the
// new item immediately, but a later page may briefly duplicate the item
// trimmed off here until the next real fetch.
func PrependTrim(p catalog.Product, pageSize int) func(PageResult) (PageResult, bool) {
	return func(old PageResult) (PageResult, bool) {
		items := make([]catalog.Product, 0, len(old.Items)+1)
		items = append(items, p)
		items = append(items, old.Items...)
		if pageSize > 0 && len(items) > pageSize {
			items = items[:pageSize]
		}
		return PageResult{Items: items, Total: old.Total + 1}, true
	}
}

// ReplaceByID returns a patch that swaps the item whose id matches p for p,
// leaving ordering and total untouched. Pages not containing the id are
// reported unchanged.
func ReplaceByID(p catalog.Product) func(PageResult) (PageResult, bool) {
	return func(old PageResult) (PageResult, bool) {
		idx := -1
		for i, item := range old.Items {
			if item.ID == p.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return old, false
		}
		items := append([]catalog.Product(nil), old.Items...)
		items[idx] = p
		return PageResult{Items: items, Total: old.Total}, true
	}
}

// RemoveByID returns a patch that filters out the item with the given id
// and decrements the total, flooring at zero. Pages not holding the id are
// reported unchanged, which makes the patch idempotent: applying it twice
// is the same as applying it once.
func RemoveByID(id int) func(PageResult) (PageResult, bool) {
	return func(old PageResult) (PageResult, bool) {
		idx := -1
		for i, item := range old.Items {
			if item.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return old, false
		}
		items := make([]catalog.Product, 0, len(old.Items)-1)
		items = append(items, old.Items[:idx]...)
		items = append(items, old.Items[idx+1:]...)
		total := old.Total - 1
		if total < 0 {
			total = 0
		}
		return PageResult{Items: items, Total: total}, true
	}
}

// AllPages matches every fingerprint; mutations touch every cached page
// regardless of page index or filter.
func AllPages(Fingerprint) bool { return true }
