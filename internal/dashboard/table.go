package dashboard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"prodash/internal/catalog"
)

// CursorMarker is the prefix shown on the selected table row.
const CursorMarker = "▸ "

// totalPages returns ceil(total/pageSize), or 0 before any data arrives.
func totalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// rowRange returns the 1-based bounds of the "Showing X to Y of N" line.
func rowRange(page, pageSize, total int) (from, to int) {
	if total <= 0 {
		return 0, 0
	}
	from = page*pageSize + 1
	to = (page + 1) * pageSize
	if to > total {
		to = total
	}
	return from, to
}

// truncate shortens s to max runes, ellipsizing when it cuts.
func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

// renderTable renders the product rows with a header line. deletingID marks
// the row whose delete is in flight.
func renderTable(items []catalog.Product, cursor, deletingID int) string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-32s %10s  %-16s %5s  %s",
		"ID", "TITLE", "PRICE", "CATEGORY", "STOCK", "BRAND")))

	for i, p := range items {
		b.WriteByte('\n')
		if i == cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}

		line := fmt.Sprintf("%-5d %-32s %10.2f  %-16s %5s  %s",
			p.ID, truncate(p.Title, 32), p.Price, truncate(p.Category, 16), StockBadge(p.Stock), p.Brand)
		if p.ID == deletingID {
			line += mutedText.Render("  deleting…")
		}
		if i == cursor {
			b.WriteString(selectedRow.Render(line))
		} else {
			b.WriteString(line)
		}
	}
	return b.String()
}

// renderPagination renders the row-range and page indicator footer.
func renderPagination(page, pageSize, total int) string {
	from, to := rowRange(page, pageSize, total)
	pages := totalPages(total, pageSize)
	return mutedText.Render(fmt.Sprintf("Showing %d to %d of %d products", from, to, total)) +
		fmt.Sprintf("   Page %d of %d", page+1, pages)
}
