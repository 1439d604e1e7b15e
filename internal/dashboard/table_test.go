package dashboard

import (
	"strings"
	"testing"
	"unicode/utf8"

	"prodash/internal/catalog"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
	}{
		{name: "empty", total: 0, pageSize: 10, want: 0},
		{name: "exact fit", total: 20, pageSize: 10, want: 2},
		{name: "partial last page", total: 25, pageSize: 10, want: 3},
		{name: "single item", total: 1, pageSize: 10, want: 1},
		{name: "one full page", total: 10, pageSize: 10, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := totalPages(tt.total, tt.pageSize); got != tt.want {
				t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
			}
		})
	}
}

func TestRowRange(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		total    int
		wantFrom int
		wantTo   int
	}{
		{name: "first page", page: 0, total: 25, wantFrom: 1, wantTo: 10},
		{name: "middle page", page: 1, total: 25, wantFrom: 11, wantTo: 20},
		{name: "short last page", page: 2, total: 25, wantFrom: 21, wantTo: 25},
		{name: "empty", page: 0, total: 0, wantFrom: 0, wantTo: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := rowRange(tt.page, 10, tt.total)
			if from != tt.wantFrom || to != tt.wantTo {
				t.Errorf("rowRange(%d, 10, %d) = %d..%d, want %d..%d",
					tt.page, tt.total, from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	got := truncate("a very long product title that overflows", 10)
	if len([]rune(got)) > 10 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncate long = %q", got)
	}
}

func TestTruncate_MultibyteTitles(t *testing.T) {
	// Rune counting: ten runes fit untouched even though they exceed ten bytes.
	if got := truncate("Kaffeetüte", 10); got != "Kaffeetüte" {
		t.Errorf("truncate within limit = %q", got)
	}

	got := truncate("Schokoladentüte größeres Format", 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncate emitted invalid UTF-8: %q", got)
	}
	if n := len([]rune(got)); n > 10 {
		t.Errorf("truncate kept %d runes, want at most 10: %q", n, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncate long = %q, want ellipsis", got)
	}

	// The cut point lands inside the two-byte ü when sliced by bytes.
	if got := truncate("Gemüse und Obst Korb", 5); got != "Gemü…" {
		t.Errorf("truncate at multibyte boundary = %q, want %q", got, "Gemü…")
	}
}

func TestRenderPagination(t *testing.T) {
	got := renderPagination(1, 10, 25)
	want := "Showing 11 to 20 of 25 products   Page 2 of 3"
	if got != want {
		t.Errorf("renderPagination = %q, want %q", got, want)
	}
}

func TestRenderTable_MarksCursorAndDeleting(t *testing.T) {
	items := []catalog.Product{
		{ID: 1, Title: "Desk Lamp", Price: 24.5, Category: "lighting", Stock: 3, Brand: "Lumen"},
		{ID: 2, Title: "Mug", Price: 8, Category: "kitchen", Stock: 40, Brand: "Clay"},
	}

	out := renderTable(items, 1, 2)

	if !strings.Contains(out, "ID") || !strings.Contains(out, "TITLE") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "Desk Lamp") || !strings.Contains(out, "Mug") {
		t.Errorf("missing rows:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	var mugLine string
	for _, l := range lines {
		if strings.Contains(l, "Mug") {
			mugLine = l
		}
	}
	if !strings.Contains(mugLine, CursorMarker) {
		t.Errorf("cursor row should carry the marker: %q", mugLine)
	}
	if !strings.Contains(mugLine, "deleting") {
		t.Errorf("in-flight delete should be marked: %q", mugLine)
	}
}

func TestStockBadge(t *testing.T) {
	if got := StockBadge(0); !strings.Contains(got, "out") {
		t.Errorf("StockBadge(0) = %q, want out-of-stock marker", got)
	}
	if got := StockBadge(42); !strings.Contains(got, "42") {
		t.Errorf("StockBadge(42) = %q", got)
	}
}

func TestConfirmView(t *testing.T) {
	cs := confirmState{product: catalog.Product{ID: 7, Title: "Desk Lamp", Brand: "Lumen"}}
	out := cs.View()

	for _, want := range []string{"Delete product #7?", "Desk Lamp", "Lumen", "[Enter] Delete", "[Esc] Cancel"} {
		if !strings.Contains(out, want) {
			t.Errorf("confirm view missing %q:\n%s", want, out)
		}
	}
}
