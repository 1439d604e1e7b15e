package dashboard

import (
	"fmt"
	"strings"

	"prodash/internal/catalog"
)

// confirmState holds the data for the delete confirmation screen. The
// product is frozen at request time so the prompt stays stable even if the
// table refreshes underneath.
type confirmState struct {
	product catalog.Product
}

// View renders the confirmation screen.
func (cs confirmState) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Delete product #%d?\n", cs.product.ID)
	fmt.Fprintf(&b, "\n  %s\n", cs.product.Title)
	if cs.product.Brand != "" {
		fmt.Fprintf(&b, "  %s\n", mutedText.Render(cs.product.Brand))
	}
	b.WriteString("\n  This removes the product from the catalog.")
	b.WriteString("\n\n  [Enter] Delete   [Esc] Cancel")
	return b.String()
}
