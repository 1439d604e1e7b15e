package dashboard

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"prodash/internal/catalog"
)

// formField indexes the inputs of the product form.
type formField int

const (
	fieldTitle formField = iota
	fieldPrice
	fieldCategory
	fieldStock
	fieldBrand
	fieldDescription
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Title *",
	"Price *",
	"Category *",
	"Stock *",
	"Brand",
	"Description",
}

// formState manages the add/edit dialog: one text input per field, a focus
// cursor, and per-field validation errors. Validation is local and
// synchronous; nothing reaches the network until it passes.
type formState struct {
	inputs  [fieldCount]textinput.Model
	focus   formField
	errs    [fieldCount]string
	editing *catalog.Product // nil when adding
}

// newFormState creates the form, prefilled from editing when set.
func newFormState(editing *catalog.Product) formState {
	fs := formState{editing: editing}
	placeholders := [fieldCount]string{
		"Product title", "0.00", "Product category", "0", "Product brand", "Product description",
	}
	for i := range fs.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 128
		ti.Width = 40
		fs.inputs[i] = ti
	}
	if editing != nil {
		fs.inputs[fieldTitle].SetValue(editing.Title)
		fs.inputs[fieldPrice].SetValue(strconv.FormatFloat(editing.Price, 'f', -1, 64))
		fs.inputs[fieldCategory].SetValue(editing.Category)
		fs.inputs[fieldStock].SetValue(strconv.Itoa(editing.Stock))
		fs.inputs[fieldBrand].SetValue(editing.Brand)
		fs.inputs[fieldDescription].SetValue(editing.Description)
	}
	fs.inputs[fieldTitle].Focus()
	return fs
}

// Update processes key messages for the form. Enter and Esc are handled by
// the root model; everything else moves focus or edits the focused input.
func (fs formState) Update(msg tea.KeyMsg) (formState, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return fs.moveFocus(1), nil
	case "shift+tab", "up":
		return fs.moveFocus(-1), nil
	}

	before := fs.inputs[fs.focus].Value()
	var cmd tea.Cmd
	fs.inputs[fs.focus], cmd = fs.inputs[fs.focus].Update(msg)
	if fs.inputs[fs.focus].Value() != before {
		// Editing a field clears its error immediately.
		fs.errs[fs.focus] = ""
	}
	return fs, cmd
}

func (fs formState) moveFocus(delta int) formState {
	fs.inputs[fs.focus].Blur()
	fs.focus = (fs.focus + formField(delta) + fieldCount) % fieldCount
	fs.inputs[fs.focus].Focus()
	return fs
}

// validate checks all fields, records per-field errors, and returns the
// draft to submit. ok is false when any field failed; the recorded errors
// stay attached until their field is edited.
func (fs *formState) validate() (draft catalog.Draft, ok bool) {
	fs.errs = [fieldCount]string{}

	title := strings.TrimSpace(fs.inputs[fieldTitle].Value())
	if title == "" {
		fs.errs[fieldTitle] = "Title is required"
	}

	priceRaw := strings.TrimSpace(fs.inputs[fieldPrice].Value())
	price, err := strconv.ParseFloat(priceRaw, 64)
	if priceRaw == "" || err != nil || price <= 0 {
		fs.errs[fieldPrice] = "Price must be a valid positive number"
	}

	category := strings.TrimSpace(fs.inputs[fieldCategory].Value())
	if category == "" {
		fs.errs[fieldCategory] = "Category is required"
	}

	stockRaw := strings.TrimSpace(fs.inputs[fieldStock].Value())
	stock, err := strconv.Atoi(stockRaw)
	if stockRaw == "" || err != nil || stock < 0 {
		fs.errs[fieldStock] = "Stock must be a valid non-negative number"
	}

	for _, e := range fs.errs {
		if e != "" {
			return catalog.Draft{}, false
		}
	}

	return catalog.Draft{
		Title:       title,
		Price:       price,
		Category:    category,
		Stock:       stock,
		Brand:       strings.TrimSpace(fs.inputs[fieldBrand].Value()),
		Description: strings.TrimSpace(fs.inputs[fieldDescription].Value()),
	}, true
}

// View renders the form. saving indicates a submit is in flight, which
// disables the action hint.
func (fs formState) View(saving bool) string {
	var b strings.Builder

	if fs.editing != nil {
		b.WriteString(titleStyle.Render("Edit Product"))
	} else {
		b.WriteString(titleStyle.Render("Add New Product"))
	}
	b.WriteString("\n\n")

	for i := range fs.inputs {
		b.WriteString(fieldLabels[i])
		b.WriteByte('\n')
		b.WriteString(fs.inputs[i].View())
		b.WriteByte('\n')
		if fs.errs[i] != "" {
			b.WriteString(errorText.Render(fs.errs[i]))
			b.WriteByte('\n')
		}
	}

	if saving {
		b.WriteString("\nSaving...")
	} else {
		b.WriteString("\n[Enter] Save   [Esc] Cancel")
	}
	return b.String()
}
