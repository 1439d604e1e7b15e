package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"prodash/internal/catalog"
	"prodash/internal/mutation"
	"prodash/internal/querycache"
)

// fakeService is an in-memory CatalogService. Every call completes
// synchronously, so commands executed via drain settle immediately.
type fakeService struct {
	products []catalog.Product
	nextID   int

	listErr   error
	addErr    error
	updateErr error
	deleteErr error

	listCalls int
}

func newFakeService(n int) *fakeService {
	svc := &fakeService{nextID: n + 1}
	for i := 1; i <= n; i++ {
		category := "electronics"
		if i%2 == 0 {
			category = "groceries"
		}
		svc.products = append(svc.products, catalog.Product{
			ID:       i,
			Title:    fmt.Sprintf("Product %d", i),
			Price:    float64(i) * 10,
			Category: category,
			Stock:    i * 5,
			Brand:    "Acme",
		})
	}
	return svc
}

func (f *fakeService) List(_ context.Context, q catalog.ListQuery) (catalog.ListResult, error) {
	f.listCalls++
	if f.listErr != nil {
		return catalog.ListResult{}, f.listErr
	}

	var matched []catalog.Product
	for _, p := range f.products {
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, p)
	}

	skip := q.Page * q.PageSize
	if skip > len(matched) {
		skip = len(matched)
	}
	end := skip + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return catalog.ListResult{
		Items: append([]catalog.Product(nil), matched[skip:end]...),
		Total: len(matched),
		Skip:  skip,
		Limit: q.PageSize,
	}, nil
}

func (f *fakeService) Add(_ context.Context, d catalog.Draft) (catalog.Product, error) {
	if f.addErr != nil {
		return catalog.Product{}, f.addErr
	}
	p := catalog.Product{
		ID: f.nextID, Title: d.Title, Price: d.Price,
		Category: d.Category, Stock: d.Stock, Brand: d.Brand, Description: d.Description,
	}
	f.nextID++
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeService) Update(_ context.Context, id int, d catalog.Draft) (catalog.Product, error) {
	if f.updateErr != nil {
		return catalog.Product{}, f.updateErr
	}
	for i, p := range f.products {
		if p.ID == id {
			p.Title, p.Price, p.Category = d.Title, d.Price, d.Category
			p.Stock, p.Brand, p.Description = d.Stock, d.Brand, d.Description
			f.products[i] = p
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (f *fakeService) Delete(_ context.Context, id int) (catalog.Product, error) {
	if f.deleteErr != nil {
		return catalog.Product{}, f.deleteErr
	}
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (f *fakeService) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, p := range f.products {
		seen[p.Category] = true
	}
	var cats []string
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats, nil
}

// newTestModel builds a model over n fake products, delivers the initial
// window size and drains Init so the first page is loaded.
func newTestModel(t *testing.T, n, pageSize int) (Model, *fakeService) {
	t.Helper()
	svc := newFakeService(n)
	store := querycache.NewStore()
	coord := mutation.New(store, pageSize)
	m := New(svc, store, coord, pageSize, 0)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	m = next.(Model)
	return drain(t, m, m.Init()), svc
}

// drain executes cmd and feeds every resulting message back into the model
// until no command remains. Spinner ticks and cursor blinks reschedule
// themselves forever and are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if msg == nil {
		return m
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(t, m, c)
		}
		return m
	}
	switch msg.(type) {
	case spinner.TickMsg, cursor.BlinkMsg:
		return m
	}
	next, nextCmd := m.Update(msg)
	return drain(t, next.(Model), nextCmd)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends one key and drains any command it produced.
func press(t *testing.T, m Model, key string) Model {
	t.Helper()
	next, cmd := m.Update(keyMsg(key))
	return drain(t, next.(Model), cmd)
}

// typeString sends s one rune at a time.
func typeString(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, string(r))
	}
	return m
}
