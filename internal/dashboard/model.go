package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prodash/internal/catalog"
	"prodash/internal/mutation"
	"prodash/internal/querycache"
)

// CatalogService is the slice of the catalog client the dashboard uses.
type CatalogService interface {
	List(ctx context.Context, q catalog.ListQuery) (catalog.ListResult, error)
	Add(ctx context.Context, d catalog.Draft) (catalog.Product, error)
	Update(ctx context.Context, id int, d catalog.Draft) (catalog.Product, error)
	Delete(ctx context.Context, id int) (catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// notice is the status-line notification shown after a mutation settles.
type notice struct {
	text  string
	isErr bool
}

// Model is the root Bubble Tea model for the product dashboard. It owns the
// view state (page, search, filter, mode) and derives everything else from
// the query cache entry of the active fingerprint.
type Model struct {
	svc   CatalogService
	store *querycache.Store
	coord *mutation.Coordinator

	pageSize int
	delayMS  int

	mode Mode

	// The three fingerprint components plus the row cursor.
	page     int
	search   string
	category string
	cursor   int

	categories []string

	searchInput textinput.Model
	searching   bool

	form    formState
	confirm confirmState

	// Last shown page, kept on screen while a different fingerprint loads.
	previous    querycache.PageResult
	hasPrevious bool

	notice  notice
	spinner spinner.Model
	help    help.Model
	width   int
	height  int
}

// New creates the dashboard model. The store and coordinator are injected
// so tests (and the CLI wiring) own them; coord must patch pages of the
// same pageSize.
func New(svc CatalogService, store *querycache.Store, coord *mutation.Coordinator, pageSize, delayMS int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	si := textinput.New()
	si.Placeholder = "search products"
	si.CharLimit = 64
	si.Width = 28

	return Model{
		svc:         svc,
		store:       store,
		coord:       coord,
		pageSize:    pageSize,
		delayMS:     delayMS,
		searchInput: si,
		spinner:     sp,
		help:        help.New(),
	}
}

// fingerprint returns the cache key for the current page, search and filter.
func (m Model) fingerprint() querycache.Fingerprint {
	return querycache.Fingerprint{Page: m.page, Search: m.search, Category: m.category}
}

// Init starts the first page fetch and the category load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.fingerprint()), fetchCategories(m.svc), m.spinner.Tick)
}

// fetchCmd begins a new fetch generation for fp and returns the command
// performing the network call. Begin runs here in the update loop; only the
// List call itself runs in the command goroutine, so the store stays
// confined to one goroutine.
func (m Model) fetchCmd(fp querycache.Fingerprint) tea.Cmd {
	token := m.store.Begin(fp)
	svc, pageSize, delay := m.svc, m.pageSize, m.delayMS
	return func() tea.Msg {
		res, err := svc.List(context.Background(), catalog.ListQuery{
			Page:     fp.Page,
			PageSize: pageSize,
			Search:   fp.Search,
			Category: fp.Category,
			DelayMS:  delay,
		})
		if err != nil {
			return PageLoadedMsg{Fingerprint: fp, Token: token, Err: err}
		}
		return PageLoadedMsg{
			Fingerprint: fp,
			Token:       token,
			Result:      querycache.PageResult{Items: res.Items, Total: res.Total},
		}
	}
}

func fetchCategories(svc CatalogService) tea.Cmd {
	return func() tea.Msg {
		cats, err := svc.Categories(context.Background())
		return CategoriesMsg{Categories: cats, Err: err}
	}
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PageLoadedMsg:
		return m.handlePageLoaded(msg)

	case CategoriesMsg:
		if msg.Err == nil {
			m.categories = msg.Categories
		}
		return m, nil

	case MutationMsg:
		return m.handleMutation(msg.Outcome)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handlePageLoaded commits a fetch result. The store drops stale stragglers
// by generation token; accepted results for the active fingerprint refresh
// the displayed page and clamp the cursor.
func (m Model) handlePageLoaded(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.store.Commit(msg.Fingerprint, msg.Token, msg.Result, msg.Err) {
		return m, nil
	}
	if msg.Err == nil && msg.Fingerprint == m.fingerprint() {
		m.previous = msg.Result
		m.hasPrevious = true
		m.cursor = clampCursor(m.cursor, len(msg.Result.Items))
	}
	return m, nil
}

// handleMutation applies a settled mutation to the cache and the view.
func (m Model) handleMutation(out mutation.Outcome) (tea.Model, tea.Cmd) {
	m.coord.Apply(out)

	if out.Err != nil {
		// The cache is untouched; for add/update the form stays open so
		// input is not lost, and a failed delete needs an explicit retry.
		m.notice = notice{text: "Failed to " + out.Kind.String() + " product", isErr: true}
		return m, nil
	}

	switch out.Kind {
	case mutation.KindAdd:
		m.mode = ModeBrowse
		m.form = formState{}
		m.notice = notice{text: fmt.Sprintf("Added %q", out.Product.Title)}

	case mutation.KindUpdate:
		m.mode = ModeBrowse
		m.form = formState{}
		m.notice = notice{text: fmt.Sprintf("Updated %q", out.Product.Title)}

	case mutation.KindDelete:
		m.notice = notice{text: fmt.Sprintf("Deleted %q", out.Product.Title)}
		// Deleting the last row of a later page steps back one page and
		// reloads that page's fingerprint.
		if res, _, ok := m.store.Get(m.fingerprint()); ok && len(res.Items) == 0 && m.page > 0 {
			m.page--
			m.syncFromStore()
			return m, m.fetchCmd(m.fingerprint())
		}
	}

	m.syncFromStore()
	return m, nil
}

// syncFromStore refreshes the displayed page from the active fingerprint's
// cache entry, if it has one.
func (m *Model) syncFromStore() {
	if res, _, ok := m.store.Get(m.fingerprint()); ok {
		m.previous = res
		m.hasPrevious = true
		m.cursor = clampCursor(m.cursor, len(res.Items))
	}
}

// ensureLoaded fetches the active fingerprint unless the cache already has
// a successful entry (shown immediately, no refetch) or a fetch for it is
// already in flight.
func (m Model) ensureLoaded() (Model, tea.Cmd) {
	fp := m.fingerprint()
	if _, status, ok := m.store.Get(fp); ok {
		m.syncFromStore()
		// A page whose last fetch failed still shows its old data but
		// revalidates in the background.
		if status == querycache.StatusError && !m.store.Pending(fp) {
			return m, m.fetchCmd(fp)
		}
		return m, nil
	}
	if m.store.Pending(fp) {
		return m, nil
	}
	return m, m.fetchCmd(fp)
}

// handleKey routes keys by mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeForm:
		return m.handleFormKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if n := len(m.displayItems()); n > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = n - 1
			}
		}
		return m, nil

	case "down", "j":
		if n := len(m.displayItems()); n > 0 {
			m.cursor++
			if m.cursor >= n {
				m.cursor = 0
			}
		}
		return m, nil

	case "left", "h":
		// Clamped: no-op on the first page.
		if m.page == 0 {
			return m, nil
		}
		m.page--
		m.cursor = 0
		next, cmd := m.ensureLoaded()
		return next, cmd

	case "right", "l":
		// Clamped: no-op on the last page (and before any data).
		res, ok := m.displayResult()
		if !ok || m.page >= totalPages(res.Total, m.pageSize)-1 {
			return m, nil
		}
		m.page++
		m.cursor = 0
		next, cmd := m.ensureLoaded()
		return next, cmd

	case "/":
		m.searching = true
		m.searchInput.SetValue(m.search)
		m.searchInput.Focus()
		return m, textinput.Blink

	case "c":
		m.category = nextCategory(m.categories, m.category)
		m.page = 0
		m.cursor = 0
		next, cmd := m.ensureLoaded()
		return next, cmd

	case "a":
		// Opening for add clears any edit target.
		m.form = newFormState(nil)
		m.mode = ModeForm
		m.notice = notice{}
		return m, textinput.Blink

	case "e":
		if p, ok := m.selected(); ok {
			edit := p
			m.form = newFormState(&edit)
			m.mode = ModeForm
			m.notice = notice{}
			return m, textinput.Blink
		}
		return m, nil

	case "d":
		p, ok := m.selected()
		if !ok || m.coord.InFlight(mutation.KindDelete, p.ID) {
			return m, nil
		}
		m.coord.RequestDelete(p.ID)
		m.confirm = confirmState{product: p}
		m.mode = ModeConfirm
		return m, nil

	case "r":
		// Refresh: force a new generation for the active fingerprint.
		return m, m.fetchCmd(m.fingerprint())
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.search = m.searchInput.Value()
		m.page = 0
		m.cursor = 0
		next, cmd := m.ensureLoaded()
		return next, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.formSaving() {
		// Controls are disabled while the submit is in flight.
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.mode = ModeBrowse
		m.form = formState{}
		return m, nil

	case "enter":
		draft, ok := m.form.validate()
		if !ok {
			return m, nil
		}
		if m.form.editing != nil {
			id := m.form.editing.ID
			if !m.coord.Begin(mutation.KindUpdate, id) {
				return m, nil
			}
			return m, m.updateCmd(id, draft)
		}
		if !m.coord.Begin(mutation.KindAdd, 0) {
			return m, nil
		}
		return m, m.addCmd(draft)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		id, ok := m.coord.ConfirmDelete()
		m.mode = ModeBrowse
		if !ok {
			return m, nil
		}
		return m, m.deleteCmd(id)

	case "esc":
		m.coord.CancelDelete()
		m.mode = ModeBrowse
		return m, nil
	}
	return m, nil
}

// formSaving reports whether the open form's submit is in flight.
func (m Model) formSaving() bool {
	if m.form.editing != nil {
		return m.coord.InFlight(mutation.KindUpdate, m.form.editing.ID)
	}
	return m.coord.InFlight(mutation.KindAdd, 0)
}

func (m Model) addCmd(d catalog.Draft) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		p, err := svc.Add(context.Background(), d)
		return MutationMsg{Outcome: mutation.Outcome{Kind: mutation.KindAdd, Product: p, Err: err}}
	}
}

func (m Model) updateCmd(id int, d catalog.Draft) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		p, err := svc.Update(context.Background(), id, d)
		return MutationMsg{Outcome: mutation.Outcome{Kind: mutation.KindUpdate, TargetID: id, Product: p, Err: err}}
	}
}

func (m Model) deleteCmd(id int) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		p, err := svc.Delete(context.Background(), id)
		return MutationMsg{Outcome: mutation.Outcome{Kind: mutation.KindDelete, TargetID: id, Product: p, Err: err}}
	}
}

// displayResult returns what the table should show: the active
// fingerprint's data when it has any, else the previously shown page while
// a different fingerprint loads.
func (m Model) displayResult() (querycache.PageResult, bool) {
	if res, _, ok := m.store.Get(m.fingerprint()); ok {
		return res, true
	}
	if m.hasPrevious && m.store.Pending(m.fingerprint()) {
		return m.previous, true
	}
	return querycache.PageResult{}, false
}

func (m Model) displayItems() []catalog.Product {
	res, ok := m.displayResult()
	if !ok {
		return nil
	}
	return res.Items
}

// selected returns the product under the cursor.
func (m Model) selected() (catalog.Product, bool) {
	items := m.displayItems()
	if len(items) == 0 || m.cursor < 0 || m.cursor >= len(items) {
		return catalog.Product{}, false
	}
	return items[m.cursor], true
}

// deletingID returns the id of the in-flight delete shown in the table, or
// zero when none is running.
func (m Model) deletingID() int {
	for _, p := range m.displayItems() {
		if m.coord.InFlight(mutation.KindDelete, p.ID) {
			return p.ID
		}
	}
	return 0
}

// View renders the dashboard for the current mode with the help bar below.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.mode {
	case ModeForm:
		// A failed save keeps the dialog open; the notice must still show.
		body = m.form.View(m.formSaving()) + m.viewNotice()
	case ModeConfirm:
		body = m.confirm.View()
	default:
		body = m.viewBrowse()
	}

	helpView := m.help.View(HelpBindings(m.mode))
	return lipgloss.JoinVertical(lipgloss.Left, body, helpView)
}

// viewBrowse renders the table screen: header, filter line, table or
// loading/error state, pagination and the notice line.
func (m Model) viewBrowse() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Product Dashboard"))
	b.WriteString("  ")
	b.WriteString(mutedText.Render("Manage your products with ease"))
	b.WriteString("\n")
	b.WriteString(m.viewFilterLine())
	b.WriteString("\n\n")

	fp := m.fingerprint()
	res, ok := m.displayResult()

	switch {
	case !ok && m.store.Err(fp) != nil:
		// Full-page error state; no partial list.
		b.WriteString(errorText.Render("Error loading products"))
		fmt.Fprintf(&b, "\n\n%v\n\nPress r to retry", m.store.Err(fp))

	case !ok:
		fmt.Fprintf(&b, "%s Loading products...", m.spinner.View())

	case len(res.Items) == 0:
		b.WriteString("No products found")

	default:
		b.WriteString(renderTable(res.Items, m.cursor, m.deletingID()))
		b.WriteString("\n\n")
		b.WriteString(renderPagination(m.page, m.pageSize, res.Total))
		if m.store.Pending(fp) {
			fmt.Fprintf(&b, "   %s refreshing", m.spinner.View())
		}
	}

	b.WriteString(m.viewNotice())

	b.WriteString("\n")
	return b.String()
}

// viewNotice renders the status-line notification, or nothing when unset.
func (m Model) viewNotice() string {
	if m.notice.text == "" {
		return ""
	}
	if m.notice.isErr {
		return "\n\n" + errorText.Render(m.notice.text)
	}
	return "\n\n" + successText.Render(m.notice.text)
}

// viewFilterLine renders the search input or the current filter summary.
func (m Model) viewFilterLine() string {
	if m.searching {
		return "Search: " + m.searchInput.View()
	}

	var parts []string
	if m.search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.search))
	}
	if m.category != "" {
		parts = append(parts, "category: "+m.category)
	}
	if len(parts) == 0 {
		return mutedText.Render("all products")
	}
	return mutedText.Render(strings.Join(parts, "  "))
}

// nextCategory cycles through no-filter plus each known category.
func nextCategory(categories []string, current string) string {
	if len(categories) == 0 {
		return ""
	}
	if current == "" {
		return categories[0]
	}
	for i, c := range categories {
		if c == current {
			if i+1 < len(categories) {
				return categories[i+1]
			}
			return ""
		}
	}
	return ""
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}
