package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"prodash/internal/catalog"
	"prodash/internal/config"
	"prodash/internal/dashboard"
	"prodash/internal/mutation"
	"prodash/internal/querycache"
	"prodash/internal/stubapi"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for prodash.
type CLI struct {
	Version    kong.VersionFlag `help:"Show version." short:"V"`
	Dash       DashCmd          `cmd:"" default:"1" help:"Open the interactive product dashboard."`
	List       ListCmd          `cmd:"" help:"List products."`
	Get        GetCmd           `cmd:"" help:"Show a single product."`
	Add        AddCmd           `cmd:"" help:"Add a product."`
	Update     UpdateCmd        `cmd:"" help:"Update a product."`
	Rm         RmCmd            `cmd:"" help:"Delete a product."`
	Categories CategoriesCmd    `cmd:"" help:"List product categories."`
	Serve      ServeCmd         `cmd:"" help:"Run a local stub catalog API."`
}

// catalogService is the client surface the plain commands use.
type catalogService interface {
	List(ctx context.Context, q catalog.ListQuery) (catalog.ListResult, error)
	Get(ctx context.Context, id int) (catalog.Product, error)
	Add(ctx context.Context, d catalog.Draft) (catalog.Product, error)
	Update(ctx context.Context, id int, d catalog.Draft) (catalog.Product, error)
	Delete(ctx context.Context, id int) (catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/prodash/config.yaml"),
		"prodash.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds the catalog client from config, applying CLI overrides.
func newClient(cfg *config.Config, baseURL string) *catalog.Client {
	if baseURL == "" {
		baseURL = cfg.Service.BaseURL
	}
	return catalog.New(baseURL, catalog.WithTimeout(cfg.Service.Timeout))
}

// signalCtx returns a context cancelled on Ctrl+C.
func signalCtx() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// --- Dash command ---

// DashCmd opens the interactive dashboard TUI.
type DashCmd struct {
	BaseURL  string `help:"Catalog service base URL (overrides config)."`
	PageSize int    `help:"Rows per page (overrides config)." default:"0"`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the dashboard TUI.
func (d *DashCmd) Run() error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return d.run(false, nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("dash: %w", err)
	}
	if d.PageSize > 0 {
		cfg.Dashboard.PageSize = d.PageSize
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("dash: %w", err)
	}

	client := newClient(cfg, d.BaseURL)
	store := querycache.NewStore()
	coord := mutation.New(store, cfg.Dashboard.PageSize)
	m := dashboard.New(client, store, coord, cfg.Dashboard.PageSize, cfg.Dashboard.DelayMS)

	prog := tea.NewProgram(m, tea.WithAltScreen())
	return d.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (d *DashCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("dash: requires a terminal (TTY); use list/get for scripting")
	}
	_, err := prog.Run()
	return err
}

// --- Plain CRUD commands ---

// ListCmd lists products one per line.
type ListCmd struct {
	Page     int    `help:"Zero-based page." default:"0"`
	PageSize int    `help:"Rows per page (overrides config)." default:"0"`
	Search   string `help:"Title search term." short:"s"`
	Category string `help:"Category filter." short:"c"`
	BaseURL  string `help:"Catalog service base URL (overrides config)."`
}

// Run executes the list command.
func (l *ListCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if l.PageSize > 0 {
		cfg.Dashboard.PageSize = l.PageSize
	}
	ctx, stop := signalCtx()
	defer stop()
	return l.run(ctx, os.Stdout, newClient(cfg, l.BaseURL), cfg.Dashboard.PageSize)
}

func (l *ListCmd) run(ctx context.Context, w io.Writer, svc catalogService, pageSize int) error {
	res, err := svc.List(ctx, catalog.ListQuery{
		Page:     l.Page,
		PageSize: pageSize,
		Search:   l.Search,
		Category: l.Category,
	})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	for _, p := range res.Items {
		_, _ = fmt.Fprintf(w, "%-5d %-40s %10.2f  %-16s %5d  %s\n",
			p.ID, p.Title, p.Price, p.Category, p.Stock, p.Brand)
	}
	from := res.Skip + 1
	to := res.Skip + len(res.Items)
	if len(res.Items) == 0 {
		from = 0
	}
	_, _ = fmt.Fprintf(w, "Showing %d to %d of %d products\n", from, to, res.Total)
	return nil
}

// GetCmd prints one product in full.
type GetCmd struct {
	ID      int    `arg:"" help:"Product ID."`
	BaseURL string `help:"Catalog service base URL (overrides config)."`
}

// Run executes the get command.
func (g *GetCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	ctx, stop := signalCtx()
	defer stop()
	return g.run(ctx, os.Stdout, newClient(cfg, g.BaseURL))
}

func (g *GetCmd) run(ctx context.Context, w io.Writer, svc catalogService) error {
	p, err := svc.Get(ctx, g.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("get: product %d not found", g.ID)
		}
		return fmt.Errorf("get: %w", err)
	}
	printProduct(w, p)
	return nil
}

func printProduct(w io.Writer, p catalog.Product) {
	_, _ = fmt.Fprintf(w, "ID:          %d\n", p.ID)
	_, _ = fmt.Fprintf(w, "Title:       %s\n", p.Title)
	_, _ = fmt.Fprintf(w, "Price:       %.2f\n", p.Price)
	_, _ = fmt.Fprintf(w, "Category:    %s\n", p.Category)
	_, _ = fmt.Fprintf(w, "Stock:       %d\n", p.Stock)
	if p.Brand != "" {
		_, _ = fmt.Fprintf(w, "Brand:       %s\n", p.Brand)
	}
	if p.Description != "" {
		_, _ = fmt.Fprintf(w, "Description: %s\n", p.Description)
	}
}

// draftFlags carries the shared product fields of add and update.
type draftFlags struct {
	Title       string  `help:"Product title." required:""`
	Price       float64 `help:"Product price." required:""`
	Category    string  `help:"Product category." required:""`
	Stock       int     `help:"Stock count." default:"0"`
	Brand       string  `help:"Product brand."`
	Description string  `help:"Product description."`
}

func (f draftFlags) draft() (catalog.Draft, error) {
	if f.Price <= 0 {
		return catalog.Draft{}, errors.New("price must be a positive number")
	}
	if f.Stock < 0 {
		return catalog.Draft{}, errors.New("stock must not be negative")
	}
	return catalog.Draft{
		Title:       f.Title,
		Price:       f.Price,
		Category:    f.Category,
		Stock:       f.Stock,
		Brand:       f.Brand,
		Description: f.Description,
	}, nil
}

// AddCmd creates a product.
type AddCmd struct {
	draftFlags
	BaseURL string `help:"Catalog service base URL (overrides config)."`
}

// Run executes the add command.
func (a *AddCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	ctx, stop := signalCtx()
	defer stop()
	return a.run(ctx, os.Stdout, newClient(cfg, a.BaseURL))
}

func (a *AddCmd) run(ctx context.Context, w io.Writer, svc catalogService) error {
	draft, err := a.draft()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	p, err := svc.Add(ctx, draft)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Added product %d: %s\n", p.ID, p.Title)
	return nil
}

// UpdateCmd replaces a product's fields.
type UpdateCmd struct {
	ID int `arg:"" help:"Product ID."`
	draftFlags
	BaseURL string `help:"Catalog service base URL (overrides config)."`
}

// Run executes the update command.
func (u *UpdateCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	ctx, stop := signalCtx()
	defer stop()
	return u.run(ctx, os.Stdout, newClient(cfg, u.BaseURL))
}

func (u *UpdateCmd) run(ctx context.Context, w io.Writer, svc catalogService) error {
	draft, err := u.draft()
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	p, err := svc.Update(ctx, u.ID, draft)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("update: product %d not found", u.ID)
		}
		return fmt.Errorf("update: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Updated product %d: %s\n", p.ID, p.Title)
	return nil
}

// RmCmd deletes a product.
type RmCmd struct {
	ID      int    `arg:"" help:"Product ID."`
	Yes     bool   `help:"Skip the confirmation prompt." short:"y"`
	BaseURL string `help:"Catalog service base URL (overrides config)."`
}

// Run executes the rm command.
func (r *RmCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	ctx, stop := signalCtx()
	defer stop()
	return r.run(ctx, os.Stdin, os.Stdout, newClient(cfg, r.BaseURL))
}

func (r *RmCmd) run(ctx context.Context, in io.Reader, w io.Writer, svc catalogService) error {
	if !r.Yes {
		_, _ = fmt.Fprintf(w, "Delete product %d? [y/N] ", r.ID)
		var answer string
		_, _ = fmt.Fscanln(in, &answer)
		if answer != "y" && answer != "Y" {
			_, _ = fmt.Fprintln(w, "Aborted")
			return nil
		}
	}

	p, err := svc.Delete(ctx, r.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("rm: product %d not found", r.ID)
		}
		return fmt.Errorf("rm: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Deleted product %d: %s\n", p.ID, p.Title)
	return nil
}

// CategoriesCmd lists categories one per line.
type CategoriesCmd struct {
	BaseURL string `help:"Catalog service base URL (overrides config)."`
}

// Run executes the categories command.
func (c *CategoriesCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	ctx, stop := signalCtx()
	defer stop()
	return c.run(ctx, os.Stdout, newClient(cfg, c.BaseURL))
}

func (c *CategoriesCmd) run(ctx context.Context, w io.Writer, svc catalogService) error {
	cats, err := svc.Categories(ctx)
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	for _, cat := range cats {
		_, _ = fmt.Fprintln(w, cat)
	}
	return nil
}

// --- Serve command ---

// ServeCmd runs a local stub catalog API with the remote service's
// endpoints and envelope, backed by an in-memory store.
type ServeCmd struct {
	Addr string `help:"Listen address." default:":8080"`
}

// Run executes the serve command.
func (s *ServeCmd) Run() error {
	store := stubapi.NewStore(stubapi.SeedProducts()...)
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           stubapi.NewServer(store).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signalCtx()
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Printf("stub catalog API listening on %s", s.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func main() {
	// A local .env can point the client at a stub service.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli, kong.Vars{"version": version + " " + commit + " " + date})
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
