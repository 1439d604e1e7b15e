// Package stubapi is a local in-memory stand-in for the remote catalog
// service: same endpoints, same envelopes. It backs `prodash serve` for
// offline demos and the client's end-to-end tests.
package stubapi

import (
	"sort"
	"strings"
	"sync"

	"prodash/internal/catalog"
)

// Store holds the stub's product records in memory.
type Store struct {
	mu     sync.RWMutex
	items  map[int]catalog.Product
	nextID int
}

// NewStore creates a store seeded with the given products. The next
// assigned id follows the highest seeded one.
func NewStore(seed ...catalog.Product) *Store {
	s := &Store{items: make(map[int]catalog.Product), nextID: 1}
	for _, p := range seed {
		s.items[p.ID] = p
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

// List returns one page of products matching the filter, ordered by id, and
// the total match count. Category takes precedence over search.
func (s *Store) List(search, category string, skip, limit int) ([]catalog.Product, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []catalog.Product
	for _, p := range s.items {
		switch {
		case category != "":
			if !strings.EqualFold(p.Category, category) {
				continue
			}
		case search != "":
			if !strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) {
				continue
			}
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if skip < 0 {
		skip = 0
	}
	if skip > total {
		skip = total
	}
	end := total
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return matched[skip:end], total
}

// Get returns the product with the given id.
func (s *Store) Get(id int) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	return p, ok
}

// Add stores a new product, assigning the next id.
func (s *Store) Add(d catalog.Draft) catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := catalog.Product{
		ID:          s.nextID,
		Title:       d.Title,
		Price:       d.Price,
		Category:    d.Category,
		Stock:       d.Stock,
		Description: d.Description,
		Brand:       d.Brand,
	}
	s.nextID++
	s.items[p.ID] = p
	return p
}

// Update replaces the writable fields of an existing product.
func (s *Store) Update(id int, d catalog.Draft) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return catalog.Product{}, false
	}
	p.Title = d.Title
	p.Price = d.Price
	p.Category = d.Category
	p.Stock = d.Stock
	p.Description = d.Description
	p.Brand = d.Brand
	s.items[id] = p
	return p, true
}

// Delete removes a product and returns the removed record.
func (s *Store) Delete(id int) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return catalog.Product{}, false
	}
	delete(s.items, id)
	return p, true
}

// Categories returns the distinct category names, sorted.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, p := range s.items {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// SeedProducts returns a small demo catalog for `prodash serve`.
func SeedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Wireless Mouse", Price: 24.99, Category: "electronics", Stock: 120, Brand: "Logi"},
		{ID: 2, Title: "Mechanical Keyboard", Price: 89.50, Category: "electronics", Stock: 45, Brand: "Keychron"},
		{ID: 3, Title: "Espresso Beans 1kg", Price: 18.00, Category: "groceries", Stock: 200, Brand: "Lavazza"},
		{ID: 4, Title: "Yoga Mat", Price: 32.00, Category: "sports", Stock: 60},
		{ID: 5, Title: "Desk Lamp", Price: 41.75, Category: "furniture", Stock: 38, Brand: "Lumina"},
		{ID: 6, Title: "Noise-Cancelling Headphones", Price: 199.99, Category: "electronics", Stock: 22, Brand: "Sonora"},
		{ID: 7, Title: "Running Shoes", Price: 75.00, Category: "sports", Stock: 80, Brand: "Strider"},
		{ID: 8, Title: "Green Tea 100 bags", Price: 9.99, Category: "groceries", Stock: 340},
		{ID: 9, Title: "Standing Desk", Price: 420.00, Category: "furniture", Stock: 12, Brand: "Uplift"},
		{ID: 10, Title: "USB-C Hub", Price: 49.00, Category: "electronics", Stock: 95, Brand: "Anchor"},
		{ID: 11, Title: "Water Bottle 1L", Price: 14.50, Category: "sports", Stock: 150},
		{ID: 12, Title: "Bookshelf", Price: 130.00, Category: "furniture", Stock: 17},
	}
}
