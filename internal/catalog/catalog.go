// Package catalog is a thin client for the remote product-catalog service.
// It translates list/get/add/update/delete operations into HTTP calls and
// decodes the service's JSON envelopes; it holds no state beyond the
// connection settings.
package catalog

// Product is one catalog record. The id is assigned by the service on add
// and never by this client.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
}

// Draft is the writable subset of a product, sent on add and update.
type Draft struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
}

// ListQuery selects one page of the catalog. Category takes precedence over
// Search; with neither set an unfiltered page is requested.
type ListQuery struct {
	Page     int // zero-based page index
	PageSize int
	Search   string
	Category string
	DelayMS  int // demo latency injected by the service; sent on list calls only
}

// ListResult is one decoded page of products. Items preserves the service's
// ordering; Total counts all matches across pages.
type ListResult struct {
	Items []Product
	Total int
	Skip  int
	Limit int
}
