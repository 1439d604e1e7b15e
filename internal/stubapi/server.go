package stubapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"prodash/internal/catalog"
)

// Server serves the catalog endpoints over an in-memory store.
type Server struct {
	store *Store
}

// NewServer creates a Server over the given store.
func NewServer(store *Store) *Server {
	return &Server{store: store}
}

// Router builds the HTTP routes. The shapes mirror the remote service:
// list endpoints return {products, total, skip, limit} and honor limit,
// skip and delay query parameters.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/products", s.handleList).Methods("GET")
	r.HandleFunc("/products/add", s.handleAdd).Methods("POST")
	r.HandleFunc("/products/search", s.handleList).Methods("GET")
	r.HandleFunc("/products/category-list", s.handleCategories).Methods("GET")
	r.HandleFunc("/products/category/{category}", s.handleList).Methods("GET")
	r.HandleFunc("/products/{id:[0-9]+}", s.handleGet).Methods("GET")
	r.HandleFunc("/products/{id:[0-9]+}", s.handleUpdate).Methods("PUT")
	r.HandleFunc("/products/{id:[0-9]+}", s.handleDelete).Methods("DELETE")
	return r
}

// listResponse is the wire envelope shared by all list endpoints.
type listResponse struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
	Skip     int               `json:"skip"`
	Limit    int               `json:"limit"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func queryInt(r *http.Request, name, fallback string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		v = fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", "30")
	skip := queryInt(r, "skip", "0")

	// The service's demo latency knob; honored so dashboards behave the
	// same against the stub.
	if delay := queryInt(r, "delay", "0"); delay > 0 {
		time.Sleep(time.Duration(delay) * time.Millisecond)
	}

	search := r.URL.Query().Get("q")
	category := mux.Vars(r)["category"]

	items, total := s.store.List(search, category, skip, limit)
	if items == nil {
		items = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, listResponse{Products: items, Total: total, Skip: skip, Limit: limit})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	p, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Product with id '"+strconv.Itoa(id)+"' not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var d catalog.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	writeJSON(w, http.StatusCreated, s.store.Add(d))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var d catalog.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	p, ok := s.store.Update(id, d)
	if !ok {
		writeError(w, http.StatusNotFound, "Product with id '"+strconv.Itoa(id)+"' not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	p, ok := s.store.Delete(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Product with id '"+strconv.Itoa(id)+"' not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Categories())
}
