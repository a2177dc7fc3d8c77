// Package testutil provides a mock catalog service for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Pokemon describes a record served by MockCatalog.
type Pokemon struct {
	ID             int
	Name           string
	Height         int
	Weight         int
	BaseExperience int
	Types          []string
}

// MockResponse defines a canned response for one path.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockCatalog is a configurable stand-in for the catalog API.
type MockCatalog struct {
	server *httptest.Server

	mu        sync.RWMutex
	pokemon   map[int]Pokemon
	types     []string
	overrides map[string]MockResponse
	requests  int
	paths     []string
}

// NewMockCatalog starts a mock catalog server.
func NewMockCatalog() *MockCatalog {
	m := &MockCatalog{
		pokemon:   make(map[int]Pokemon),
		overrides: make(map[string]MockResponse),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the base URL to configure the client with.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// AddPokemon registers records served from /pokemon/{id}.
func (m *MockCatalog) AddPokemon(records ...Pokemon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range records {
		m.pokemon[p.ID] = p
	}
}

// AddRange registers generated records for every id in [start, end].
// Weight, height and base experience are derived from the id.
func (m *MockCatalog) AddRange(start, end int, types ...string) {
	for id := start; id <= end; id++ {
		m.AddPokemon(Pokemon{
			ID:             id,
			Name:           fmt.Sprintf("mon-%d", id),
			Height:         id % 17,
			Weight:         id * 3,
			BaseExperience: 50 + id,
			Types:          types,
		})
	}
}

// SetTypes sets the vocabulary served from /type.
func (m *MockCatalog) SetTypes(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = names
}

// SetResponse overrides the response for an exact path, e.g. "/pokemon/3".
func (m *MockCatalog) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[path] = resp
}

// RequestCount returns the number of requests received.
func (m *MockCatalog) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

// Paths returns the request paths in arrival order.
func (m *MockCatalog) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.paths...)
}

func (m *MockCatalog) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests++
	m.paths = append(m.paths, r.URL.Path)
	override, hasOverride := m.overrides[r.URL.Path]
	m.mu.Unlock()

	if hasOverride {
		if override.Delay > 0 {
			select {
			case <-time.After(override.Delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(override.StatusCode)
		if override.Body != "" {
			w.Write([]byte(override.Body))
		}
		return
	}

	switch {
	case r.URL.Path == "/type" || r.URL.Path == "/type/":
		m.serveTypes(w)
	case strings.HasPrefix(r.URL.Path, "/pokemon/"):
		m.servePokemon(w, strings.Trim(strings.TrimPrefix(r.URL.Path, "/pokemon/"), "/"))
	default:
		http.NotFound(w, r)
	}
}

func (m *MockCatalog) serveTypes(w http.ResponseWriter) {
	m.mu.RLock()
	names := m.types
	m.mu.RUnlock()

	results := make([]map[string]string, 0, len(names))
	for i, name := range names {
		results = append(results, map[string]string{
			"name": name,
			"url":  fmt.Sprintf("https://pokeapi.co/api/v2/type/%d/", i+1),
		})
	}

	writeJSON(w, map[string]any{"count": len(results), "results": results})
}

func (m *MockCatalog) servePokemon(w http.ResponseWriter, idText string) {
	id, err := strconv.Atoi(idText)
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	m.mu.RLock()
	p, ok := m.pokemon[id]
	m.mu.RUnlock()
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	writeJSON(w, PokemonJSON(p))
}

// PokemonJSON renders a record in the catalog's wire shape.
func PokemonJSON(p Pokemon) map[string]any {
	types := make([]map[string]any, 0, len(p.Types))
	for i, t := range p.Types {
		types = append(types, map[string]any{
			"slot": i + 1,
			"type": map[string]string{"name": t, "url": "https://pokeapi.co/api/v2/type/" + t + "/"},
		})
	}

	return map[string]any{
		"id":              p.ID,
		"name":            p.Name,
		"height":          p.Height,
		"weight":          p.Weight,
		"base_experience": p.BaseExperience,
		"sprites": map[string]any{
			"other": map[string]any{
				"official-artwork": map[string]any{
					"front_default": fmt.Sprintf("https://img.example/%d.png", p.ID),
				},
			},
		},
		"types": types,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
