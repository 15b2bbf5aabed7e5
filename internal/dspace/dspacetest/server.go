// Package dspacetest provides an in-process DSpace REST fake that enforces the
// XSRF cookie and bearer token handshake.
package dspacetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	BasePath = "/server/api"
	Username = "test@test.edu"
	Password = "admin"

	xsrfCookie = "DSPACE-XSRF-COOKIE"
	xsrfHeader = "X-XSRF-TOKEN"
)

// Request is one request the fake received.
type Request struct {
	Method        string
	Path          string // without BasePath
	Query         string
	XSRF          string
	Authorization string
	ContentType   string
	Body          []byte
}

// Item is a stored DSpace item.
type Item struct {
	UUID       uuid.UUID
	Name       string
	Collection string
	Metadata   map[string][]Value
	Withdrawn  bool
	Bundles    []uuid.UUID
}

// Value is a metadata value.
type Value struct {
	Value    string  `json:"value"`
	Language *string `json:"language"`
}

// Title returns the first dc.title value.
func (i Item) Title() string { return i.first("dc.title") }

// Description returns the first dc.description value.
func (i Item) Description() string { return i.first("dc.description") }

func (i Item) first(field string) string {
	if vs := i.Metadata[field]; len(vs) > 0 {
		return vs[0].Value
	}
	return ""
}

type bundle struct {
	UUID       uuid.UUID
	Name       string
	Bitstreams []uuid.UUID
}

type bitstream struct {
	UUID    uuid.UUID
	Name    string
	Content []byte
}

type object struct {
	UUID   uuid.UUID
	Name   string
	Parent string
}

type failure struct {
	method string
	prefix string
	status int
}

// Server is the fake. Its URL plus BasePath is the client base URL.
type Server struct {
	*httptest.Server

	tokens atomic.Int64

	mu          sync.Mutex
	requests    []Request
	bearers     map[string]bool
	items       map[uuid.UUID]*Item
	bundles     map[uuid.UUID]*bundle
	bitstreams  map[uuid.UUID]*bitstream
	communities []object
	collections []object
	failures    []failure
}

// NewServer starts a fake; it is closed when the test ends.
func NewServer(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		bearers:    make(map[string]bool),
		items:      make(map[uuid.UUID]*Item),
		bundles:    make(map[uuid.UUID]*bundle),
		bitstreams: make(map[uuid.UUID]*bitstream),
	}
	s.Server = httptest.NewServer(http.StripPrefix(BasePath, http.HandlerFunc(s.serve)))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to configure clients with.
func (s *Server) BaseURL() string {
	return s.URL + BasePath
}

// Fail makes authorized requests matching method and path prefix answer with
// status. Handshake requests are unaffected.
func (s *Server) Fail(method, pathPrefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, prefix: pathPrefix, status: status})
}

// Reset clears injected failures.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = nil
}

// Requests returns a copy of the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many authorized requests matched method and path prefix.
func (s *Server) Count(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Authorization != "" && r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// Item returns a copy of a stored item.
func (s *Server) Item(id uuid.UUID) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// ItemCount returns the number of stored items.
func (s *Server) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// AddCollection registers a collection and returns its id.
func (s *Server) AddCollection(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.collections = append(s.collections, object{UUID: id, Name: name})
	return id
}

// AddBitstream attaches content to the first bundle of an item, creating the
// bundle when needed.
func (s *Server) AddBitstream(itemID uuid.UUID, name string, content []byte) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.items[itemID]
	if len(item.Bundles) == 0 {
		b := &bundle{UUID: uuid.New(), Name: "ORIGINAL"}
		s.bundles[b.UUID] = b
		item.Bundles = append(item.Bundles, b.UUID)
	}
	b := s.bundles[item.Bundles[0]]
	bs := &bitstream{UUID: uuid.New(), Name: name, Content: content}
	s.bitstreams[bs.UUID] = bs
	b.Bitstreams = append(b.Bitstreams, bs.UUID)
	return bs.UUID
}

func (s *Server) nextToken(kind string) string {
	return fmt.Sprintf("%s-%d", kind, s.tokens.Add(1))
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		XSRF:          r.Header.Get(xsrfHeader),
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && req.Path == "/authn/status":
		s.setXSRF(w)
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	case r.Method == http.MethodPost && req.Path == "/authn/login":
		s.login(w, r, req)
		return
	}

	if !s.validXSRF(r, req) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Invalid XSRF token"})
		return
	}
	if req.Authorization == "" {
		// priming request: DSpace rejects it but rotates the token
		s.setXSRF(w)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Authentication is required"})
		return
	}
	s.mu.Lock()
	known := s.bearers[req.Authorization]
	s.mu.Unlock()
	if !known {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid token"})
		return
	}
	if status := s.injected(req); status != 0 {
		writeJSON(w, status, map[string]any{"status": status, "message": http.StatusText(status)})
		return
	}
	s.route(w, req)
}

func (s *Server) setXSRF(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: xsrfCookie, Value: s.nextToken("xsrf"), Path: "/"})
}

// validXSRF requires the header to echo the cookie the client holds.
func (s *Server) validXSRF(r *http.Request, req Request) bool {
	c, err := r.Cookie(xsrfCookie)
	return err == nil && req.XSRF != "" && c.Value == req.XSRF
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, req Request) {
	if !s.validXSRF(r, req) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Invalid XSRF token"})
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(req.Body)))
	if err := r.ParseForm(); err != nil || r.PostForm.Get("user") != Username || r.PostForm.Get("password") != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Authentication failed"})
		return
	}
	bearer := "Bearer " + s.nextToken("jwt")
	s.mu.Lock()
	s.bearers[bearer] = true
	s.mu.Unlock()
	s.setXSRF(w)
	w.Header().Set("Authorization", bearer)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) injected(req Request) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.failures {
		if f.method == req.Method && strings.HasPrefix(req.Path, f.prefix) {
			return f.status
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
