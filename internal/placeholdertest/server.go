// Package placeholdertest provides an in-process stand in for the
// JSONPlaceholder REST API for use in tests.
package placeholdertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	PostCount = 100
	TodoCount = 200

	// CreatedID is the id the server gives every created post, just like the
	// real API does.
	CreatedID = 101
)

// Request is what the server saw of a request.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is a fake posts API. It does not persist any change, which matches
// the behavior of the real service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	delays   map[string]time.Duration
	block    map[string]chan struct{}
}

func NewServer() *Server {
	s := &Server{
		delays: make(map[string]time.Duration),
		block:  make(map[string]chan struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// Delay makes requests for path wait d before being answered.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[path] = d
}

// Block makes requests for path wait until the returned function is called or
// the client goes away.
func (s *Server) Block(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.block[path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func Post(id int) map[string]any {
	return map[string]any{
		"userId": (id-1)/10 + 1,
		"id":     id,
		"title":  fmt.Sprintf("post %d title", id),
		"body":   fmt.Sprintf("post %d body", id),
	}
}

func Todo(id int) map[string]any {
	return map[string]any{
		"userId":    (id-1)/20 + 1,
		"id":        id,
		"title":     fmt.Sprintf("todo %d", id),
		"completed": id%2 == 0,
	}
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	delay := s.delays[r.URL.Path]
	block := s.block[r.URL.Path]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-r.Context().Done():
			return
		}
	}

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(segments) == 1 && segments[0] == "posts":
		s.servePosts(w, r, body)
	case len(segments) == 1 && segments[0] == "todos":
		writeJSON(w, http.StatusOK, limit(r, TodoCount, Todo))
	case len(segments) == 2 && segments[0] == "posts":
		id, err := strconv.Atoi(segments[1])
		if err != nil || id < 1 {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		s.servePost(w, r, id, body)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{})
	}
}

func (s *Server) servePosts(w http.ResponseWriter, r *http.Request, body []byte) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, limit(r, PostCount, Post))
	case http.MethodPost:
		created := map[string]any{}
		if err := json.Unmarshal(body, &created); err != nil && len(body) > 0 {
			writeJSON(w, http.StatusInternalServerError, map[string]any{})
			return
		}
		created["id"] = CreatedID
		writeJSON(w, http.StatusCreated, created)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{})
	}
}

func (s *Server) servePost(w http.ResponseWriter, r *http.Request, id int, body []byte) {
	var update map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &update); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{})
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		if id > PostCount {
			writeJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		writeJSON(w, http.StatusOK, Post(id))
	case http.MethodPut:
		// PUT answers with exactly what was sent plus the id.
		out := map[string]any{"id": id}
		for k, v := range update {
			out[k] = v
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPatch:
		out := Post(id)
		for k, v := range update {
			out[k] = v
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{})
	}
}

func limit(r *http.Request, count int, item func(int) map[string]any) []map[string]any {
	n := count
	if l, err := strconv.Atoi(r.URL.Query().Get("_limit")); err == nil && l >= 0 && l < n {
		n = l
	}
	items := make([]map[string]any, 0, n)
	for id := 1; id <= n; id++ {
		items = append(items, item(id))
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
