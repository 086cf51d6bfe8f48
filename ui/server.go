// Package ui serves a single page with one button per request pattern and the
// current posts underneath.
package ui

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	postsdemo "github.com/anitschke/go-postsdemo"
	"github.com/sirupsen/logrus"
)

// defaultPostID is the post the update, patch and delete buttons act on.
const defaultPostID = 1

// Notices collects messages for the user. They are shown, and dropped, the
// next time the page renders.
type Notices struct {
	mu       sync.Mutex
	messages []string
}

var _ = (postsdemo.Notifier)((*Notices)(nil))

func (n *Notices) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

// Drain returns the pending messages and forgets them.
func (n *Notices) Drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.messages
	n.messages = nil
	return out
}

type action struct {
	name  string
	label string
	run   func(ctx context.Context, d *postsdemo.Dispatcher) error
}

var actions = []action{
	{name: "get-posts", label: "Get Posts", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		return d.GetPosts(ctx)
	}},
	{name: "add-post", label: "Add Post", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		return d.AddPost(ctx)
	}},
	{name: "update-post", label: "Update Post", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		return d.UpdatePost(ctx, defaultPostID)
	}},
	{name: "patch-post", label: "Patch Post", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		return d.PatchPost(ctx, defaultPostID)
	}},
	{name: "delete-post", label: "Delete Post", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		return d.DeletePost(ctx, defaultPostID)
	}},
	{name: "simultaneous-requests", label: "Simultaneous Requests", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		return d.GetPostAndTodo(ctx)
	}},
	{name: "custom-headers", label: "Custom Headers", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		return d.AddPostWithCustomHeaders(ctx)
	}},
	{name: "handling-errors", label: "Handling Errors", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		d.HandlingError(ctx)
		return nil
	}},
	{name: "cancel-request", label: "Cancel Request", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		d.StartCancellableFetch(ctx)
		return nil
	}},
	{name: "abort-request", label: "Abort Request", run: func(ctx context.Context, d *postsdemo.Dispatcher) error {
		return d.CancelRequest()
	}},
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Posts demo</title></head>
<body>
<div>
{{- range .Actions}}
<form method="post" action="/actions/{{.Name}}" style="display:inline"><button type="submit">{{.Label}}</button></form>
{{- end}}
</div>
{{- range .Posts}}
<div>{{.}}</div>
<br />
{{- end}}
{{- if .Notices}}
<script>
{{- range .Notices}}
alert({{.}});
{{- end}}
</script>
{{- end}}
</body>
</html>
`))

type pageAction struct {
	Name  string
	Label string
}

type pageData struct {
	Actions []pageAction
	Posts   []string
	Notices []string
}

// Server is the http.Handler for the UI.
type Server struct {
	dispatcher *postsdemo.Dispatcher
	state      *postsdemo.ViewState
	notices    *Notices
	logger     logrus.FieldLogger
	handler    http.Handler
}

var _ = (http.Handler)((*Server)(nil))

func NewServer(d *postsdemo.Dispatcher, state *postsdemo.ViewState, notices *Notices, logger logrus.FieldLogger) *Server {
	s := &Server{
		dispatcher: d,
		state:      state,
		notices:    notices,
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/posts", s.handlePosts)
	mux.HandleFunc("/actions/", s.handleAction)
	s.handler = logRequests(logger, mux)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		Notices: s.notices.Drain(),
	}
	for _, a := range actions {
		data.Actions = append(data.Actions, pageAction{Name: a.name, Label: a.label})
	}
	posts, _ := s.state.Posts()
	for _, p := range posts {
		data.Posts = append(data.Posts, p.String())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("failed to render page")
	}
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	posts, ok := s.state.Posts()
	if !ok {
		w.Write([]byte("null\n"))
		return
	}
	if err := json.NewEncoder(w).Encode(posts); err != nil {
		s.logger.WithError(err).Error("failed to write posts")
	}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/actions/")
	for _, a := range actions {
		if a.name != name {
			continue
		}
		if err := a.run(r.Context(), s.dispatcher); err != nil {
			s.logger.WithError(err).WithField("action", name).Error("action failed")
			s.notices.Notify(err.Error())
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.NotFound(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(logger logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("ui request")
	})
}
