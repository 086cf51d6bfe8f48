package postsdemo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	listLimit = 5

	// badPostsPath is deliberately misspelled so the server answers 404.
	badPostsPath = "/postss"
)

var (
	newPostPayload = NewPost{
		Title: "My New Post",
		Body:  "This is my new post",
	}
	updatePayload = PostUpdate{
		Title: "Updated Post",
	}
	customHeaders = http.Header{
		"Content-Type":  {"application/json"},
		"Authorization": {"Bearer 12345"},
	}
)

// Notifier surfaces a message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts an ordinary function to the Notifier interface.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) {
	f(msg)
}

type inFlightRequest struct {
	cancel context.CancelFunc
	done   chan struct{}

	// cancelled is guarded by Dispatcher.mu.
	cancelled bool
}

// Dispatcher runs one request pattern per method and stores the result in a
// ViewState.
//
// Unless documented otherwise a method leaves the ViewState untouched and
// returns the error when its request fails. Nothing is retried.
type Dispatcher struct {
	client   Client
	state    *ViewState
	notifier Notifier
	logger   logrus.FieldLogger

	mu       sync.Mutex
	inFlight *inFlightRequest
	last     *inFlightRequest
}

func NewDispatcher(client Client, state *ViewState, notifier Notifier, logger logrus.FieldLogger) *Dispatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &Dispatcher{
		client:   client,
		state:    state,
		notifier: notifier,
		logger:   logger,
	}
}

// GetPosts replaces the posts with the first few posts from the server.
func (d *Dispatcher) GetPosts(ctx context.Context) error {
	posts, err := d.client.ListPosts(ctx, listLimit)
	if err != nil {
		return err
	}
	d.state.Replace(posts)
	return nil
}

// AddPost creates a post and puts it in front of the current posts.
func (d *Dispatcher) AddPost(ctx context.Context) error {
	created, err := d.client.CreatePost(ctx, newPostPayload, nil)
	if err != nil {
		return err
	}
	d.state.Prepend(created)
	return nil
}

// UpdatePost replaces post id with a PUT and swaps the server's answer in for
// it. Posts must already be loaded.
func (d *Dispatcher) UpdatePost(ctx context.Context, id int) error {
	if !d.state.Present() {
		return ErrNoPosts
	}
	updated, err := d.client.ReplacePost(ctx, id, updatePayload)
	if err != nil {
		return err
	}
	return d.state.ReplaceByID(id, updated)
}

// PatchPost is UpdatePost with a PATCH.
func (d *Dispatcher) PatchPost(ctx context.Context, id int) error {
	if !d.state.Present() {
		return ErrNoPosts
	}
	updated, err := d.client.PatchPost(ctx, id, updatePayload)
	if err != nil {
		return err
	}
	return d.state.ReplaceByID(id, updated)
}

// DeletePost deletes post id and drops it from the posts. Posts must already
// be loaded.
func (d *Dispatcher) DeletePost(ctx context.Context, id int) error {
	if !d.state.Present() {
		return ErrNoPosts
	}
	if err := d.client.DeletePost(ctx, id); err != nil {
		return err
	}
	return d.state.RemoveByID(id)
}

// GetPostAndTodo gets one post and one todo at the same time. The posts become
// the two response bodies, posts first, no matter which request finishes
// first.
func (d *Dispatcher) GetPostAndTodo(ctx context.Context) error {
	paths := []string{postsPath, todosPath}
	results := make([]Record, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			body, err := d.client.GetRaw(gctx, path, limitQuery(1))
			if err != nil {
				return err
			}
			results[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	d.state.Replace(results)
	return nil
}

// AddPostWithCustomHeaders is AddPost sent with its own Content-Type and
// Authorization headers.
func (d *Dispatcher) AddPostWithCustomHeaders(ctx context.Context) error {
	created, err := d.client.CreatePost(ctx, newPostPayload, customHeaders)
	if err != nil {
		return err
	}
	d.state.Prepend(created)
	return nil
}

// HandlingError asks for a path that does not exist. The failure is logged and
// the user is notified once; the posts are left alone.
func (d *Dispatcher) HandlingError(ctx context.Context) {
	posts, err := d.client.GetRaw(ctx, badPostsPath, limitQuery(listLimit))
	if err != nil {
		d.logger.WithError(err).WithField("action", "handling-errors").Error("request failed")
		d.notifier.Notify(err.Error())
		return
	}

	var records []Record
	if err := json.Unmarshal(posts, &records); err != nil {
		d.logger.WithError(err).WithField("action", "handling-errors").Error("unexpected response")
		d.notifier.Notify(err.Error())
		return
	}
	d.state.Replace(records)
}

// StartCancellableFetch gets the posts in the background and returns right
// away. The request runs until it finishes or CancelRequest is called; ctx
// only supplies values, its cancellation is not inherited. Any request already
// in flight is cancelled first.
func (d *Dispatcher) StartCancellableFetch(ctx context.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	req := &inFlightRequest{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	d.mu.Lock()
	if d.inFlight != nil {
		d.inFlight.abort()
	}
	d.inFlight = req
	d.last = req
	d.mu.Unlock()

	go func() {
		defer close(req.done)
		defer cancel()
		d.runCancellableFetch(ctx, req)
	}()
}

func (d *Dispatcher) runCancellableFetch(ctx context.Context, req *inFlightRequest) {
	logger := d.logger.WithField("action", "cancel-request")

	posts, err := d.client.ListPosts(ctx, listLimit)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight == req {
		d.inFlight = nil
	}

	// The result is applied under mu so a CancelRequest that returned nil, or
	// a newer fetch, always wins over a response that is already in.
	switch {
	case req.cancelled, ctx.Err() != nil, errors.Is(err, context.Canceled):
		logger.Info("request aborted")
	case err != nil:
		logger.WithError(err).Error("request failed")
		d.notifier.Notify(err.Error())
	default:
		d.state.Replace(posts)
	}
}

func (r *inFlightRequest) abort() {
	r.cancelled = true
	r.cancel()
}

// CancelRequest cancels the request started by StartCancellableFetch. It
// returns ErrNoRequestInFlight if that request already finished or was never
// started.
func (d *Dispatcher) CancelRequest() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFlight == nil {
		return ErrNoRequestInFlight
	}
	d.inFlight.abort()
	d.inFlight = nil
	return nil
}

// Wait blocks until the most recently started cancellable request, if any, has
// finished and its outcome has been applied.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	req := d.last
	d.mu.Unlock()

	if req != nil {
		<-req.done
	}
}
