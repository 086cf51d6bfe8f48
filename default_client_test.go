package postsdemo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anitschke/go-postsdemo/auth"
	"github.com/anitschke/go-postsdemo/httpx"
	"github.com/anitschke/go-postsdemo/internal/placeholdertest"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, srv *placeholdertest.Server, opts DefaultClientOptions) *DefaultClient {
	opts.BaseURL = srv.URL
	opts.HTTPClient = srv.Client()
	if opts.Logger == nil {
		logger, _ := logtest.NewNullLogger()
		opts.Logger = logger
	}
	client, err := NewDefaultClient(opts)
	require.NoError(t, err)
	return client
}

func newTestServer(t *testing.T) *placeholdertest.Server {
	srv := placeholdertest.NewServer()
	t.Cleanup(srv.Close)
	return srv
}

func TestNewDefaultClient_InvalidBaseURL(t *testing.T) {
	for _, baseURL := range []string{"not a url", "/posts", "://x"} {
		t.Run(baseURL, func(t *testing.T) {
			client, err := NewDefaultClient(DefaultClientOptions{BaseURL: baseURL})
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestDefaultClient_ListPosts(t *testing.T) {
	srv := newTestServer(t)
	client := testClient(t, srv, DefaultClientOptions{})

	posts, err := client.ListPosts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for i, p := range posts {
		id, ok := p.ID()
		assert.True(t, ok)
		assert.Equal(t, i+1, id)
	}

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/posts", reqs[0].Path)
	assert.Equal(t, "_limit=5", reqs[0].Query)
}

func TestDefaultClient_ListPosts_NotAList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":1}`)
	}))
	defer srv.Close()

	logger, _ := logtest.NewNullLogger()
	client, err := NewDefaultClient(DefaultClientOptions{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		Logger:     logger,
	})
	require.NoError(t, err)

	posts, err := client.ListPosts(context.Background(), 5)
	assert.Nil(t, posts)
	assert.ErrorContains(t, err, "list posts: failed to decode response body")
}

func TestDefaultClient_DefaultHeaders(t *testing.T) {
	srv := newTestServer(t)
	client := testClient(t, srv, DefaultClientOptions{
		Headers: http.Header{"X-Demo": {"yes"}},
	})

	_, err := client.ListPosts(context.Background(), 1)
	require.NoError(t, err)
	_, err = client.CreatePost(context.Background(), NewPost{Title: "t"}, http.Header{
		"Authorization": {"Bearer 12345"},
	})
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, DefaultToken, reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "Bearer 12345", reqs[1].Header.Get("Authorization"))
	for _, r := range reqs {
		assert.Equal(t, "yes", r.Header.Get("X-Demo"))
		assert.NotEmpty(t, r.Header.Get(httpx.RequestIDHeader))
	}
}

func TestDefaultClient_CustomToken(t *testing.T) {
	srv := newTestServer(t)
	client := testClient(t, srv, DefaultClientOptions{
		Authorization: auth.Authorization{Token: "Bearer other"},
	})

	_, err := client.GetRaw(context.Background(), "/todos", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer other", srv.Requests()[0].Header.Get("Authorization"))
}

func TestDefaultClient_LogsEveryRequest(t *testing.T) {
	srv := newTestServer(t)
	logger, hook := logtest.NewNullLogger()
	client := testClient(t, srv, DefaultClientOptions{Logger: logger})

	ctx := context.Background()
	_, err := client.ListPosts(ctx, 5)
	require.NoError(t, err)
	_, err = client.ReplacePost(ctx, 1, PostUpdate{Title: "Updated Post"})
	require.NoError(t, err)
	require.NoError(t, client.DeletePost(ctx, 1))

	var got []string
	for _, e := range hook.AllEntries() {
		if e.Message == "request" {
			got = append(got, e.Data["method"].(string)+" "+e.Data["url"].(string))
		}
	}
	assert.Equal(t, []string{
		"GET " + srv.URL + "/posts?_limit=5",
		"PUT " + srv.URL + "/posts/1",
		"DELETE " + srv.URL + "/posts/1",
	}, got)
}

func TestDefaultClient_CreateReplacePatch(t *testing.T) {
	srv := newTestServer(t)
	client := testClient(t, srv, DefaultClientOptions{})
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		created, err := client.CreatePost(ctx, NewPost{Title: "My New Post", Body: "This is my new post"}, nil)
		require.NoError(t, err)
		p, err := created.Post()
		require.NoError(t, err)
		assert.Equal(t, Post{ID: placeholdertest.CreatedID, Title: "My New Post", Body: "This is my new post"}, p)

		last := srv.Requests()[len(srv.Requests())-1]
		assert.Equal(t, http.MethodPost, last.Method)
		assert.Equal(t, "application/json", last.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"title":"My New Post","body":"This is my new post"}`, string(last.Body))
	})

	t.Run("replace", func(t *testing.T) {
		replaced, err := client.ReplacePost(ctx, 3, PostUpdate{Title: "Updated Post"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":3,"title":"Updated Post"}`, replaced.String())

		last := srv.Requests()[len(srv.Requests())-1]
		assert.Equal(t, http.MethodPut, last.Method)
		assert.Equal(t, "/posts/3", last.Path)
		assert.JSONEq(t, `{"title":"Updated Post"}`, string(last.Body))
	})

	t.Run("patch", func(t *testing.T) {
		patched, err := client.PatchPost(ctx, 3, PostUpdate{Title: "Updated Post"})
		require.NoError(t, err)
		p, err := patched.Post()
		require.NoError(t, err)
		assert.Equal(t, 3, p.ID)
		assert.Equal(t, "Updated Post", p.Title)
		assert.Equal(t, "post 3 body", p.Body)
		assert.Equal(t, http.MethodPatch, srv.Requests()[len(srv.Requests())-1].Method)
	})
}

func TestDefaultClient_StatusError(t *testing.T) {
	srv := newTestServer(t)
	client := testClient(t, srv, DefaultClientOptions{})

	_, err := client.GetRaw(context.Background(), "/postss", limitQuery(5))
	require.Error(t, err)

	var statusErr *httpx.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.ErrorContains(t, err, "get /postss: request failed with status code 404")
}

func TestDefaultClient_Timeout(t *testing.T) {
	srv := newTestServer(t)
	srv.Delay("/posts", time.Second)
	client := testClient(t, srv, DefaultClientOptions{Timeout: 20 * time.Millisecond})

	_, err := client.ListPosts(context.Background(), 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
