package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRawJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `[{"id":1,"title":"a"}]`)
		case "/text":
			io.WriteString(w, "not json")
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, "{}")
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		req, err := NewJSONRequest(ctx, http.MethodGet, srv.URL+"/posts", nil, nil)
		require.NoError(t, err)
		body, err := DoRawJSONResponse(srv.Client(), req)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1,"title":"a"}]`, string(body))
	})

	t.Run("status error", func(t *testing.T) {
		req, err := NewJSONRequest(ctx, http.MethodGet, srv.URL+"/postss", nil, nil)
		require.NoError(t, err)
		_, err = DoRawJSONResponse(srv.Client(), req)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, http.MethodGet, statusErr.Method)
		assert.ErrorContains(t, err, "request failed with status code 404")
	})

	t.Run("invalid json", func(t *testing.T) {
		req, err := NewJSONRequest(ctx, http.MethodGet, srv.URL+"/text", nil, nil)
		require.NoError(t, err)
		_, err = DoRawJSONResponse(srv.Client(), req)
		assert.ErrorContains(t, err, "is not valid JSON")
	})

	t.Run("unmarshal", func(t *testing.T) {
		req, err := NewJSONRequest(ctx, http.MethodGet, srv.URL+"/posts", nil, nil)
		require.NoError(t, err)
		var posts []struct {
			ID int `json:"id"`
		}
		require.NoError(t, DoUnmarshalJSONResponse(srv.Client(), req, &posts))
		require.Len(t, posts, 1)
		assert.Equal(t, 1, posts[0].ID)
	})

	t.Run("unmarshal wrong shape", func(t *testing.T) {
		req, err := NewJSONRequest(ctx, http.MethodGet, srv.URL+"/posts", nil, nil)
		require.NoError(t, err)
		var post struct {
			ID int `json:"id"`
		}
		err = DoUnmarshalJSONResponse(srv.Client(), req, &post)
		assert.ErrorContains(t, err, "failed to decode response body from GET "+srv.URL+"/posts")
	})
}

func TestNewJSONRequest(t *testing.T) {
	payload := map[string]string{"title": "Updated Post"}
	req, err := NewJSONRequest(context.Background(), http.MethodPut, "http://example.com/posts/1", payload, http.Header{
		"Authorization": {"Bearer 12345"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer 12345", req.Header.Get("Authorization"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewJSONRequest_NoBody(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodDelete, "http://example.com/posts/1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Equal(t, http.NoBody, req.Body)
}
