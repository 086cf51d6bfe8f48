package postsdemo

import (
	"context"
	"net/http"
	"net/url"
)

// Client talks to a JSONPlaceholder style posts API.
//
// Calls that return data return it as Records so the caller keeps exactly what
// the server sent.
type Client interface {
	// ListPosts gets up to limit posts. A limit of 0 or less asks for all of
	// them.
	ListPosts(ctx context.Context, limit int) ([]Record, error)

	// GetRaw gets the JSON body found at path, which is relative to the base
	// URL of the client.
	GetRaw(ctx context.Context, path string, query url.Values) (Record, error)

	// CreatePost creates a post. Headers in h are sent in place of the client
	// defaults of the same name.
	CreatePost(ctx context.Context, p NewPost, h http.Header) (Record, error)

	// ReplacePost replaces the post with a PUT.
	ReplacePost(ctx context.Context, id int, u PostUpdate) (Record, error)

	// PatchPost updates the post with a PATCH.
	PatchPost(ctx context.Context, id int, u PostUpdate) (Record, error)

	DeletePost(ctx context.Context, id int) error
}
