package postsdemo

import (
	"net/url"
	"strconv"
)

// This file contains the request bodies and paths used to talk to the posts
// API.

const (
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	postsPath = "/posts"
	todosPath = "/todos"
)

// NewPost is the body sent to create a post.
type NewPost struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId,omitempty"`
}

// PostUpdate is the body sent by both PUT and PATCH. Only non-empty fields are
// sent.
type PostUpdate struct {
	Title  string `json:"title,omitempty"`
	Body   string `json:"body,omitempty"`
	UserID int    `json:"userId,omitempty"`
}

func postPath(id int) string {
	return postsPath + "/" + strconv.Itoa(id)
}

// limitQuery builds the json-server style "_limit" query. Limits of 0 or less
// mean no limit.
func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"_limit": {strconv.Itoa(limit)}}
}
