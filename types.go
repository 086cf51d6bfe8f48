package postsdemo

import (
	"encoding/json"
	"errors"
)

var (
	// ErrNoPosts is returned by operations that work on existing posts when
	// no posts have been loaded yet.
	ErrNoPosts = errors.New("no posts loaded")

	// ErrNoRequestInFlight is returned by Dispatcher.CancelRequest when no
	// cancellable fetch is running.
	ErrNoRequestInFlight = errors.New("no cancellable request in flight")
)

// Post is the record exchanged with the posts API.
type Post struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId,omitempty"`
}

// Record is one element of the ViewState exactly as the server sent it.
//
// Records are usually posts but the simultaneous request stores whole
// response bodies (JSON arrays) which have no id.
type Record json.RawMessage

// MarshalJSON returns r unchanged so a Record serializes as the JSON it holds.
func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	if r == nil {
		return errors.New("postsdemo.Record: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// ID returns the top level "id" of the record. ok is false for records that
// are not JSON objects or have no numeric id.
func (r Record) ID() (id int, ok bool) {
	var v struct {
		ID *int `json:"id"`
	}
	if err := json.Unmarshal(r, &v); err != nil || v.ID == nil {
		return 0, false
	}
	return *v.ID, true
}

// Post decodes the record as a Post.
func (r Record) Post() (Post, error) {
	var p Post
	err := json.Unmarshal(r, &p)
	return p, err
}

func (r Record) String() string {
	return string(r)
}
