package httpx

import (
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response body is kept on a
// StatusError.
const maxErrorBody = 4 << 10

// StatusError is returned when the server answers with a status outside of the
// 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("request failed with status code %d: %s %s", e.StatusCode, e.Method, e.URL)
	}
	return fmt.Sprintf("request failed with status code %d: %s %s: body: %s", e.StatusCode, e.Method, e.URL, e.Body)
}

// StatusErr returns a *StatusError if resp does not have a 2xx status code,
// otherwise nil. The body is read but not closed.
func StatusErr(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		e.URL = resp.Request.URL.String()
	}
	return e
}
