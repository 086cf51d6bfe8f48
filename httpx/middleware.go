package httpx

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// Middleware decorates a Client. Middleware takes the place of interceptors:
// anything that needs to see every outgoing request or every incoming response
// wraps the Client it is handed.
type Middleware func(next Client) Client

// Chain wraps client with the given middleware. The first middleware is the
// outermost, so it sees the request first and the response last.
func Chain(client Client, mw ...Middleware) Client {
	for i := len(mw) - 1; i >= 0; i-- {
		client = mw[i](client)
	}
	return client
}

// DefaultHeaders sets every header in h that the request does not already
// carry. Headers set explicitly on a request always win.
func DefaultHeaders(h http.Header) Middleware {
	h = h.Clone()
	return func(next Client) Client {
		return ClientFunc(func(req *http.Request) (*http.Response, error) {
			for name, values := range h {
				if _, ok := req.Header[http.CanonicalHeaderKey(name)]; ok {
					continue
				}
				for _, v := range values {
					req.Header.Add(name, v)
				}
			}
			return next.Do(req)
		})
	}
}

// RequestID tags every request that has no X-Request-ID with a fresh one so
// request and response log lines can be matched up.
func RequestID() Middleware {
	return func(next Client) Client {
		return ClientFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) == "" {
				req.Header.Set(RequestIDHeader, uuid.NewString())
			}
			return next.Do(req)
		})
	}
}

// LogRequests logs the method and URL of every request before it is sent.
// Requests that fail before a response arrives are logged as request errors
// and the error is handed back untouched.
func LogRequests(logger logrus.FieldLogger) Middleware {
	return func(next Client) Client {
		return ClientFunc(func(req *http.Request) (*http.Response, error) {
			entry := logger.WithFields(logrus.Fields{
				"method":     req.Method,
				"url":        req.URL.String(),
				"request_id": req.Header.Get(RequestIDHeader),
			})
			entry.Info("request")

			resp, err := next.Do(req)
			if err != nil {
				entry.WithError(err).Warn("request error")
			}
			return resp, err
		})
	}
}

// PassResponseErrors is the response side interceptor. Responses and errors
// go back to the caller exactly as they came in; error statuses are only noted
// at debug level.
func PassResponseErrors(logger logrus.FieldLogger) Middleware {
	return func(next Client) Client {
		return ClientFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
				logger.WithFields(logrus.Fields{
					"method": req.Method,
					"url":    req.URL.String(),
					"status": resp.StatusCode,
				}).Debug("error response")
			}
			return resp, err
		})
	}
}
