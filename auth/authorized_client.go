package auth

import (
	"errors"
	"net/http"
	"net/http/cookiejar"

	"github.com/anitschke/go-postsdemo/httpx"
	"golang.org/x/net/publicsuffix"
)

const authorizationHeader = "Authorization"

var ErrEmptyToken = errors.New("authorization token must not be empty")

// Authorization is the default credential attached to every request.
//
// The token is sent verbatim as the Authorization header, so a bearer token
// must include its "Bearer " prefix.
type Authorization struct {
	Token string
}

// AuthorizedClient attaches the default Authorization header to every request
// that does not set its own, and carries cookies between requests.
//
// Each AuthorizedClient owns its credential and jar; nothing is shared between
// instances.
type AuthorizedClient struct {
	client httpx.Client
	auth   Authorization
	jar    http.CookieJar
}

var _ = (httpx.Client)((*AuthorizedClient)(nil))

func NewAuthorizedClient(client httpx.Client, a Authorization) (*AuthorizedClient, error) {
	if a.Token == "" {
		return nil, ErrEmptyToken
	}
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, err
	}
	return &AuthorizedClient{
		client: client,
		auth:   a,
		jar:    jar,
	}, nil
}

func (c *AuthorizedClient) Do(req *http.Request) (*http.Response, error) {
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
	// A per call Authorization header overrides the default one.
	if req.Header.Get(authorizationHeader) == "" {
		req.Header.Set(authorizationHeader, c.auth.Token)
	}

	resp, err := c.client.Do(req)

	if err == nil {
		if rc := resp.Cookies(); len(rc) > 0 {
			c.jar.SetCookies(req.URL, rc)
		}
	}
	return resp, err
}
