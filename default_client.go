package postsdemo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anitschke/go-postsdemo/auth"
	"github.com/anitschke/go-postsdemo/httpx"
	"github.com/anitschke/go-postsdemo/internal/errorx"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultToken   = "AUTH_TOKEN"
)

// DefaultClientOptions configures a DefaultClient. Every field is optional.
type DefaultClientOptions struct {
	// HTTPClient sends the requests. Defaults to a new http.Client.
	HTTPClient httpx.Client

	// BaseURL every request path is resolved against. Defaults to
	// DefaultBaseURL.
	BaseURL string

	// Timeout bounds each call. Defaults to DefaultTimeout, a negative value
	// disables it.
	Timeout time.Duration

	// Authorization is sent with every request that does not set its own
	// Authorization header. The token defaults to DefaultToken.
	Authorization auth.Authorization

	// Headers are sent with every request that does not set them itself.
	Headers http.Header

	// Middleware is applied around the built in request logging, outermost
	// first.
	Middleware []httpx.Middleware

	Logger logrus.FieldLogger
}

type DefaultClient struct {
	client  httpx.Client
	baseURL *url.URL
	timeout time.Duration
}

var _ = (Client)((*DefaultClient)(nil))

func NewDefaultClient(opts DefaultClientOptions) (*DefaultClient, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Authorization.Token == "" {
		opts.Authorization.Token = DefaultToken
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	authClient, err := auth.NewAuthorizedClient(opts.HTTPClient, opts.Authorization)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	mw := append([]httpx.Middleware{}, opts.Middleware...)
	mw = append(mw,
		httpx.RequestID(),
		httpx.DefaultHeaders(opts.Headers),
		httpx.LogRequests(opts.Logger),
		httpx.PassResponseErrors(opts.Logger),
	)

	return &DefaultClient{
		client:  httpx.Chain(authClient, mw...),
		baseURL: baseURL,
		timeout: opts.Timeout,
	}, nil
}

func (c *DefaultClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + "/" + strings.TrimPrefix(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *DefaultClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout < 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *DefaultClient) doJSON(ctx context.Context, method string, path string, query url.Values, payload any, h http.Header) (Record, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := httpx.NewJSONRequest(ctx, method, c.endpoint(path, query), payload, h)
	if err != nil {
		return nil, err
	}
	body, err := httpx.DoRawJSONResponse(c.client, req)
	if err != nil {
		return nil, err
	}
	return Record(body), nil
}

func (c *DefaultClient) ListPosts(ctx context.Context, limit int) (posts []Record, err error) {
	defer errorx.WrapIfError(&err, "list posts")

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := httpx.NewJSONRequest(ctx, http.MethodGet, c.endpoint(postsPath, limitQuery(limit)), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := httpx.DoUnmarshalJSONResponse(c.client, req, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *DefaultClient) GetRaw(ctx context.Context, path string, query url.Values) (r Record, err error) {
	defer errorx.WrapIfError(&err, "get %s", path)
	return c.doJSON(ctx, http.MethodGet, path, query, nil, nil)
}

func (c *DefaultClient) CreatePost(ctx context.Context, p NewPost, h http.Header) (r Record, err error) {
	defer errorx.WrapIfError(&err, "create post")
	return c.doJSON(ctx, http.MethodPost, postsPath, nil, p, h)
}

func (c *DefaultClient) ReplacePost(ctx context.Context, id int, u PostUpdate) (r Record, err error) {
	defer errorx.WrapIfError(&err, "replace post %d", id)
	return c.doJSON(ctx, http.MethodPut, postPath(id), nil, u, nil)
}

func (c *DefaultClient) PatchPost(ctx context.Context, id int, u PostUpdate) (r Record, err error) {
	defer errorx.WrapIfError(&err, "patch post %d", id)
	return c.doJSON(ctx, http.MethodPatch, postPath(id), nil, u, nil)
}

func (c *DefaultClient) DeletePost(ctx context.Context, id int) (err error) {
	defer errorx.WrapIfError(&err, "delete post %d", id)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := httpx.NewJSONRequest(ctx, http.MethodDelete, c.endpoint(postPath(id), nil), nil, nil)
	if err != nil {
		return err
	}
	return httpx.DoDiscardResponse(c.client, req)
}
