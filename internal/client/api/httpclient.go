package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/snipperhq/snipper-cli/internal/client/models"
)

// clientIDHeader carries the stable installation id on every request.
const clientIDHeader = "X-Client-Id"

// defaultRequestTimeout bounds a single API call when the caller's context
// carries no deadline of its own.
const defaultRequestTimeout = 10 * time.Second

// HTTPClient is the concrete Client backed by the Snipper REST API.
//
// The gateway behavior lives in do: each call attaches the current access
// token, and a 401 response triggers at most one refresh through the
// injected Refresher followed by a single resend with the new token. A 401
// on the resent request is terminal: the session is invalidated and the
// caller gets ErrUnauthorized.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	auth     Refresher
	clientID string
}

// NewHTTPClient constructs a Client for the API at baseURL. The Refresher
// is typically the session manager; clientID may be empty.
func NewHTTPClient(baseURL string, timeout time.Duration, auth Refresher, clientID string) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPClient{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		auth:     auth,
		clientID: clientID,
	}
}

// newRequest builds a request with the JSON payload and common headers.
// The body is rebuilt from payload on every invocation, so a retried
// request never replays a drained reader.
func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.clientID != "" {
		req.Header.Set(clientIDHeader, c.clientID)
	}
	return req, nil
}

// do sends one logical API call through the gateway and decodes a 2xx
// response body into out (when out is non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	token := c.auth.AccessToken()
	retried := false

	for {
		req, err := c.newRequest(ctx, method, path, query, payload)
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if retried {
				// The resent request was rejected as well; a second
				// refresh would loop forever.
				c.auth.Invalidate(ctx)
				return ErrUnauthorized
			}
			retried = true

			token, err = c.auth.Refresh(ctx)
			if err != nil {
				// Refresh already tore the session down.
				return ErrUnauthorized
			}
			continue
		}

		return decodeResponse(resp, out)
	}
}

// decodeResponse consumes resp, decoding a 2xx body into out or mapping
// the status to its sentinel error.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	return statusError(resp.StatusCode, eb.Message)
}

func listQuery(opts models.ListOptions) url.Values {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Size > 0 {
		q.Set("size", strconv.Itoa(opts.Size))
	}
	if opts.SortBy != "" {
		q.Set("sortBy", opts.SortBy)
	}
	if opts.SortDir != "" {
		q.Set("sortDir", opts.SortDir)
	}
	return q
}

func (c *HTTPClient) Snippets(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error) {
	var page models.Page[models.SnippetSummary]
	if err := c.do(ctx, http.MethodGet, "/api/snippets/my", listQuery(opts), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) PublicSnippets(ctx context.Context, opts models.ListOptions) (*models.Page[models.SnippetSummary], error) {
	var page models.Page[models.SnippetSummary]
	if err := c.do(ctx, http.MethodGet, "/api/snippets/public", listQuery(opts), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) SearchSnippets(ctx context.Context, opts models.SearchOptions) (*models.Page[models.SnippetSummary], error) {
	q := listQuery(opts.ListOptions)
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Tags != "" {
		q.Set("tags", opts.Tags)
	}

	var page models.Page[models.SnippetSummary]
	if err := c.do(ctx, http.MethodGet, "/api/snippets/search", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) Snippet(ctx context.Context, id int64) (*models.Snippet, error) {
	var s models.Snippet
	if err := c.do(ctx, http.MethodGet, "/api/snippets/"+strconv.FormatInt(id, 10), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) CreateSnippet(ctx context.Context, in models.SnippetInput) (*models.Snippet, error) {
	var s models.Snippet
	if err := c.do(ctx, http.MethodPost, "/api/snippets", nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) UpdateSnippet(ctx context.Context, id int64, in models.SnippetInput) (*models.Snippet, error) {
	var s models.Snippet
	if err := c.do(ctx, http.MethodPut, "/api/snippets/"+strconv.FormatInt(id, 10), nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) DeleteSnippet(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/snippets/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, p models.Profile) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", nil, p, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
