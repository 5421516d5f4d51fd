package mastodon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Page size limits of the account list endpoints.
const (
	DefaultPageSize = 40
	MaxPageSize     = 80

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "fedipage"
	maxErrorBody     = 4096
	maxErrorLine     = 200
)

// Client talks to one server. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	token      string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a client for baseURL, e.g. "https://mastodon.social".
// token may be empty for public endpoints.
func NewClient(baseURL, token string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing instance URL: %w", err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("instance URL %q must be an http(s) URL", baseURL)
	}

	c := &Client{
		baseURL:    u,
		token:      token,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// PageQuery selects one page of an account list.
type PageQuery struct {
	MaxID string
	Limit int
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.MaxID != "" {
		v.Set("max_id", q.MaxID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(min(q.Limit, MaxPageSize)))
	}
	return v
}

// Response is a decoded body with its pagination links.
type Response[T any] struct {
	Value T
	Link  Link
}

// Following lists the accounts accountID follows.
func (c *Client) Following(ctx context.Context, accountID string, q PageQuery) (Response[[]Account], error) {
	return c.accountList(ctx, accountID, "following", q)
}

// Followers lists the accounts following accountID.
func (c *Client) Followers(ctx context.Context, accountID string, q PageQuery) (Response[[]Account], error) {
	return c.accountList(ctx, accountID, "followers", q)
}

func (c *Client) accountList(ctx context.Context, accountID, list string, q PageQuery) (Response[[]Account], error) {
	if accountID == "" {
		return Response[[]Account]{}, fmt.Errorf("%w: account id is empty", ErrRequestFailed)
	}

	var accounts []Account
	path := "/api/v1/accounts/" + url.PathEscape(accountID) + "/" + list
	header, err := c.get(ctx, path, q.values(), &accounts)
	if err != nil {
		return Response[[]Account]{}, err
	}
	return Response[[]Account]{Value: accounts, Link: ParseLink(header.Get("Link"))}, nil
}

// Relationships returns the authenticated user's relationships to ids.
func (c *Client) Relationships(ctx context.Context, ids []string) ([]Relationship, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := url.Values{}
	for _, id := range ids {
		q.Add("id[]", id)
	}
	var rels []Relationship
	if _, err := c.get(ctx, "/api/v1/accounts/relationships", q, &rels); err != nil {
		return nil, err
	}
	return rels, nil
}

// LookupAccount resolves "user" or "user@domain" to an account.
func (c *Client) LookupAccount(ctx context.Context, acct string) (Account, error) {
	acct = strings.TrimPrefix(strings.TrimSpace(acct), "@")
	if acct == "" {
		return Account{}, fmt.Errorf("%w: acct is empty", ErrRequestFailed)
	}

	var a Account
	_, err := c.get(ctx, "/api/v1/accounts/lookup", url.Values{"acct": {acct}}, &a)
	return a, err
}

// VerifyCredentials returns the account the token belongs to.
func (c *Client) VerifyCredentials(ctx context.Context) (Account, error) {
	if c.token == "" {
		return Account{}, fmt.Errorf("%w: %w: no access token configured", ErrRequestFailed, ErrUnauthorized)
	}
	var a Account
	_, err := c.get(ctx, "/api/v1/accounts/verify_credentials", nil, &a)
	return a, err
}

// get performs a GET and decodes a JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("ratelimit_remaining", resp.Header.Get("X-RateLimit-Remaining")).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, decodeAPIError(resp, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrRequestFailed, path, err)
	}
	return resp.Header, nil
}

func decodeAPIError(resp *http.Response, path string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Path: path}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		line, _, _ := strings.Cut(strings.TrimSpace(string(body)), "\n")
		if len(line) > maxErrorLine {
			line = line[:maxErrorLine]
		}
		apiErr.Message = line
	}
	return apiErr
}
