package bookclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookinventory/internal/book"

	"golang.org/x/time/rate"
)

// Client talks to the catalogue HTTP API.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
}

type Option func(*Client)

// WithHTTPClient replaces the default client with a 15s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests per second. Zero disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
		}
	}
}

// WithRetries sets how many times a failed GET is retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  "bookinventory-client/1.0",
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Inf, 0),
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Status)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListBooks returns the books matching filters. An empty spec lists all.
func (c *Client) ListBooks(ctx context.Context, filters book.FilterSpec) ([]book.Book, error) {
	u := c.baseURL + "/books"
	if q := EncodeFilters(filters).Encode(); q != "" {
		u += "?" + q
	}
	var res []book.Book
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	if res == nil {
		res = []book.Book{}
	}
	return res, nil
}

// LookupBook fetches one book by id.
func (c *Client) LookupBook(ctx context.Context, id string) (book.Book, error) {
	var res book.Book
	if err := c.get(ctx, c.baseURL+"/books/"+url.PathEscape(id), &res); err != nil {
		return book.Book{}, err
	}
	return res, nil
}

// CreateOrUpdateBook posts a new book, or puts b under b.ID when set. It
// returns the stored id.
func (c *Client) CreateOrUpdateBook(ctx context.Context, b book.Book) (string, error) {
	method, u := http.MethodPost, c.baseURL+"/books"
	if b.ID != "" {
		method, u = http.MethodPut, c.baseURL+"/books/"+url.PathEscape(b.ID)
	}
	body, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	var res book.CreatedID
	if err := c.send(ctx, method, u, body, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// RemoveBook deletes the book with id.
func (c *Client) RemoveBook(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, c.baseURL+"/books/"+url.PathEscape(id), nil, nil)
}

// EncodeFilters renders filters in the bracket form
// filters[i][from]=10&filters[i][name]=Dune. Empty values are omitted and
// strings are trimmed.
func EncodeFilters(filters book.FilterSpec) url.Values {
	q := url.Values{}
	for i, g := range filters {
		prefix := "filters[" + strconv.Itoa(i) + "]"
		if g.From != nil {
			q.Set(prefix+"[from]", strconv.FormatFloat(*g.From, 'f', -1, 64))
		}
		if g.To != nil {
			q.Set(prefix+"[to]", strconv.FormatFloat(*g.To, 'f', -1, 64))
		}
		if name := strings.TrimSpace(g.Name); name != "" {
			q.Set(prefix+"[name]", name)
		}
		if author := strings.TrimSpace(g.Author); author != "" {
			q.Set(prefix+"[author]", author)
		}
	}
	return q
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 100ms, 200ms, 400ms...
			backoff := time.Duration(1<<uint(i-1)) * 100 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.send(ctx, http.MethodGet, url, nil, target)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status != http.StatusTooManyRequests && apiErr.Status < 500 {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) send(ctx context.Context, method, url string, body []byte, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Code: env.Error.Code, Message: env.Error.Message}
	}
	if decodeErr != nil {
		if target == nil && errors.Is(decodeErr, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if target == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, target)
}
