package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is used when no API URL override is configured
const DefaultBaseURL = "http://localhost:8000/api"

// DefaultTimeout is the http.Client timeout used by NewClient
const DefaultTimeout = 30 * time.Second

// RequestHook transforms an outbound request before it is sent
type RequestHook func(ctx context.Context, req *Request) error

// ResponseHook transforms the outcome of a call. It receives either a
// response or an error and returns the (possibly replaced) pair.
type ResponseHook func(ctx context.Context, req *Request, resp *Response, err error) (*Response, error)

// Client представляет HTTP клиент для взаимодействия с GRC API
type Client struct {
	httpClient    *http.Client
	headers       http.Header
	logger        *slog.Logger
	metrics       *Metrics
	baseURL       string
	requestHooks  []RequestHook
	responseHooks []ResponseHook
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the http.Client timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for exchange logging
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient создает новый API клиент.
// Пустой baseURL заменяется на DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
		logger:  slog.Default(),
		metrics: NewMetrics(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the resolved API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metrics returns the client metrics
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// UseRequest appends request hooks; they run in registration order
func (c *Client) UseRequest(hooks ...RequestHook) {
	c.requestHooks = append(c.requestHooks, hooks...)
}

// UseResponse appends response hooks; they run in registration order
func (c *Client) UseResponse(hooks ...ResponseHook) {
	c.responseHooks = append(c.responseHooks, hooks...)
}

// Do sends req through the hook chain:
// request hooks -> transport -> response hooks.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	for _, hook := range c.requestHooks {
		if err := hook(ctx, req); err != nil {
			return nil, err
		}
	}

	resp, err := c.send(ctx, req)

	for _, hook := range c.responseHooks {
		resp, err = hook(ctx, req, resp, err)
	}

	return resp, err
}

// DoRaw sends req with the default headers only, skipping every hook.
// Used for calls that must not recurse into the hook chain (token refresh).
func (c *Client) DoRaw(ctx context.Context, req *Request) (*Response, error) {
	return c.send(ctx, req)
}

// Get sends GET {baseURL}{path}?query
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	req, _ := NewRequest(http.MethodGet, path, nil)
	req.Query = query
	return c.Do(ctx, req)
}

// Post sends POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.withBody(ctx, http.MethodPost, path, body)
}

// Put sends PUT with a JSON body
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.withBody(ctx, http.MethodPut, path, body)
}

// Patch sends PATCH with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.withBody(ctx, http.MethodPatch, path, body)
}

// Delete sends DELETE
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	req, _ := NewRequest(http.MethodDelete, path, nil)
	return c.Do(ctx, req)
}

func (c *Client) withBody(ctx context.Context, method, path string, body any) (*Response, error) {
	req, err := NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// doRequest выполняет запрос через цепочку hooks и декодирует ответ в result
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result any) error {
	req, err := NewRequest(method, path, body)
	if err != nil {
		return err
	}
	req.Query = query

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if result != nil {
		return resp.Decode(result)
	}
	return nil
}

// send выполняет один HTTP обмен без hooks
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range c.headers {
		httpReq.Header[key] = append([]string(nil), values...)
	}
	for key, values := range req.Header {
		httpReq.Header[key] = append([]string(nil), values...)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(ctx, req, 0, 0, time.Since(start))
		return nil, &NetworkError{Method: req.Method, URL: sanitizeURL(target), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(ctx, req, 0, 0, time.Since(start))
		return nil, &NetworkError{Method: req.Method, URL: sanitizeURL(target), Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.observe(ctx, req, resp.StatusCode, len(data), time.Since(start))

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			Method: req.Method,
			Path:   req.Path,
			Status: resp.StatusCode,
			Body:   data,
			Header: resp.Header,
		}
	}

	return &Response{
		Status: resp.StatusCode,
		Data:   data,
		Header: resp.Header,
	}, nil
}
