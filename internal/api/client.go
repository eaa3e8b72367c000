package api

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
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wms/internal/models"
)

// ErrEmptyBody is returned when a 2xx response that must carry a JSON body
// has none.
var ErrEmptyBody = errors.New("api: empty response body")

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api %s %s: %s", e.Method, e.Path, e.Status)
}

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func() string

// Client is the REST client for the bin monitoring backend. It is safe for
// concurrent use.
type Client struct {
	base  *url.URL
	http  *http.Client
	log   *zap.Logger
	token TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTokenSource attaches an Authorization header to every request when the
// source returns a non-empty token.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// New creates a client rooted at baseURL. timeout bounds every round trip.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// SignUp registers a new driver.
func (c *Client) SignUp(ctx context.Context, req models.SignUpRequest) (models.SignUpResponse, error) {
	var out models.SignUpResponse
	err := c.do(ctx, http.MethodPost, "api/auth/signup", req, &out)
	return out, err
}

// Login authenticates a driver.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "api/auth/login", req, &out)
	return out, err
}

// GetDriver fetches the profile of driver id.
func (c *Client) GetDriver(ctx context.Context, id int) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodGet, "api/drivers/"+strconv.Itoa(id), nil, &out)
	return out, err
}

// UpdateDriver replaces the profile of driver id.
func (c *Client) UpdateDriver(ctx context.Context, id int, user models.UserData) (models.ProfileUpdate, error) {
	var out models.ProfileUpdate
	err := c.do(ctx, http.MethodPut, "api/drivers/"+strconv.Itoa(id), user, &out)
	return out, err
}

// GetBins returns every bin in server order.
func (c *Client) GetBins(ctx context.Context) ([]models.Bin, error) {
	var out []models.Bin
	if err := c.do(ctx, http.MethodGet, "api/bins", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Bin{}
	}
	return out, nil
}

// GetBin returns the details of bin id.
func (c *Client) GetBin(ctx context.Context, id int64) (models.BinDetails, error) {
	var out models.BinDetails
	err := c.do(ctx, http.MethodGet, "api/bins/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	u := c.base.JoinPath(path)

	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("❌ request failed",
			zap.String("method", method),
			zap.String("path", u.Path),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.log.Debug("📡 request completed",
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		return &HTTPError{
			Method:     method,
			Path:       u.Path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       raw,
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
