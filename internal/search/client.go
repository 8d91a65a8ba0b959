package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
)

// Searcher is the pair of backend calls the screens depend on. *Client
// implements it; tests substitute fakes.
type Searcher interface {
	SubmitImage(ctx context.Context, req UploadRequest) (ResultSet, error)
	ListItems(ctx context.Context) (ResultSet, error)
}

// Ensure Client implements Searcher at compile time.
var _ Searcher = (*Client)(nil)

// Client talks to the search backend over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultOrigin    = "http://localhost:8000"
	defaultUserAgent = "snapshop/0.1"
	defaultTimeout   = 30 * time.Second

	uploadPath    = "/upload/"
	itemsPath     = "/items/"
	uploadField   = "file"
	requestIDHdr  = "X-Request-ID"
	errorBodyPeek = 4 << 10

	opSubmitImage = "submit image"
	opListItems   = "list items"
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		dup := *c.http
		dup.Timeout = d
		c.http = &dup
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the backend at origin.
func NewClient(origin string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(origin)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Origin returns the normalised backend origin.
func (c *Client) Origin() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// SubmitImage uploads one image and returns the matching items. Each call may
// start a new search job on the backend, so callers must not retry it.
func (c *Client) SubmitImage(ctx context.Context, req UploadRequest) (ResultSet, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	if len(req.Data) == 0 {
		return nil, errNoFile()
	}
	body, contentType, err := encodeUpload(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode upload")
	}
	return c.do(ctx, opSubmitImage, http.MethodPost, uploadPath, contentType, body)
}

// ListItems fetches the items stored by the most recent search.
func (c *Client) ListItems(ctx context.Context) (ResultSet, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	return c.do(ctx, opListItems, http.MethodGet, itemsPath, "", nil)
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader) (ResultSet, error) {
	requestID := uuid.NewString()
	endpoint := method + " " + path
	started := time.Now()

	fail := func(status int, err error) error {
		c.logger.Warn("backend request failed",
			zap.String("op", op),
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return &TransportError{
			Op:         op,
			Endpoint:   endpoint,
			StatusCode: status,
			RequestID:  requestID,
			Err:        err,
		}
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fail(0, errors.Wrap(err, "create request"))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHdr, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, errors.Wrap(err, "execute request"))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if detail := peekErrorDetail(resp.Body); detail != "" {
			return nil, fail(resp.StatusCode, errors.Errorf("returned status %d: %s", resp.StatusCode, detail))
		}
		return nil, fail(resp.StatusCode, errors.Errorf("returned status %d", resp.StatusCode))
	}

	var items ResultSet
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fail(resp.StatusCode, errors.Wrap(err, "decode response"))
	}
	if items == nil {
		items = ResultSet{}
	}

	if legacy := items.legacyCount(); legacy > 0 {
		c.logger.Warn("backend sent deprecated \"id\" field, expected \"items_id\"",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Int("items", legacy))
	}
	c.logger.Info("backend request completed",
		zap.String("op", op),
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Int("items", len(items)),
		zap.Duration("elapsed", time.Since(started)))
	return items, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeUpload builds the multipart body with a single "file" part whose
// Content-Type is the request's media type.
func encodeUpload(req UploadRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "upload"
	}
	mediaType := strings.TrimSpace(req.MediaType)
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		uploadField, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", mediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", errors.Wrap(err, "create form part")
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, "", errors.Wrap(err, "write form part")
	}
	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return &buf, writer.FormDataContentType(), nil
}

// peekErrorDetail extracts FastAPI-style {"detail": "..."} bodies, falling
// back to the trimmed raw text. Only used for diagnostics.
func peekErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, errorBodyPeek))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return strings.TrimSpace(s)
		}
		if encoded, err := json.Marshal(payload.Detail); err == nil {
			return string(encoded)
		}
	}
	return strings.TrimSpace(string(raw))
}

func parseBaseURL(origin string) (*url.URL, error) {
	trimmed := strings.TrimSpace(origin)
	if trimmed == "" {
		trimmed = defaultOrigin
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.Wrapf(err, "parse origin %q", origin)
	}
	if u.Host == "" {
		return nil, errors.Errorf("parse origin %q: missing host", origin)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
