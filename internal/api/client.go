package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	UploadFormField = "file"

	uploadPath    = "/api/upload"
	chatPath      = "/api/chat"
	documentsPath = "/api/documents"
	healthPath    = "/"
)

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Response *string `json:"response"` // Pointer so a missing field can be told apart from ""
}

type HealthResponse struct {
	Message string `json:"message"`
}

// Client talks to the support agent backend. It enforces no timeout of its
// own; callers bound requests through the context.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger
	newRequestID func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		logger:       zap.NewNop(),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload posts content as the multipart field "file". Any 2xx counts as
// success and the body is discarded.
func (c *Client) Upload(ctx context.Context, filename string, content []byte) error {
	endpoint := "POST " + uploadPath

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, UploadFormField, filepath.Base(filename)))
	header.Set("Content-Type", contentTypeFor(filename))

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write multipart payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(req, endpoint)
	if err != nil {
		return err
	}
	drainAndClose(resp.Body)
	return nil
}

// Ask sends one question and returns the server's "response" field.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	endpoint := "POST " + chatPath

	payload, err := json.Marshal(ChatRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, endpoint)
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", &MalformedResponseError{Endpoint: endpoint, Reason: "invalid JSON", Err: err}
	}
	if chatResp.Response == nil {
		return "", &MalformedResponseError{Endpoint: endpoint, Reason: `missing "response" field`}
	}
	return *chatResp.Response, nil
}

// ListDocuments returns the names of the documents the backend has indexed.
func (c *Client) ListDocuments(ctx context.Context) ([]string, error) {
	endpoint := "GET " + documentsPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+documentsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build documents request: %w", err)
	}

	resp, err := c.do(req, endpoint)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	var docs []string
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, &MalformedResponseError{Endpoint: endpoint, Reason: "expected a JSON array of names", Err: err}
	}
	if docs == nil {
		docs = []string{}
	}
	return docs, nil
}

func (c *Client) Health(ctx context.Context) (string, error) {
	endpoint := "GET " + healthPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.do(req, endpoint)
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "", &MalformedResponseError{Endpoint: endpoint, Reason: "invalid JSON", Err: err}
	}
	return health.Message, nil
}

// do stamps a request ID, performs the call and turns non-2xx answers into
// *StatusError. On success the caller owns resp.Body.
func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	requestID := c.newRequestID()
	req.Header.Set(RequestIDHeader, requestID)

	log := c.logger.With(zap.String("endpoint", endpoint), zap.String("request_id", requestID))
	log.Debug("Dispatching request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("Request failed before a response arrived", zap.Error(err))
		return nil, transportError(endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drainAndClose(resp.Body)
		log.Debug("Request rejected", zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	log.Debug("Request completed", zap.Int("status", resp.StatusCode))
	return resp, nil
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
