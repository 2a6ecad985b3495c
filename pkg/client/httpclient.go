package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"github.com/google/uuid"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderContentType   = "Content-Type"
	ContentTypeJSON     = "application/json"
)

// TokenSource supplies the bearer token for outgoing requests. ok is false
// when nobody is logged in.
type TokenSource interface {
	Token() (token string, ok bool)
}

type noToken struct{}

func (noToken) Token() (string, bool) { return "", false }

type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
	tokens     TokenSource
	log        *logger.Logger
}

func NewHttpClient(baseURL string, timeout time.Duration, tokens TokenSource, log *logger.Logger) *HttpClient {
	if tokens == nil {
		tokens = noToken{}
	}
	return &HttpClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
		log:    log.Component("http_client"),
	}
}

type Response struct {
	*http.Response
	Body      []byte
	RequestID string
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (r *Response) ToString() string {
	return fmt.Sprintf("%s %s -> %d: %s", r.Request.Method, r.Request.URL.Path, r.StatusCode, string(r.Body))
}

func (c *HttpClient) GET(ctx context.Context, path string) (*Response, error) {
	return c.request(ctx, http.MethodGet, path, nil)
}

func (c *HttpClient) POST(ctx context.Context, path string, body any) (*Response, error) {
	return c.request(ctx, http.MethodPost, path, body)
}

func (c *HttpClient) PATCH(ctx context.Context, path string, body any) (*Response, error) {
	return c.request(ctx, http.MethodPatch, path, body)
}

func (c *HttpClient) DELETE(ctx context.Context, path string) (*Response, error) {
	return c.request(ctx, http.MethodDelete, path, nil)
}

// POSTFiles sends files as a multipart form, each under field.
func (c *HttpClient) POSTFiles(ctx context.Context, path, field string, files []model.ImageFile) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(f.Data)
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
		header.Set(HeaderContentType, contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create multipart part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write multipart part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType())
}

func (c *HttpClient) request(ctx context.Context, method, path string, body any) (*Response, error) {
	if body == nil {
		return c.do(ctx, method, path, nil, "")
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(jsonData), ContentTypeJSON)
}

// do sends the request and reads the whole response. A non-2xx status is
// returned as an *apperrors.APIError alongside the response.
func (c *HttpClient) do(ctx context.Context, method, path string, reqBody io.Reader, contentType string) (*Response, error) {
	url := c.BaseURL + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", ContentTypeJSON)
	if contentType != "" {
		req.Header.Set(HeaderContentType, contentType)
	}
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set(HeaderAuthorization, "Bearer "+token)
	}

	start := time.Now()
	c.log.Debug("request started",
		"request_id", requestID,
		"method", method,
		"path", req.URL.Path,
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			"request_id", requestID,
			"method", method,
			"path", req.URL.Path,
			"error", err,
		)
		if isTimeout(err) {
			return nil, apperrors.Timeout(err)
		}
		return nil, apperrors.Network(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Network(fmt.Errorf("failed to read response body: %w", err))
	}

	out := &Response{
		Response:  resp,
		Body:      respBody,
		RequestID: requestID,
	}

	duration := time.Since(start)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := apperrors.FromResponse(resp.StatusCode, respBody)
		c.log.Warn("request rejected",
			"request_id", requestID,
			"method", method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
			"message", apiErr.Message,
		)
		return out, apiErr
	}

	c.log.Debug("request completed",
		"request_id", requestID,
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)
	return out, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func decode[T any](resp *Response, resource string) (T, error) {
	var v T
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return v, nil
	}
	if err := resp.DecodeJSON(&v); err != nil {
		return v, apperrors.Decode(resource, fmt.Errorf("%w: %s", err, resp.ToString()))
	}
	return v, nil
}
