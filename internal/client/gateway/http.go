package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avolkovs/surveydesk/internal/client/models"
	"github.com/avolkovs/surveydesk/internal/common"
	"github.com/avolkovs/surveydesk/internal/logging"
)

// HTTPClient is the concrete Client over the backend's JSON API.
//
// It is stateless with respect to identity: every call that needs
// authentication takes the bearer token explicitly and puts it on the
// Authorization header. Transport-level timeouts live here (on the embedded
// http.Client); callers are expected to pass a context for cancellation.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	log     logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

// response is what doJSON decodes into: any result type embedding Envelope.
type response interface {
	setFailure(msg string)
}

// doJSON performs one request/response round trip.
//
// Behavior follows the backend contract: a transport problem returns an
// error wrapping common.ErrUnavailable; a non-2xx status marks the decoded
// envelope failed, taking the message from the body's error field if present
// and the HTTP status text otherwise. A nil return therefore only means the
// round trip happened — callers still check Envelope.Success.
func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, body any, out response) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req, token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil && is2xx(resp.StatusCode) {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if !is2xx(resp.StatusCode) {
		out.setFailure(statusText(resp.StatusCode))
	}
	return nil
}

func (c *HTTPClient) authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set(common.AuthHeaderName, common.AuthScheme+" "+token)
	}
}

func is2xx(code int) bool { return code >= 200 && code < 300 }

func statusText(code int) string {
	if t := http.StatusText(code); t != "" {
		return t
	}
	return fmt.Sprintf("HTTP %d", code)
}

// ---- auth operations ----

func (c *HTTPClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Result, error) {
	body := map[string]any{"email": email, "password": password}
	if metadata != nil {
		body["metadata"] = metadata
	}
	var res Result
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup/", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*Result, error) {
	body := map[string]any{"email": email, "password": password}
	var res Result
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signin/", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) SignOut(ctx context.Context, token string) (*Result, error) {
	var res Result
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signout/", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) VerifySession(ctx context.Context, token string) (*Result, error) {
	var res Result
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/session/", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetCurrentUser(ctx context.Context, token string) (*Result, error) {
	var res Result
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/user/", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, token string, patch map[string]any) (*Result, error) {
	var res Result
	if err := c.doJSON(ctx, http.MethodPut, "/api/auth/user/", token, map[string]any{"data": patch}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email string) (*Result, error) {
	var res Result
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/reset-password/", "", map[string]any{"email": email}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) UpdatePassword(ctx context.Context, token, newPassword string) (*Result, error) {
	var res Result
	if err := c.doJSON(ctx, http.MethodPut, "/api/auth/password/", token, map[string]any{"password": newPassword}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ---- data operations ----

type dataResult struct {
	Envelope
	Data []map[string]any `json:"data,omitempty"`
}

type rpcResult struct {
	Envelope
	Data json.RawMessage `json:"data,omitempty"`
}

func (c *HTTPClient) FetchData(ctx context.Context, token, table string, q Query) ([]map[string]any, error) {
	body := map[string]any{"table": table, "query": q}
	var res dataResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/data/query/", token, body, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.Data, nil
}

func (c *HTTPClient) InsertData(ctx context.Context, token, table string, rows []map[string]any) ([]map[string]any, error) {
	body := map[string]any{"table": table, "data": rows}
	var res dataResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/data/", token, body, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.Data, nil
}

func (c *HTTPClient) UpdateData(ctx context.Context, token, table string, patch map[string]any, matchColumn string, matchValue any) ([]map[string]any, error) {
	body := map[string]any{
		"table":        table,
		"data":         patch,
		"match_column": matchColumn,
		"match_value":  matchValue,
	}
	var res dataResult
	if err := c.doJSON(ctx, http.MethodPut, "/api/data/", token, body, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.Data, nil
}

func (c *HTTPClient) DeleteData(ctx context.Context, token, table, matchColumn string, matchValue any) ([]map[string]any, error) {
	body := map[string]any{
		"table":        table,
		"match_column": matchColumn,
		"match_value":  matchValue,
	}
	var res dataResult
	if err := c.doJSON(ctx, http.MethodDelete, "/api/data/", token, body, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.Data, nil
}

func (c *HTTPClient) ExecuteRPC(ctx context.Context, token, function string, params map[string]any) (json.RawMessage, error) {
	body := map[string]any{"function": function, "params": params}
	var res rpcResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/data/rpc/", token, body, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.Data, nil
}

// ---- assist operations ----

type processResult struct {
	Envelope
	Result string `json:"result,omitempty"`
}

// Process forwards a query to the backend's AI passthrough. Empty service
// falls back to the backend default; params are merged into the request body
// as provider-specific options.
func (c *HTTPClient) Process(ctx context.Context, token, query, service string, params map[string]any) (string, error) {
	body := map[string]any{"query": query}
	if service != "" {
		body["service"] = service
	}
	for k, v := range params {
		body[k] = v
	}
	var res processResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/process/", token, body, &res); err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.Result, nil
}

// ---- storage operations ----

type uploadResult struct {
	Envelope
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
}

type listResult struct {
	Envelope
	Files []models.StoredFile `json:"files"`
}

type signedURLResult struct {
	Envelope
	SignedURL string `json:"signed_url"`
}

type publicURLResult struct {
	Envelope
	PublicURL string `json:"public_url"`
}

func (c *HTTPClient) UploadFile(ctx context.Context, token, bucket, path string, data []byte, contentType string) (*Upload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{"bucket": bucket, "path": path}
	if contentType != "" {
		fields["content_type"] = contentType
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}
	fw, err := mw.CreateFormFile("file", path)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/storage/", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req, token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	var res uploadResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &res); err != nil && is2xx(resp.StatusCode) {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if !is2xx(resp.StatusCode) {
		res.setFailure(statusText(resp.StatusCode))
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return &Upload{Path: res.Path, PublicURL: res.PublicURL}, nil
}

func (c *HTTPClient) DownloadFile(ctx context.Context, token, bucket, path string) ([]byte, error) {
	u := fmt.Sprintf("%s/api/storage/?bucket=%s&path=%s",
		c.baseURL, url.QueryEscape(bucket), url.QueryEscape(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req, token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if !is2xx(resp.StatusCode) {
		var e Envelope
		_ = json.Unmarshal(raw, &e)
		e.setFailure(statusText(resp.StatusCode))
		return nil, fmt.Errorf("%w: %s", common.ErrBackend, e.Error)
	}
	return raw, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, token, bucket, path string) error {
	body := map[string]any{"bucket": bucket, "path": path}
	var res Envelope
	if err := c.doJSON(ctx, http.MethodDelete, "/api/storage/", token, body, &res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return nil
}

func (c *HTTPClient) ListFiles(ctx context.Context, token, bucket, folder string) ([]models.StoredFile, error) {
	u := fmt.Sprintf("/api/storage/?bucket=%s&folder=%s",
		url.QueryEscape(bucket), url.QueryEscape(folder))
	var res listResult
	if err := c.doJSON(ctx, http.MethodGet, u, token, nil, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.Files, nil
}

func (c *HTTPClient) CreateSignedURL(ctx context.Context, token, bucket, path string, expiresIn time.Duration) (string, error) {
	body := map[string]any{
		"bucket":     bucket,
		"path":       path,
		"expires_in": int(expiresIn.Seconds()),
	}
	var res signedURLResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/storage/signed-url/", token, body, &res); err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.SignedURL, nil
}

func (c *HTTPClient) PublicURL(ctx context.Context, bucket, path string) (string, error) {
	u := fmt.Sprintf("/api/storage/public-url/?bucket=%s&path=%s",
		url.QueryEscape(bucket), url.QueryEscape(path))
	var res publicURLResult
	if err := c.doJSON(ctx, http.MethodGet, u, "", nil, &res); err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("%w: %s", common.ErrBackend, res.Error)
	}
	return res.PublicURL, nil
}

// Ping checks backend reachability against the public config endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var res Envelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/supabase/config/", "", nil, &res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", common.ErrUnavailable, res.Error)
	}
	return nil
}
