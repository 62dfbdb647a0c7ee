package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lendstock-sync/internal/logger"
)

// DefaultTimeout bounds connect plus read for every remote call.
const DefaultTimeout = 30 * time.Second

const defaultPageSize = 50

// APIError is a non-2xx or success=false response. Message carries the
// server-provided text for foreground surfacing.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("remote: request failed (status %d)", e.Status)
}

// Client talks to the backend REST API on behalf of one signed-in owner.
type Client struct {
	origin string
	token  string
	http   *http.Client
}

func NewClient(origin, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		origin: strings.TrimRight(origin, "/"),
		token:  token,
		http:   &http.Client{Timeout: timeout},
	}
}

// Origin returns the configured server origin, used to qualify
// server-relative photo paths.
func (c *Client) Origin() string { return c.origin }

// Reachable probes the health endpoint. Any transport failure or 5xx means
// unreachable; sync passes short-circuit on false instead of erroring.
func (c *Client) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.origin+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < http.StatusInternalServerError
}

// do performs one JSON request and decodes the envelope. out, when non-nil,
// receives the envelope's data field.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	u := c.origin + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, method, path, out)
}

func (c *Client) send(req *http.Request, method, path string, out any) (*envelope, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	logger.ExternalServiceCall("backend", method+" "+path)
	resp, err := c.http.Do(req)
	logger.ExternalServiceResult("backend", method+" "+path, err)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		// A malformed body on an error status still yields a usable APIError.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || (len(raw) > 0 && !env.Success) {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
	}
	return &env, nil
}

// doMultipart sends fields plus local files as multipart/form-data.
func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, files map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for field, localPath := range files {
		f, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", localPath, err)
		}
		part, err := w.CreateFormFile(field, filepath.Base(localPath))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		f.Close()
		if err != nil {
			return fmt.Errorf("attach %s: %w", localPath, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.origin+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, err = c.send(req, method, path, out)
	return err
}

// listAll walks a paged collection, fetching every page before returning.
// fetch is called with 1-based page numbers; any page failure aborts the
// whole listing so a partial pull is never applied.
func listAll[T any](fetch func(page int) ([]T, *Pagination, error)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		batch, pg, err := fetch(page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if pg == nil || !pg.HasNext {
			return all, nil
		}
	}
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(defaultPageSize))
	return q
}
