package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client implements ObjectStore against a Supabase-style storage API:
// objects live under /object/{bucket}/{path}, uploads are POSTs with an
// x-upsert header, and signed URLs come from /object/sign.
type Client struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a storage client for the given bucket.
func NewClient(baseURL, bucket, serviceKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// Upload writes data at path. Without AllowOverwrite, an occupied path
// is reported as ErrObjectExists and the stored object is untouched.
func (c *Client) Upload(ctx context.Context, path string, data []byte, opts UploadOptions) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	c.authorize(req)
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	req.Header.Set("x-upsert", fmt.Sprintf("%t", opts.AllowOverwrite))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("upload %s: %w", path, ErrObjectExists)
	default:
		return fmt.Errorf("upload %s: %s", path, c.errorDetail(resp))
	}
}

// Download fetches the bytes stored at path.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("download %s: %w", path, ErrObjectNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("download %s: %s", path, c.errorDetail(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download body for %s: %w", path, err)
	}
	return data, nil
}

// Remove deletes the object at path. Removing a missing object is not
// an error; the outcome is the same.
func (c *Client) Remove(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(path), nil)
	if err != nil {
		return fmt.Errorf("build remove request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove %s: %s", path, c.errorDetail(resp))
	}
	return nil
}

// SignedURL asks the storage service for a time-limited download URL.
func (c *Client) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	body, err := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	if err != nil {
		return "", fmt.Errorf("encode sign request: %w", err)
	}

	signURL := fmt.Sprintf("%s/object/sign/%s/%s", c.baseURL, c.bucket, encodePath(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build sign request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("sign %s: %w", path, ErrObjectNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sign %s: %s", path, c.errorDetail(resp))
	}

	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("decode sign response for %s: %w", path, err)
	}
	if signed.SignedURL == "" {
		return "", fmt.Errorf("sign %s: empty signed URL in response", path)
	}
	return c.baseURL + signed.SignedURL, nil
}

func (c *Client) objectURL(path string) string {
	return fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, encodePath(path))
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}

// errorDetail extracts a short error message from a failed response.
func (c *Client) errorDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512))
	if err != nil || len(body) == 0 {
		return fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if apiErr.Message != "" {
			return fmt.Sprintf("status %d: %s", resp.StatusCode, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Sprintf("status %d: %s", resp.StatusCode, apiErr.Error)
		}
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// encodePath escapes each path segment while keeping the separators.
func encodePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
