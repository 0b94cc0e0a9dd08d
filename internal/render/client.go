package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client calls the template-rendering collaborator: it posts a template
// code plus a normalized data map and receives the rendered file bytes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}
}

type renderRequest struct {
	TemplateCode string         `json:"templateCode"`
	Data         map[string]any `json:"data"`
}

// Render produces a document from the named template. The data map is
// sent as-is; normalize it first so the template never sees missing
// nested fields.
func (c *Client) Render(ctx context.Context, templateCode string, data map[string]any) ([]byte, error) {
	body, err := json.Marshal(renderRequest{TemplateCode: templateCode, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render template %s: %w", templateCode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("render service returned an error",
			"template", templateCode,
			"status", resp.StatusCode,
			"body", string(detail),
		)
		return nil, fmt.Errorf("render template %s: status %d", templateCode, resp.StatusCode)
	}

	rendered, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rendered document: %w", err)
	}
	if len(rendered) == 0 {
		return nil, fmt.Errorf("render template %s: empty response", templateCode)
	}
	return rendered, nil
}
