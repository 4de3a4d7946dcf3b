package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/llm"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) Name() string { return "ollama" }

// Complete calls /api/generate with JSON output forced and streaming off.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"system": systemPrompt,
		"prompt": userPrompt,
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": 0.2,
		},
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := llm.PostJSON(ctx, c.httpClient, c.Name(), c.baseURL+"/api/generate", nil, reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
