// Package scanner extracts expense drafts from receipt images using a
// vision-capable chat completion API.
package scanner

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hively/hively/internal/common"
	"github.com/shopspring/decimal"
)

const extractionPrompt = "Extract every line item from this receipt. You MUST respond with ONLY a valid JSON object of the form " +
	`{"expenses":[{"title":"...","amount":1.23}]}. ` +
	"Do not include any explanatory text, markdown formatting, or commentary before or after the JSON."

// Draft is one expense candidate extracted from a receipt. The caller picks
// a category and payment mode before saving.
type Draft struct {
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}

// Result is the outcome of one scan.
type Result struct {
	ScanID   string
	Expenses []Draft
}

// Config configures the scanner client.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
}

// Scanner calls the vision API. Scans are user-initiated and never retried;
// a failed scan surfaces immediately so the user can retake the photo.
type Scanner struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

// New creates a scanner client.
func New(cfg Config) (*Scanner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: scanner API key is required", common.ErrMissingConfig)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: scanner endpoint is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Scanner{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Scan submits a receipt image and parses the extracted expenses. mimeType
// must describe the image bytes (image/jpeg, image/png).
func (s *Scanner) Scan(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: receipt image is empty", common.ErrValidation)
	}

	scanID := uuid.NewString()
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	requestBody := map[string]any{
		"model": s.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": extractionPrompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURI}},
				},
			},
		},
		"max_tokens": 1024,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: scan request failed: %v", common.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scan API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse scan response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	drafts, err := parseDrafts(response.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	slog.Info("receipt scanned", "scan_id", scanID, "expenses", len(drafts))
	return &Result{ScanID: scanID, Expenses: drafts}, nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// parseDrafts decodes the model output strictly. A malformed payload fails
// the whole scan; partial results are never saved.
func parseDrafts(content string) ([]Draft, error) {
	content = cleanMarkdownWrapper(content)

	var parsed struct {
		Expenses []Draft `json:"expenses"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extracted expenses: %w", err)
	}

	for _, d := range parsed.Expenses {
		if d.Title == "" {
			return nil, fmt.Errorf("%w: extracted expense is missing a title", common.ErrValidation)
		}
		if d.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: extracted expense %q has a negative amount", common.ErrValidation, d.Title)
		}
	}
	return parsed.Expenses, nil
}

// cleanMarkdownWrapper strips a ```json fence some models insist on adding.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
