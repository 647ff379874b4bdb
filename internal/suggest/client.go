package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"
)

// FallbackTitles and FallbackSummary are served when the completion API is
// unreachable or returns garbage, so the editor UI always has something to
// show.
var FallbackTitles = []string{
	"Untitled Draft",
	"Thoughts in Progress",
	"A Few Notes",
	"Work in Progress",
	"New Post",
}

const FallbackSummary = "A new post on the platform."

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"

	// Longer drafts are truncated before prompting to keep token usage bounded.
	maxPromptContent = 4000
)

type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
	}
}

// WithBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// truncate cuts long drafts at a rune boundary so a multi-byte character is
// never split in half on the way to the API.
func truncate(content string) string {
	if len(content) <= maxPromptContent {
		return content
	}

	cut := maxPromptContent
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// SuggestTitles asks the model for exactly five title candidates.
func (c *Client) SuggestTitles(ctx context.Context, content string) ([]string, error) {
	system := `You are a helpful writing assistant. Given the body of a blog post, suggest exactly 5 engaging titles for it. Respond with a JSON object of the form {"titles": ["...", "...", "...", "...", "..."]}.`

	raw, err := c.complete(ctx, system, truncate(content))
	if err != nil {
		return nil, err
	}

	var out struct {
		Titles []string `json:"titles"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("could not parse title suggestions: %w", err)
	}
	if len(out.Titles) == 0 {
		return nil, fmt.Errorf("completion contained no titles")
	}

	return out.Titles, nil
}

// SuggestSummary asks the model for a one or two sentence summary.
func (c *Client) SuggestSummary(ctx context.Context, content string) (string, error) {
	system := `You are a helpful writing assistant. Given the body of a blog post, write a concise summary of one or two sentences. Respond with a JSON object of the form {"summary": "..."}.`

	raw, err := c.complete(ctx, system, truncate(content))
	if err != nil {
		return "", err
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("could not parse summary suggestion: %w", err)
	}
	if out.Summary == "" {
		return "", fmt.Errorf("completion contained no summary")
	}

	return out.Summary, nil
}
