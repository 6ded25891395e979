package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	Base   string
	APIKey string
	Model  string
	HTTP   *http.Client
}

func NewClient(base, apikey, model string, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		Base:   base,
		APIKey: apikey,
		Model:  model,
		HTTP:   &http.Client{Timeout: timeout},
	}
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ErrEmptyCompletion is returned when the API answers without choices.
var ErrEmptyCompletion = errors.New("llm: empty completion")

func (c *Client) do(ctx context.Context, method, p string, body any) ([]byte, error) {
	u, err := url.Parse(c.Base)
	if err != nil {
		return nil, err
	}
	u.Path = path.Join(u.Path, p)
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var out chatResponse
		if json.Unmarshal(b, &out) == nil && out.Error != nil && out.Error.Message != "" {
			return nil, fmt.Errorf("http %d: %s", resp.StatusCode, out.Error.Message)
		}
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}
	return b, nil
}

// Complete sends a chat completion request and returns the first choice.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	b, err := c.do(ctx, http.MethodPost, "/chat/completions", chatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("llm: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
