package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/tripmate/internal/domain"
)

// Client talks to an OpenAI-compatible chat completions endpoint such as
// OpenRouter.
type Client struct {
	baseURL    string
	apiKey     string
	siteURL    string
	siteName   string
	sampling   Sampling
	httpClient *http.Client
}

// Sampling holds optional generation parameters. A nil Temperature or a zero
// MaxTokens leaves the provider default.
type Sampling struct {
	Temperature *float64
	MaxTokens   int
}

// Option configures a Client.
type Option func(*Client)

// WithAttribution sets the referring site and application name headers the
// provider uses for attribution.
func WithAttribution(siteURL, siteName string) Option {
	return func(c *Client) {
		c.siteURL = siteURL
		c.siteName = siteName
	}
}

// WithSampling sets the generation parameters sent with every request.
func WithSampling(s Sampling) Option {
	return func(c *Client) {
		c.sampling = s
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new chat completions client.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatCompletionRequest represents the OpenAI chat completion request.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

// ChatMessage represents a chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents the OpenAI chat completion response.
type ChatCompletionResponse struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Usage   *Usage    `json:"usage,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice represents a completion choice.
type Choice struct {
	Index        int              `json:"index"`
	Message      *ResponseMessage `json:"message,omitempty"`
	FinishReason string           `json:"finish_reason,omitempty"`
}

// ResponseMessage is the assistant message inside a choice. Content is a
// pointer so a missing field can be told apart from an empty one.
type ResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError represents the error details.
type APIError struct {
	Message string          `json:"message"`
	Type    string          `json:"type,omitempty"`
	Code    json.RawMessage `json:"code,omitempty"`
}

// Model represents a model from the models list.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelsResponse represents the response from /v1/models.
type ModelsResponse struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// Complete implements Gateway.
func (c *Client) Complete(ctx context.Context, model, systemInstruction string, history []domain.ChatTurn, userText string) (string, error) {
	req := &ChatCompletionRequest{
		Model:       model,
		Messages:    BuildMessages(systemInstruction, history, userText),
		Temperature: c.sampling.Temperature,
	}
	if c.sampling.MaxTokens > 0 {
		maxTokens := c.sampling.MaxTokens
		req.MaxTokens = &maxTokens
	}
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	return extractContent(model, resp)
}

// CreateChatCompletion sends a chat completion request. Transport and status
// failures come back as *TransportError, undecodable bodies as
// *MalformedResponseError.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Model: req.Model, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Model: req.Model, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, &TransportError{Model: req.Model, StatusCode: resp.StatusCode, Message: errResp.Error.Message}
		}
		return nil, &TransportError{Model: req.Model, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &MalformedResponseError{Model: req.Model, Reason: "failed to unmarshal response", Err: err}
	}

	// Some providers report upstream failures with a 200 and an error envelope.
	if result.Error != nil && len(result.Choices) == 0 {
		return nil, &TransportError{Model: req.Model, StatusCode: resp.StatusCode, Message: result.Error.Message}
	}

	return &result, nil
}

// ListModels retrieves the list of available models.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var result ModelsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return result.Data, nil
}

// setHeaders sets common request headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}
}

func extractContent(model string, resp *ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Model: model, Reason: "no choices"}
	}
	msg := resp.Choices[0].Message
	if msg == nil {
		return "", &MalformedResponseError{Model: model, Reason: "choice has no message"}
	}
	if msg.Content == nil || strings.TrimSpace(*msg.Content) == "" {
		return "", &MalformedResponseError{Model: model, Reason: "message has no content"}
	}
	return *msg.Content, nil
}
