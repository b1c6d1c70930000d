package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/juspay/yama-sub000/internal/adapter/llm/http"
)

const (
	defaultBaseURL          = "https://api.anthropic.com"
	defaultTimeout          = 60 * time.Second
	defaultAnthropicVersion = "2023-06-01"

	providerName = "anthropic"
)

// HTTPClient talks to the Anthropic Messages API.
type HTTPClient struct {
	apiKey      string
	model       string
	baseURL     string
	client      *http.Client
	retryConfig llmhttp.RetryConfig
}

// NewHTTPClient creates a client for the given model.
func NewHTTPClient(apiKey, model string) *HTTPClient {
	return &HTTPClient{
		apiKey:      apiKey,
		model:       model,
		baseURL:     defaultBaseURL,
		client:      &http.Client{Timeout: defaultTimeout},
		retryConfig: llmhttp.DefaultRetryConfig(),
	}
}

// SetBaseURL overrides the API endpoint (used in tests).
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetRetryConfig overrides the default retry schedule.
func (c *HTTPClient) SetRetryConfig(cfg llmhttp.RetryConfig) {
	c.retryConfig = cfg
}

// CallOptions contains per-call parameters.
type CallOptions struct {
	Temperature float64
	MaxTokens   int
	System      string
}

// APIResponse is the parsed result of one Messages API call.
type APIResponse struct {
	Text       string
	TokensIn   int
	TokensOut  int
	Model      string
	StopReason string
}

// Call sends one prompt to the Messages API, retrying transient failures.
func (c *HTTPClient) Call(ctx context.Context, prompt string, options CallOptions) (*APIResponse, error) {
	reqBody := MessagesRequest{
		Model:     c.model,
		Messages:  []Message{{Role: "user", Content: prompt}},
		MaxTokens: options.MaxTokens,
		System:    options.System,
	}
	if options.Temperature > 0 {
		reqBody.Temperature = options.Temperature
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	url := c.baseURL + "/v1/messages"

	var resp *http.Response
	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
		if reqErr != nil {
			return &llmhttp.Error{
				Type:     llmhttp.ErrTypeUnknown,
				Message:  reqErr.Error(),
				Provider: providerName,
			}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", defaultAnthropicVersion)

		var callErr error
		resp, callErr = c.client.Do(req)
		if callErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeTimeout,
				Message:   llmhttp.RedactURLSecrets(callErr.Error()),
				Retryable: true,
				Provider:  providerName,
			}
		}
		if resp.StatusCode >= 400 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return mapErrorResponse(resp.StatusCode, bodyBytes)
		}
		return nil
	}, c.retryConfig)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var messagesResp MessagesResponse
	if err := json.Unmarshal(bodyBytes, &messagesResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(messagesResp.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	var textParts []string
	for _, block := range messagesResp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}

	return &APIResponse{
		Text:       strings.Join(textParts, ""),
		TokensIn:   messagesResp.Usage.InputTokens,
		TokensOut:  messagesResp.Usage.OutputTokens,
		Model:      messagesResp.Model,
		StopReason: messagesResp.StopReason,
	}, nil
}

// mapErrorResponse converts API error status codes to typed errors.
func mapErrorResponse(statusCode int, body []byte) error {
	var errResp ErrorResponse
	message := fmt.Sprintf("HTTP %d", statusCode)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	e := &llmhttp.Error{
		Message:    message,
		StatusCode: statusCode,
		Provider:   providerName,
	}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Type = llmhttp.ErrTypeAuthentication
	case http.StatusTooManyRequests:
		e.Type = llmhttp.ErrTypeRateLimit
		e.Retryable = true
	case http.StatusBadRequest:
		e.Type = llmhttp.ErrTypeInvalidRequest
	case http.StatusNotFound:
		e.Type = llmhttp.ErrTypeInvalidRequest
	case 529: // Anthropic-specific: overloaded
		e.Type = llmhttp.ErrTypeServiceUnavailable
		e.Retryable = true
	case http.StatusServiceUnavailable, http.StatusInternalServerError:
		e.Type = llmhttp.ErrTypeServiceUnavailable
		e.Retryable = true
	default:
		e.Type = llmhttp.ErrTypeUnknown
	}
	return e
}
