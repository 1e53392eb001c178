package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"Referent/internal/config"
	"Referent/internal/domain"
	"Referent/internal/ports"
)

// errorPeekLimit bounds how much of an unparseable error body is kept.
const errorPeekLimit = 200

// ChatClient implements ports.CompletionProvider on top of an OpenAI-compatible
// endpoint (OpenRouter by default).
type ChatClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

var _ ports.CompletionProvider = (*ChatClient)(nil)

// NewChatClient builds a client from configuration. It fails with
// domain.ErrConfiguration when no API key is set.
func NewChatClient(cfg config.LLMConfig, httpClient *http.Client, log *slog.Logger) (*ChatClient, error) {
	apiKey := config.CleanAPIKey(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is not set", domain.ErrConfiguration)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: model is not set", domain.ErrConfiguration)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	withHeaders := *httpClient
	withHeaders.Transport = &headerTransport{
		base: base,
		headers: map[string]string{
			"HTTP-Referer": cfg.Referer,
			"X-Title":      cfg.Title,
		},
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &withHeaders

	return &ChatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: log,
	}, nil
}

// Complete sends one system and one user message and returns the first choice.
func (c *ChatClient) Complete(ctx context.Context, payload domain.PromptPayload) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("%w: chat client is nil", domain.ErrConfiguration)
	}

	c.debug("chat completion request", "model", c.model, "system_chars", len(payload.System), "user_chars", len(payload.User))

	peek := &errorBody{}
	ctx = context.WithValue(ctx, errorBodyKey{}, peek)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: payload.System},
			{Role: openai.ChatMessageRoleUser, Content: payload.User},
		},
	})
	if err != nil {
		return "", mapError(err, peek.text())
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", domain.ErrEmptyResult)
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: blank message", domain.ErrEmptyResult)
	}

	c.debug("chat completion done", "model", resp.Model, "total_tokens", resp.Usage.TotalTokens)
	return text, nil
}

// mapError classifies a client error. rawBody is the start of a non-2xx
// response body and is used when the body was not a JSON error object.
func mapError(err error, rawBody string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = fmt.Sprintf("completion api error %d", apiErr.HTTPStatusCode)
		}
		return &domain.UpstreamError{StatusCode: apiErr.HTTPStatusCode, Message: message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		message := fmt.Sprintf("completion api error %d", reqErr.HTTPStatusCode)
		if rawBody != "" {
			message += " - " + rawBody
		}
		return &domain.UpstreamError{StatusCode: reqErr.HTTPStatusCode, Message: message, Err: err}
	}

	return fmt.Errorf("chat completion: %w", err)
}

func (c *ChatClient) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// headerTransport adds fixed attribution headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			clone.Header.Set(k, v)
		}
	}
	resp, err := t.base.RoundTrip(clone)
	if err != nil || resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}

	if holder, ok := req.Context().Value(errorBodyKey{}).(*errorBody); ok {
		head, _ := io.ReadAll(io.LimitReader(resp.Body, errorPeekLimit))
		holder.set(head)
		resp.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(head), resp.Body), Closer: resp.Body}
	}
	return resp, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

type errorBodyKey struct{}

// errorBody holds the first bytes of a failed response for one call.
type errorBody struct {
	raw []byte
}

func (b *errorBody) set(raw []byte) {
	b.raw = append(b.raw[:0], raw...)
}

func (b *errorBody) text() string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b.raw), ""))
}
