package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openailib "github.com/sashabaranov/go-openai"

	"github.com/feedbackfix/feedbackfix-backend/pkg/config"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
)

// ErrorKind classifies provider failures so callers can decide whether to retry.
type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindTimeout     ErrorKind = "timeout"
	KindAuth        ErrorKind = "auth"
	KindUnavailable ErrorKind = "unavailable"
)

// Error wraps a provider failure with its classified kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("openai: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classified kind of err, or "" when err is not a provider error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsRateLimited reports whether err is a classified rate limit failure.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Client wraps the OpenAI SDK behind the completion surface the app needs.
type Client struct {
	api *openailib.Client
}

// NewClient initializes the OpenAI client from config.
func NewClient(ctx context.Context, cfg config.OpenAIConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	libCfg := openailib.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		libCfg.BaseURL = baseURL
	}

	if logg != nil {
		logg.Info(ctx, "openai client initialized")
	}

	return &Client{api: openailib.NewClientWithConfig(libCfg)}, nil
}

// Complete performs a chat completion and returns the raw model output.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("model is required")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openailib.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openailib.ChatCompletionMessage{
			{Role: openailib.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openailib.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindUnavailable, Err: errors.New("empty choices in completion response")}
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Err: err}
	}

	var apiErr *openailib.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: KindAuth, Err: err}
		}
	}

	var reqErr *openailib.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: KindAuth, Err: err}
		}
	}

	return &Error{Kind: KindUnavailable, Err: err}
}
