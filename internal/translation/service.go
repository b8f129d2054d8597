package translation

import (
	"context"
	"strings"
	"time"

	"github.com/feedbackfix/feedbackfix-backend/pkg/config"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
	openaiclient "github.com/feedbackfix/feedbackfix-backend/pkg/openai"
)

// Service translates free-form feedback into actionable design tasks.
type Service interface {
	Translate(ctx context.Context, feedbackText string) ([]Task, error)
}

type service struct {
	completer ChatCompleter
	cfg       config.TranslationConfig
	logg      *logger.Logger
}

// Params wires translation dependencies.
type Params struct {
	Completer ChatCompleter
	Config    config.TranslationConfig
	Logger    *logger.Logger
}

// NewService validates dependencies and returns the translation orchestrator.
func NewService(params Params) (Service, error) {
	if params.Completer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat completer required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if strings.TrimSpace(params.Config.PrimaryModel) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "primary model required")
	}
	if strings.TrimSpace(params.Config.FallbackModel) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "fallback model required")
	}
	return &service{
		completer: params.Completer,
		cfg:       params.Config,
		logg:      params.Logger,
	}, nil
}

// Translate runs the full pipeline: model call with one bounded fallback-model
// retry on rate limit, normalization, and fallback synthesis. It never returns
// an empty task list for non-empty input.
func (s *service) Translate(ctx context.Context, feedbackText string) ([]Task, error) {
	feedbackText = strings.TrimSpace(feedbackText)
	if feedbackText == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feedback text required")
	}

	raw, err := s.complete(ctx, feedbackText)
	if err != nil {
		logCtx := s.logg.WithField(ctx, "error", err.Error())
		s.logg.Warn(logCtx, "model call failed, synthesizing fallback tasks")
		return SynthesizeFallback(feedbackText), nil
	}

	tasks, err := Normalize(raw)
	if err != nil {
		logCtx := s.logg.WithField(ctx, "error", err.Error())
		s.logg.Warn(logCtx, "model output unusable, synthesizing fallback tasks")
		return SynthesizeFallback(feedbackText), nil
	}
	return tasks, nil
}

// complete calls the primary model and retries exactly once on the fallback
// model when the primary is rate limited.
func (s *service) complete(ctx context.Context, feedbackText string) (string, error) {
	raw, err := s.callModel(ctx, s.cfg.PrimaryModel, feedbackText)
	if err == nil {
		return raw, nil
	}
	if !openaiclient.IsRateLimited(err) {
		return "", err
	}

	logCtx := s.logg.WithField(ctx, "fallback_model", s.cfg.FallbackModel)
	s.logg.Warn(logCtx, "primary model rate limited, retrying on fallback model")
	return s.callModel(ctx, s.cfg.FallbackModel, feedbackText)
}

func (s *service) callModel(ctx context.Context, model, feedbackText string) (string, error) {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return s.completer.Complete(ctx, openaiclient.CompletionRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   feedbackText,
		Temperature:  s.cfg.Temperature,
		MaxTokens:    s.cfg.MaxTokens,
	})
}
