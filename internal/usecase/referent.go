package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Referent/internal/domain"
	"Referent/internal/ports"
	"Referent/internal/prompt"
)

// ServiceDeps wires driven adapters into the service.
type ServiceDeps struct {
	Extractor ports.ArticleExtractor
	Provider  ports.CompletionProvider
	Publisher ports.Publisher
	Selector  *prompt.Selector
	Timeout   time.Duration
	Logger    *slog.Logger
}

// DispatchRequest carries already extracted text and the requested action.
type DispatchRequest struct {
	Action    string
	Body      string
	SourceURL string
}

// RunResult pairs the extracted article with the generated artifact.
type RunResult struct {
	Article domain.ExtractedArticle `json:"article"`
	Result  string                  `json:"result"`
}

// Service sequences extraction, prompt selection and completion.
type Service struct {
	extractor  ports.ArticleExtractor
	publisher  ports.Publisher
	selector   *prompt.Selector
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewService constructs the orchestration component.
func NewService(deps ServiceDeps) *Service {
	selector := deps.Selector
	if selector == nil {
		selector = prompt.NewSelector("", 0)
	}
	return &Service{
		extractor:  deps.Extractor,
		publisher:  deps.Publisher,
		selector:   selector,
		dispatcher: NewDispatcher(deps.Provider, deps.Timeout, deps.Logger),
		logger:     deps.Logger,
	}
}

// Extract downloads and parses the article at rawURL.
func (s *Service) Extract(ctx context.Context, rawURL string) (domain.ExtractedArticle, error) {
	if s.extractor == nil {
		return domain.ExtractedArticle{}, s.fail("extract", fmt.Errorf("%w: extractor is not configured", domain.ErrConfiguration))
	}

	article, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		return domain.ExtractedArticle{}, s.fail("extract", err, "url", rawURL)
	}

	s.info("article extracted", "url", rawURL, "title", article.Title, "body_chars", len([]rune(article.Body)), "language", article.Language)
	return article, nil
}

// Dispatch runs an action over article text supplied by the caller. The
// extraction sentinel is refused like in Run.
func (s *Service) Dispatch(ctx context.Context, req DispatchRequest) (string, error) {
	if strings.TrimSpace(req.Body) == "" {
		return "", s.fail("dispatch", &domain.InvalidInputError{Field: "body", Reason: "body is empty"})
	}
	if strings.TrimSpace(req.Action) == "" {
		return "", s.fail("dispatch", &domain.InvalidInputError{Field: "actionKind", Reason: "action is empty"})
	}

	kind, err := domain.ParseActionKind(req.Action)
	if err != nil {
		return "", s.fail("dispatch", err, "action", req.Action)
	}
	if !(domain.ExtractedArticle{Body: req.Body}).HasContent() {
		return "", s.fail("dispatch", domain.ErrContentNotFound, "action", kind)
	}

	return s.complete(ctx, kind, req.Body, req.SourceURL)
}

// Run extracts the article and applies the action to its body. The
// completion API is not called when no usable body was found.
func (s *Service) Run(ctx context.Context, rawURL, action string) (RunResult, error) {
	kind, err := domain.ParseActionKind(action)
	if err != nil {
		return RunResult{}, s.fail("run", err, "action", action)
	}

	article, err := s.Extract(ctx, rawURL)
	if err != nil {
		return RunResult{}, err
	}
	if !article.HasContent() {
		return RunResult{Article: article}, s.fail("run", domain.ErrContentNotFound, "url", rawURL)
	}

	text, err := s.complete(ctx, kind, article.Body, rawURL)
	if err != nil {
		return RunResult{Article: article}, err
	}
	return RunResult{Article: article, Result: text}, nil
}

// Translate renders article text in the configured output language.
func (s *Service) Translate(ctx context.Context, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", s.fail("translate", &domain.InvalidInputError{Field: "body", Reason: "body is empty"})
	}

	text, err := s.dispatcher.Complete(ctx, s.selector.BuildTranslation(body))
	if err != nil {
		return "", s.fail("translate", err)
	}
	return text, nil
}

// Publish sends a finished post to the configured channel.
func (s *Service) Publish(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return s.fail("publish", &domain.InvalidInputError{Field: "text", Reason: "text is empty"})
	}
	if s.publisher == nil {
		return s.fail("publish", fmt.Errorf("%w: publisher is not configured", domain.ErrConfiguration))
	}

	if err := s.publisher.Publish(ctx, text); err != nil {
		return s.fail("publish", err)
	}
	s.info("post published", "chars", len([]rune(text)))
	return nil
}

func (s *Service) complete(ctx context.Context, kind domain.ActionKind, body, sourceURL string) (string, error) {
	payload, err := s.selector.Build(kind, body, sourceURL)
	if err != nil {
		return "", s.fail("dispatch", err, "action", kind)
	}

	s.debug("prompt built", "action", kind, "user_preview", preview(payload.User, 200))

	text, err := s.dispatcher.Complete(ctx, payload)
	if err != nil {
		return "", s.fail("dispatch", err, "action", kind)
	}

	s.info("action completed", "action", kind, "result_chars", len([]rune(text)))
	return text, nil
}

// fail logs err with full detail and returns it unchanged.
func (s *Service) fail(op string, err error, args ...interface{}) error {
	if s.logger == nil {
		return err
	}
	args = append([]interface{}{"op", op, "error", err}, args...)

	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		s.logger.Error("configuration error", args...)
	case errors.As(err, &upstream):
		s.logger.Error("completion api failed", append(args, "upstream_status", upstream.StatusCode, "upstream_message", upstream.Message)...)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownAction):
		s.logger.Info("request rejected", args...)
	default:
		s.logger.Warn(op+" failed", args...)
	}
	return err
}

func (s *Service) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Service) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
