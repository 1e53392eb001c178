package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"Referent/internal/api"
	"Referent/internal/config"
	"Referent/internal/infrastructure/language"
	"Referent/internal/infrastructure/llm"
	"Referent/internal/infrastructure/parser"
	"Referent/internal/infrastructure/telegram"
	"Referent/internal/logging"
	"Referent/internal/ports"
	"Referent/internal/prompt"
	"Referent/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	service *usecase.Service
}

// New builds the adapters and the service. A missing API key or a broken
// Telegram setup is logged and leaves the related operations unavailable.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}

	var detector ports.LanguageDetector
	if !cfg.Extractor.SkipLanguageCheck {
		detector = language.NewLinguaDetector()
	}
	extractor := parser.NewArticleExtractor(cfg.Extractor, nil, detector, baseLogger.With("component", "extractor"))

	var provider ports.CompletionProvider
	if chat, err := llm.NewChatClient(cfg.LLM, nil, baseLogger.With("component", "llm")); err != nil {
		baseLogger.Error("configuration error", "component", "llm", "error", err)
	} else {
		provider = chat
	}

	var publisher ports.Publisher
	if cfg.Telegram.Enabled() {
		if pub, err := telegram.NewPublisher(cfg.Telegram, nil, baseLogger.With("component", "telegram")); err != nil {
			baseLogger.Error("telegram publisher disabled", "error", err)
		} else {
			publisher = pub
		}
	}

	service := usecase.NewService(usecase.ServiceDeps{
		Extractor: extractor,
		Provider:  provider,
		Publisher: publisher,
		Selector:  prompt.NewSelector(cfg.LLM.OutputLanguage, cfg.LLM.MaxPromptLength),
		Timeout:   cfg.LLM.Timeout,
		Logger:    baseLogger.With("component", "service"),
	})

	return &Application{cfg: cfg, logger: baseLogger, service: service}
}

// Service exposes the use cases for one-shot CLI commands.
func (a *Application) Service() *usecase.Service {
	return a.service
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      api.SetupRouter(a.service, a.logger.With("component", "http")),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.Info("http server shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
