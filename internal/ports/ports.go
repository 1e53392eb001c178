package ports

import (
	"context"

	"Referent/internal/domain"
)

// ArticleExtractor downloads a page and isolates its readable parts.
type ArticleExtractor interface {
	Extract(ctx context.Context, rawURL string) (domain.ExtractedArticle, error)
}

// CompletionProvider performs a single chat-completion exchange.
type CompletionProvider interface {
	Complete(ctx context.Context, payload domain.PromptPayload) (string, error)
}

// LanguageDetector names the language of a text, or returns "" when unsure.
type LanguageDetector interface {
	Detect(text string) string
}

// Publisher pushes generated posts to a channel (Telegram, etc.).
type Publisher interface {
	Publish(ctx context.Context, text string) error
}
