package domain

import (
	"fmt"
	"strings"
)

// Sentinel values returned instead of failing the whole extraction.
const (
	TitleNotFound   = "title not found"
	DateNotFound    = "date not found"
	ContentNotFound = "content not found"
)

// ExtractedArticle is the best-effort result of scraping one article page.
type ExtractedArticle struct {
	Title       string `json:"title"`
	PublishedAt string `json:"publishedAt"`
	Body        string `json:"body"`
	Language    string `json:"language,omitempty"`
}

// HasContent reports whether the body carries usable text.
func (a ExtractedArticle) HasContent() bool {
	body := strings.TrimSpace(a.Body)
	return body != "" && body != ContentNotFound
}

// ActionKind selects which derived artifact to produce from article text.
type ActionKind string

const (
	ActionSummarize    ActionKind = "summarize"
	ActionTheses       ActionKind = "theses"
	ActionTelegramPost ActionKind = "telegram_post"
)

// ActionKinds lists every supported action in display order.
var ActionKinds = []ActionKind{ActionSummarize, ActionTheses, ActionTelegramPost}

// ParseActionKind resolves the wire name of an action.
func ParseActionKind(value string) (ActionKind, error) {
	kind := ActionKind(strings.ToLower(strings.TrimSpace(value)))
	switch kind {
	case ActionSummarize, ActionTheses, ActionTelegramPost:
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, value)
}

// PromptPayload is a fully composed chat request ready to send.
type PromptPayload struct {
	System string
	User   string
}
