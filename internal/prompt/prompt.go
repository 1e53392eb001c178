// Package prompt turns an action and article text into a chat prompt.
package prompt

import (
	"fmt"
	"strings"

	"Referent/internal/domain"
	"Referent/pkg/textutil"
)

const (
	// DefaultMaxLength caps the article text embedded in a prompt.
	DefaultMaxLength = 8000
	// TruncationMarker is appended to article text cut at the limit.
	TruncationMarker = "\n\n[... text truncated ...]"

	defaultLanguage = "Russian"
)

type template struct {
	system string
	user   func(body, sourceURL string) string
}

// Selector builds prompts for a fixed output language.
type Selector struct {
	language  string
	maxLength int
}

// NewSelector returns a selector answering in language. Empty values fall
// back to Russian and DefaultMaxLength.
func NewSelector(language string, maxLength int) *Selector {
	language = strings.TrimSpace(language)
	if language == "" {
		language = defaultLanguage
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Selector{language: language, maxLength: maxLength}
}

// Build composes the payload for kind. sourceURL is only used by telegram posts.
func (s *Selector) Build(kind domain.ActionKind, body, sourceURL string) (domain.PromptPayload, error) {
	tpl, err := s.template(kind)
	if err != nil {
		return domain.PromptPayload{}, err
	}
	content := Truncate(body, s.maxLength)
	return domain.PromptPayload{
		System: tpl.system,
		User:   tpl.user(content, strings.TrimSpace(sourceURL)),
	}, nil
}

// BuildTranslation composes a translation request for the article text.
func (s *Selector) BuildTranslation(body string) domain.PromptPayload {
	return domain.PromptPayload{
		System: fmt.Sprintf("You are a professional translator. Translate the given text from English into %s. "+
			"Preserve the structure, paragraphs and meaning. Return only the translation without comments.", s.language),
		User: fmt.Sprintf("Translate the following text into %s:\n\n%s", s.language, Truncate(body, s.maxLength)),
	}
}

func (s *Selector) template(kind domain.ActionKind) (template, error) {
	switch kind {
	case domain.ActionSummarize:
		return template{
			system: fmt.Sprintf("You are an expert in text analysis. Give a short, informative description of the article in %s.\n\n"+
				"Requirements:\n"+
				"- Length: 2-3 sentences\n"+
				"- Describe the main topic of the article\n"+
				"- Mention the key points and conclusions\n"+
				"- Use clear, accessible language\n"+
				"- Do not add unnecessary details", s.language),
			user: func(body, _ string) string {
				return fmt.Sprintf("What is this article about? Give a short description (2-3 sentences) in %s.\n\nArticle:\n%s", s.language, body)
			},
		}, nil
	case domain.ActionTheses:
		return template{
			system: fmt.Sprintf("You are an expert in text analysis. Extract the main theses of the article as a numbered list in %s.\n\n"+
				"Requirements:\n"+
				"- Each thesis is short (1-2 sentences)\n"+
				"- Theses reflect the key ideas of the article\n"+
				"- Use a numbered list (1., 2., 3., ...)\n"+
				"- Avoid repetition\n"+
				"- Order theses by importance", s.language),
			user: func(body, _ string) string {
				return fmt.Sprintf("Extract the main theses of this article as a numbered list in %s.\n\nArticle:\n%s", s.language, body)
			},
		}, nil
	case domain.ActionTelegramPost:
		return template{
			system: fmt.Sprintf("You are an expert in writing Telegram posts. Create an engaging, informative post in %s based on the article.\n\n"+
				"Requirements:\n"+
				"- Use emoji to draw attention, but sparingly\n"+
				"- Add 3-5 relevant hashtags at the end of the post\n"+
				"- Use **bold text** for headings and important points\n"+
				"- Structure the post with lists and paragraphs\n"+
				"- Length: 200-400 words\n"+
				"- Start with a catchy headline with an emoji\n"+
				"- If a source link is given, put it after the hashtags as plain text: write \"Read more:\" followed by the URL on one line. "+
				"Never use the [text](URL) markdown form.", s.language),
			user: func(body, sourceURL string) string {
				var b strings.Builder
				b.WriteString("Create a Telegram post based on this article. The post must be engaging and informative, with emoji and hashtags.")
				if sourceURL != "" {
					b.WriteString("\n\nAt the end of the post you must add a link to the source. Do NOT use markdown [text](URL) formatting. ")
					b.WriteString("Simply write \"Read more:\" and then the URL on one line:\n")
					b.WriteString(sourceURL)
				}
				b.WriteString("\n\nArticle:\n")
				b.WriteString(body)
				return b.String()
			},
		}, nil
	}
	return template{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, string(kind))
}

// Truncate cuts body to limit runes and appends TruncationMarker. Text at or
// under the limit is returned unchanged.
func Truncate(body string, limit int) string {
	if limit <= 0 || textutil.RuneLen(body) <= limit {
		return body
	}
	return textutil.Truncate(body, limit) + TruncationMarker
}
