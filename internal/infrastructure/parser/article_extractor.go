package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"Referent/internal/config"
	"Referent/internal/domain"
	"Referent/internal/ports"
	"Referent/pkg/textutil"
)

const (
	maxRedirects            = 10
	englishName             = "English"
	defaultTimeout          = 30 * time.Second
	defaultMinBodyLength    = 100
	defaultMaxContentLength = 10000
)

// ArticleExtractor downloads a page and heuristically isolates title, date and body.
type ArticleExtractor struct {
	client     *http.Client
	cfg        config.ExtractorConfig
	strategies []bodyStrategy
	detector   ports.LanguageDetector
	logger     *slog.Logger
}

var _ ports.ArticleExtractor = (*ArticleExtractor)(nil)

// NewArticleExtractor wires an HTTP client; a nil client gets one that follows up to 10 redirects.
// detector may be nil to skip language detection.
func NewArticleExtractor(cfg config.ExtractorConfig, client *http.Client, detector ports.LanguageDetector, log *slog.Logger) *ArticleExtractor {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MinBodyLength <= 0 {
		cfg.MinBodyLength = defaultMinBodyLength
	}
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = defaultMaxContentLength
	}
	return &ArticleExtractor{
		client:     client,
		cfg:        cfg,
		strategies: defaultBodyStrategies(cfg.MinBodyLength),
		detector:   detector,
		logger:     log,
	}
}

// Extract validates rawURL, fetches it under the configured timeout and parses the page.
// Missing parts are replaced by sentinel values rather than reported as errors.
func (e *ArticleExtractor) Extract(ctx context.Context, rawURL string) (domain.ExtractedArticle, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return domain.ExtractedArticle{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	raw, err := e.fetch(ctx, target.String())
	if err != nil {
		return domain.ExtractedArticle{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return domain.ExtractedArticle{}, fmt.Errorf("parse document: %w", err)
	}

	article := e.parse(doc, raw, target)
	if e.detector != nil && article.HasContent() {
		article.Language = e.detector.Detect(article.Body)
		if article.Language != "" && !strings.EqualFold(article.Language, englishName) {
			e.warn("article is not in English", "url", target.String(), "language", article.Language)
		}
	}

	return article, nil
}

// ValidateURL accepts only absolute http(s) URLs with a host.
func ValidateURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, &domain.InvalidInputError{Field: "url", Reason: "url is empty"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &domain.InvalidInputError{Field: "url", Reason: err.Error()}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &domain.InvalidInputError{Field: "url", Reason: "scheme must be http or https"}
	}
	if parsed.Host == "" {
		return nil, &domain.InvalidInputError{Field: "url", Reason: "host is missing"}
	}

	return parsed, nil
}

func (e *ArticleExtractor) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	setBrowserHeaders(req, e.cfg.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.FetchError{URL: pageURL, Class: domain.FetchStatus, StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if e.cfg.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, e.cfg.MaxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, classifyTransportError(pageURL, err)
	}

	return raw, nil
}

// setBrowserHeaders mimics a desktop browser. Accept-Encoding is left to the
// transport so gzip stays transparent.
func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func classifyTransportError(pageURL string, err error) error {
	class := domain.FetchConnection
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		class = domain.FetchTimeout
	}
	return &domain.FetchError{URL: pageURL, Class: class, Err: err}
}

func (e *ArticleExtractor) parse(doc *goquery.Document, raw []byte, pageURL *url.URL) domain.ExtractedArticle {
	title := textutil.FirstNonEmpty(
		textutil.CollapseWhitespace(doc.Find("h1").First().Text()),
		textutil.CollapseWhitespace(doc.Find("title").First().Text()),
		attr(doc, `meta[property="og:title"]`, "content"),
	)

	published := textutil.FirstNonEmpty(
		attr(doc, "time", "datetime"),
		doc.Find("time").First().Text(),
		doc.Find(`[class*="date"]`).First().Text(),
		doc.Find(`[class*="published"]`).First().Text(),
		attr(doc, `meta[property="article:published_time"]`, "content"),
	)

	body := e.body(doc, raw, pageURL)
	body = textutil.Truncate(body, e.cfg.MaxContentLength)

	return domain.ExtractedArticle{
		Title:       orSentinel(title, domain.TitleNotFound),
		PublishedAt: orSentinel(textutil.CollapseWhitespace(published), domain.DateNotFound),
		Body:        orSentinel(body, domain.ContentNotFound),
	}
}

func (e *ArticleExtractor) body(doc *goquery.Document, raw []byte, pageURL *url.URL) string {
	if text, label, ok := selectBody(doc, e.strategies); ok {
		e.debug("body selected", "url", pageURL.String(), "strategy", label)
		return text
	}

	if e.cfg.ReadabilityFallback {
		if text, ok := readabilityBody(raw, pageURL, e.cfg.MinBodyLength); ok {
			e.debug("body selected", "url", pageURL.String(), "strategy", "readability")
			return text
		}
	}

	e.debug("body selected", "url", pageURL.String(), "strategy", "stripped-body")
	return strippedBody(doc)
}

func attr(doc *goquery.Document, selector, name string) string {
	value, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(value)
}

func orSentinel(value, sentinel string) string {
	if value == "" {
		return sentinel
	}
	return value
}

func (e *ArticleExtractor) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *ArticleExtractor) warn(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
