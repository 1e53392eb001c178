package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"Referent/internal/domain"
	"Referent/internal/logging"
	"Referent/internal/prompt"
)

type fakeExtractor struct {
	article domain.ExtractedArticle
	err     error
}

func (f fakeExtractor) Extract(context.Context, string) (domain.ExtractedArticle, error) {
	return f.article, f.err
}

type recordingProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	payloads []domain.PromptPayload
}

func (p *recordingProvider) Complete(_ context.Context, payload domain.PromptPayload) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return p.reply, p.err
}

func (p *recordingProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

type recordingPublisher struct {
	texts []string
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, text string) error {
	p.texts = append(p.texts, text)
	return p.err
}

func newService(extractor fakeExtractor, provider *recordingProvider, publisher *recordingPublisher) *Service {
	deps := ServiceDeps{
		Extractor: extractor,
		Selector:  prompt.NewSelector("English", 0),
		Timeout:   time.Second,
		Logger:    logging.Discard(),
	}
	if provider != nil {
		deps.Provider = provider
	}
	if publisher != nil {
		deps.Publisher = publisher
	}
	return NewService(deps)
}

func TestRunThesesEndToEnd(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{reply: "1. A\n2. B"}
	svc := newService(fakeExtractor{article: domain.ExtractedArticle{Title: "X", PublishedAt: "Y", Body: "hello world"}}, provider, nil)

	res, err := svc.Run(context.Background(), "https://example.com/a", "theses")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Result != "1. A\n2. B" {
		t.Fatalf("result must be returned verbatim, got %q", res.Result)
	}
	if res.Article.Title != "X" || res.Article.PublishedAt != "Y" {
		t.Fatalf("unexpected article: %+v", res.Article)
	}
	if provider.calls() != 1 || !strings.Contains(provider.payloads[0].User, "hello world") {
		t.Fatalf("unexpected provider payloads: %+v", provider.payloads)
	}
}

func TestRunWithoutContentSkipsCompletion(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{reply: "unused"}
	article := domain.ExtractedArticle{Title: domain.TitleNotFound, PublishedAt: domain.DateNotFound, Body: domain.ContentNotFound}
	svc := newService(fakeExtractor{article: article}, provider, nil)

	res, err := svc.Run(context.Background(), "https://example.com/a", "summarize")
	if !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
	if res.Article.Body != domain.ContentNotFound {
		t.Fatalf("sentinel article expected, got %+v", res.Article)
	}
	if provider.calls() != 0 {
		t.Fatalf("completion API must not be called, got %d calls", provider.calls())
	}
}

func TestRunTelegramPostCarriesSourceURL(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{reply: "post"}
	svc := newService(fakeExtractor{article: domain.ExtractedArticle{Body: "some text"}}, provider, nil)

	if _, err := svc.Run(context.Background(), "https://example.com/story", "telegram_post"); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(provider.payloads[0].User, "https://example.com/story") {
		t.Fatalf("source URL missing from prompt: %q", provider.payloads[0].User)
	}
}

func TestRunRejectsUnknownActionBeforeFetching(t *testing.T) {
	t.Parallel()

	extractorErr := errors.New("extractor must not be called")
	svc := newService(fakeExtractor{err: extractorErr}, &recordingProvider{}, nil)

	_, err := svc.Run(context.Background(), "https://example.com", "poem")
	if !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestDispatchValidation(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{reply: "ok"}
	svc := newService(fakeExtractor{}, provider, nil)

	_, err := svc.Dispatch(context.Background(), DispatchRequest{Action: "poem", Body: "  "})
	var inputErr *domain.InvalidInputError
	if !errors.As(err, &inputErr) || inputErr.Field != "body" {
		t.Fatalf("blank body must be rejected first, got %v", err)
	}

	_, err = svc.Dispatch(context.Background(), DispatchRequest{Body: "text"})
	if !errors.As(err, &inputErr) || inputErr.Field != "actionKind" {
		t.Fatalf("missing action must be rejected, got %v", err)
	}

	_, err = svc.Dispatch(context.Background(), DispatchRequest{Action: "poem", Body: "text"})
	if !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}

	text, err := svc.Dispatch(context.Background(), DispatchRequest{Action: "Summarize", Body: "text"})
	if err != nil || text != "ok" {
		t.Fatalf("Dispatch = %q, %v", text, err)
	}
	if provider.calls() != 1 {
		t.Fatalf("expected one completion, got %d", provider.calls())
	}
}

func TestDispatchRefusesSentinelBody(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{reply: "unused"}
	svc := newService(fakeExtractor{}, provider, nil)

	_, err := svc.Dispatch(context.Background(), DispatchRequest{Action: "theses", Body: "  " + domain.ContentNotFound + "\n"})
	if !errors.Is(err, domain.ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
	if provider.calls() != 0 {
		t.Fatalf("completion API must not be called, got %d calls", provider.calls())
	}
}

func TestDispatchWithoutProvider(t *testing.T) {
	t.Parallel()

	svc := newService(fakeExtractor{}, nil, nil)
	_, err := svc.Dispatch(context.Background(), DispatchRequest{Action: "theses", Body: "text"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{reply: "Привет"}
	svc := newService(fakeExtractor{}, provider, nil)

	text, err := svc.Translate(context.Background(), "Hello")
	if err != nil || text != "Привет" {
		t.Fatalf("Translate = %q, %v", text, err)
	}
	if !strings.HasSuffix(provider.payloads[0].User, "Hello") {
		t.Fatalf("body missing from translation prompt: %q", provider.payloads[0].User)
	}

	if _, err := svc.Translate(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPublish(t *testing.T) {
	t.Parallel()

	publisher := &recordingPublisher{}
	svc := newService(fakeExtractor{}, nil, publisher)

	if err := svc.Publish(context.Background(), "post body"); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if len(publisher.texts) != 1 || publisher.texts[0] != "post body" {
		t.Fatalf("unexpected published texts: %v", publisher.texts)
	}

	if err := svc.Publish(context.Background(), " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	unconfigured := newService(fakeExtractor{}, nil, nil)
	if err := unconfigured.Publish(context.Background(), "post"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
