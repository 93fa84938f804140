// Package content fetches the quote and image that make up one
// broadcast. Upstream failures never surface to callers: every exported
// operation substitutes a fixed fallback value, so a cycle always has
// something to send.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultQuoteURL    = "http://api.forismatic.com/api/1.0/"
	defaultImageURL    = "https://api.unsplash.com/photos/random"
	defaultHTTPTimeout = 10 * time.Second

	// maxBodyBytes caps upstream responses; both APIs return small JSON.
	maxBodyBytes = 1 << 20
)

// FallbackQuote is used whenever the quote service is unreachable or
// returns something unusable. Empty author means "unknown".
var FallbackQuote = Quote{
	Text:   "Каждое утро - это новая возможность изменить свою жизнь к лучшему!",
	Author: "",
}

// FallbackImageURL is used whenever the image service fails.
const FallbackImageURL = "https://images.unsplash.com/photo-1496903029469-38a1dabe9079"

// Quote is a quotation with its (possibly unknown) author.
type Quote struct {
	Text   string
	Author string
}

// Bundle is the immutable content of one broadcast cycle. It is fetched
// once and shared read-only across the whole fan-out.
type Bundle struct {
	Quote    Quote
	ImageURL string
}

// Provider fetches broadcast content from the quote and image services.
type Provider struct {
	http     *http.Client
	log      *zap.Logger
	quoteURL string
	imageURL string
	imageKey string
}

// Option overrides a Provider default (used by tests to point at stubs).
type Option func(*Provider)

// WithQuoteURL overrides the quote service endpoint.
func WithQuoteURL(u string) Option { return func(p *Provider) { p.quoteURL = u } }

// WithImageURL overrides the image service endpoint.
func WithImageURL(u string) Option { return func(p *Provider) { p.imageURL = u } }

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(p *Provider) { p.http = c } }

// New creates a Provider. imageKey is the Unsplash API access key.
func New(log *zap.Logger, imageKey string, opts ...Option) *Provider {
	p := &Provider{
		http:     &http.Client{Timeout: defaultHTTPTimeout},
		log:      log,
		quoteURL: defaultQuoteURL,
		imageURL: defaultImageURL,
		imageKey: imageKey,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Quote returns the quote of the day, or FallbackQuote on any failure.
func (p *Provider) Quote(ctx context.Context) Quote {
	q, err := p.fetchQuote(ctx)
	if err != nil {
		p.log.Warn("quote fetch failed, using fallback", zap.Error(err))
		return FallbackQuote
	}
	return q
}

// ImageURL returns an image URL for the topic, or FallbackImageURL on
// any failure.
func (p *Provider) ImageURL(ctx context.Context, topic string) string {
	u, err := p.fetchImageURL(ctx, topic)
	if err != nil {
		p.log.Warn("image fetch failed, using fallback", zap.Error(err), zap.String("topic", topic))
		return FallbackImageURL
	}
	return u
}

// Bundle fetches the quote and the image concurrently and returns the
// content for one broadcast cycle. It never fails.
func (p *Provider) Bundle(ctx context.Context, topic string) Bundle {
	var (
		wg       sync.WaitGroup
		quote    Quote
		imageURL string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quote = p.Quote(ctx)
	}()
	go func() {
		defer wg.Done()
		imageURL = p.ImageURL(ctx, topic)
	}()
	wg.Wait()

	return Bundle{Quote: quote, ImageURL: imageURL}
}

func (p *Provider) fetchQuote(ctx context.Context) (Quote, error) {
	u := p.quoteURL + "?method=getQuote&format=json&lang=ru"
	body, err := p.get(ctx, u)
	if err != nil {
		return Quote{}, err
	}

	var resp struct {
		QuoteText   string `json:"quoteText"`
		QuoteAuthor string `json:"quoteAuthor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	if resp.QuoteText == "" {
		return Quote{}, fmt.Errorf("quote response missing text")
	}
	return Quote{Text: resp.QuoteText, Author: resp.QuoteAuthor}, nil
}

func (p *Provider) fetchImageURL(ctx context.Context, topic string) (string, error) {
	u := fmt.Sprintf("%s?query=%s&client_id=%s",
		p.imageURL, url.QueryEscape(topic), url.QueryEscape(p.imageKey))
	body, err := p.get(ctx, u)
	if err != nil {
		return "", err
	}

	var resp struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if resp.URLs.Regular == "" {
		return "", fmt.Errorf("image response missing urls.regular")
	}
	return resp.URLs.Regular, nil
}

func (p *Provider) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
