package provider

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"
	"FinNotify/internal/service/cache"
	"FinNotify/internal/service/ratelimit"
	xhttp "FinNotify/pkg/http"
	"FinNotify/pkg/logger"
	"FinNotify/pkg/metrics"
)

// secretParams never take part in cache keys or logs.
var secretParams = map[string]struct{}{"apikey": {}, "token": {}}

// Decoder validates and unpacks a raw response body. A decoder error
// keeps the body out of the cache.
type Decoder func(body []byte) error

// Base is the shared foundation of the provider clients: one GET path
// with rate limiting, response caching, bounded retry and metrics.
type Base struct {
	name    string
	baseURL string
	client  *xhttp.Client

	limiter  *ratelimit.Limiter
	capacity float64
	refill   float64

	cache cache.BytesCache
	ttl   time.Duration

	retries int
	backoff time.Duration

	metrics repository.Metrics
	log     *logger.Logger
}

type Option func(*Base)

// New builds a provider base for name rooted at baseURL.
func New(name, baseURL string, opts ...Option) *Base {
	b := &Base{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache.Nop{},
		backoff: 200 * time.Millisecond,
		metrics: metrics.Nop{},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		b.client = xhttp.NewClient()
	}
	return b
}

func (b *Base) Name() string { return b.name }

// Get fetches path with query, hands the body to decode and caches it on success.
// Every failure wraps models.ErrDataUnavailable.
func (b *Base) Get(ctx context.Context, family, path string, query url.Values, decode Decoder) error {
	start := time.Now()
	err := b.get(ctx, family, path, query, decode)
	b.metrics.RecordFetch(b.name, family, time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", b.name, family, models.ErrDataUnavailable, err)
	}
	return nil
}

func (b *Base) get(ctx context.Context, family, path string, query url.Values, decode Decoder) error {
	key := b.cacheKey(path, query)
	if body, ok, err := b.cache.GetBytes(ctx, key); err != nil {
		b.log.Warn("provider cache read failed", logger.String("provider", b.name), logger.Error(err))
	} else if ok {
		if err := decode(body); err == nil {
			b.log.Debug("provider cache hit", logger.String("provider", b.name), logger.String("family", family))
			return nil
		}
	}

	var (
		body []byte
		err  error
	)
	for attempt := 0; ; attempt++ {
		if err = b.limiter.Wait(ctx, b.name, b.capacity, b.refill); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		body, err = b.client.GetBytes(ctx, b.baseURL+path, query)
		if err == nil || attempt >= b.retries || !xhttp.IsTemporary(err) || ctx.Err() != nil {
			break
		}
		wait := time.Duration(attempt+1) * b.backoff
		b.log.Warn("provider request failed, retrying",
			logger.String("provider", b.name),
			logger.String("family", family),
			logger.Int("attempt", attempt+1),
			logger.Duration("backoff_ms", wait),
			logger.Error(err),
		)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}

	if err := decode(body); err != nil {
		return err
	}
	if b.ttl > 0 {
		if err := b.cache.SetBytes(ctx, key, body, b.ttl); err != nil {
			b.log.Warn("provider cache write failed", logger.String("provider", b.name), logger.Error(err))
		}
	}
	return nil
}

// cacheKey is provider:path?sorted-query with credentials dropped.
func (b *Base) cacheKey(path string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		if _, secret := secretParams[strings.ToLower(k)]; !secret {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(b.name)
	sb.WriteByte(':')
	sb.WriteString(path)
	for i, k := range keys {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(query[k], ","))
	}
	return sb.String()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithClient sets the HTTP client.
func WithClient(c *xhttp.Client) Option {
	return func(b *Base) { b.client = c }
}

// WithRateLimit throttles requests to rpm per minute through l. rpm <= 0 disables it.
func WithRateLimit(l *ratelimit.Limiter, rpm float64) Option {
	return func(b *Base) {
		if l == nil || rpm <= 0 {
			return
		}
		b.limiter = l
		b.capacity, b.refill = ratelimit.PerMinute(rpm)
	}
}

// WithCache caches successful bodies for ttl.
func WithCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(b *Base) {
		if c != nil {
			b.cache, b.ttl = c, ttl
		}
	}
}

// WithRetry retries transient failures up to n times with linear backoff.
func WithRetry(n int, backoff time.Duration) Option {
	return func(b *Base) {
		b.retries = n
		if backoff > 0 {
			b.backoff = backoff
		}
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(b *Base) {
		if m != nil {
			b.metrics = m
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(b *Base) {
		if l != nil {
			b.log = l
		}
	}
}
