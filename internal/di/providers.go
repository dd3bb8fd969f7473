package di

import (
	"context"
	"fmt"
	"time"

	"FinNotify/internal/domain/repository"
	"FinNotify/internal/handler/api"
	"FinNotify/internal/service/alphavantage"
	"FinNotify/internal/service/cache"
	"FinNotify/internal/service/coingecko"
	"FinNotify/internal/service/finnhub"
	"FinNotify/internal/service/notify"
	"FinNotify/internal/service/provider"
	"FinNotify/internal/service/ratelimit"
	"FinNotify/internal/services/rules"
	"FinNotify/internal/usecase"
	"FinNotify/pkg/config"
	xhttp "FinNotify/pkg/http"
	pkgkafka "FinNotify/pkg/kafka"
	"FinNotify/pkg/logger"
	"FinNotify/pkg/metrics"
	"FinNotify/pkg/server"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(nil)
}

func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.HTTP.Timeout))
}

// ProvideCache builds the provider response cache for cache.backend.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.BytesCache, func(), error) {
	var c cache.BytesCache
	switch cfg.Cache.Backend {
	case "none":
		c = cache.Nop{}
	case "memory":
		c = cache.NewTTLCache(cfg.Cache.MaxSize)
	case "redis", "layered":
		rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("cache: %w", err)
		}
		c = rc
		if cfg.Cache.Backend == "layered" {
			c = cache.NewLayered(cache.NewTTLCache(cfg.Cache.MaxSize), rc, cfg.Cache.TTL)
		}
	default:
		return nil, nil, fmt.Errorf("cache: unknown backend %q", cfg.Cache.Backend)
	}

	l.Debug("provider cache ready", logger.String("backend", cfg.Cache.Backend), logger.Duration("ttl_ms", cfg.Cache.TTL))
	cleanup := func() {
		if err := c.Close(); err != nil {
			l.Warn("cache close failed", logger.Error(err))
		}
	}
	return c, cleanup, nil
}

func providerBase(
	name, baseURL string,
	rpm float64,
	cfg *config.Config,
	client *xhttp.Client,
	limiter *ratelimit.Limiter,
	c cache.BytesCache,
	m repository.Metrics,
	l *logger.Logger,
) *provider.Base {
	return provider.New(name, baseURL,
		provider.WithClient(client),
		provider.WithRateLimit(limiter, rpm),
		provider.WithCache(c, cfg.Cache.TTL),
		provider.WithRetry(cfg.HTTP.Retries, cfg.HTTP.RetryBackoff),
		provider.WithMetrics(m),
		provider.WithLogger(l.With(logger.String("provider", name))),
	)
}

func ProvideAlphaVantage(
	cfg *config.Config,
	client *xhttp.Client,
	limiter *ratelimit.Limiter,
	c cache.BytesCache,
	m repository.Metrics,
	l *logger.Logger,
) *alphavantage.Client {
	av := cfg.AlphaVantage
	base := providerBase(alphavantage.Name, av.BaseURL, av.RequestsPerMinute, cfg, client, limiter, c, m, l)
	return alphavantage.New(base, av.APIKey,
		alphavantage.WithInterval(av.Interval),
		alphavantage.WithSeriesType(av.SeriesType),
	)
}

func ProvideFinnhub(
	cfg *config.Config,
	client *xhttp.Client,
	limiter *ratelimit.Limiter,
	c cache.BytesCache,
	m repository.Metrics,
	l *logger.Logger,
) *finnhub.Client {
	fh := cfg.Finnhub
	base := providerBase(finnhub.Name, fh.BaseURL, fh.RequestsPerMinute, cfg, client, limiter, c, m, l)
	return finnhub.New(base, fh.APIKey, fh.Resolution)
}

func ProvideCoinGecko(
	cfg *config.Config,
	client *xhttp.Client,
	limiter *ratelimit.Limiter,
	c cache.BytesCache,
	m repository.Metrics,
	l *logger.Logger,
) *coingecko.Client {
	cg := cfg.CoinGecko
	return coingecko.New(providerBase(coingecko.Name, cg.BaseURL, cg.RequestsPerMinute, cfg, client, limiter, c, m, l))
}

// ProvideKafkaSink returns nil when the kafka sink is not enabled.
func ProvideKafkaSink(cfg *config.Config, l *logger.Logger) (*notify.Kafka, func(), error) {
	if !cfg.HasSink(config.SinkKafka) {
		return nil, func() {}, nil
	}
	k := cfg.Notify.Kafka
	producer, err := pkgkafka.NewProducer(k.Topic,
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithWriteTimeout(k.WriteTimeout),
		pkgkafka.WithBatchTimeout(10*time.Millisecond),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	sink := notify.NewKafka(producer)
	cleanup := func() {
		if err := sink.Close(); err != nil {
			l.Warn("kafka producer close failed", logger.Error(err))
		}
	}
	return sink, cleanup, nil
}

// ProvideEvaluationPublisher ships evaluations to Kafka when the sink is on.
func ProvideEvaluationPublisher(k *notify.Kafka) repository.EvaluationPublisher {
	if k == nil {
		return notify.NopPublisher{}
	}
	return k
}

// ProvideNotifier fans out to every sink named in notify.sinks, in order.
func ProvideNotifier(
	cfg *config.Config,
	client *xhttp.Client,
	k *notify.Kafka,
	m repository.Metrics,
	l *logger.Logger,
) (repository.Notifier, error) {
	sinks := make([]repository.Notifier, 0, len(cfg.Notify.Sinks))
	for _, name := range cfg.Notify.Sinks {
		switch name {
		case config.SinkDesktop:
			sinks = append(sinks, notify.NewDesktop(l, notify.WithIconClient(client)))
		case config.SinkTelegram:
			tg := cfg.Notify.Telegram
			sinks = append(sinks, notify.NewTelegram(client, tg.BaseURL, tg.BotToken, tg.ChatID))
		case config.SinkKafka:
			sinks = append(sinks, k)
		case config.SinkLog:
			sinks = append(sinks, notify.NewLog(l))
		default:
			return nil, fmt.Errorf("unknown notification sink %q", name)
		}
	}
	return notify.NewMulti(l, m, sinks...), nil
}

func ProvideRules(cfg *config.Config) *rules.Evaluator {
	th := rules.DefaultThresholds()
	th.OverboughtLevel = cfg.Rules.OverboughtLevel
	th.SMAMargin = cfg.Rules.SMAMargin
	th.ResistanceMargin = cfg.Rules.ResistanceMargin
	th.SupportMargin = cfg.Rules.SupportMargin
	th.AggregateShare = cfg.Rules.AggregateThreshold
	th.StrictResistance = cfg.Rules.StrictResistance
	return rules.New(th)
}

func ProvideSnapshotFetcher(
	cfg *config.Config,
	av *alphavantage.Client,
	fh *finnhub.Client,
	l *logger.Logger,
) *usecase.SnapshotFetcher {
	return usecase.NewSnapshotFetcher(av, fh, cfg.AlphaVantage.SMAPeriods, cfg.AlphaVantage.RSIPeriod, l)
}

func ProvideStockNotifier(
	cfg *config.Config,
	fetcher *usecase.SnapshotFetcher,
	evaluator *rules.Evaluator,
	sink repository.Notifier,
	pub repository.EvaluationPublisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.StockNotifier {
	return usecase.NewStockNotifier(
		fetcher,
		evaluator,
		sink,
		pub,
		usecase.TimerSleeper{},
		m,
		l,
		cfg.Watch.Stocks,
		cfg.Notify.Icons,
		cfg.Notify.Delay,
	)
}

func ProvideCryptoReporter(
	cfg *config.Config,
	cg *coingecko.Client,
	sink repository.Notifier,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.CryptoReporter {
	return usecase.NewCryptoReporter(cg, sink, m, l, cfg.Watch.Coins, cfg.CoinGecko.Currency)
}

func ProvideHTTPHandler(
	l *logger.Logger,
	stocks *usecase.StockNotifier,
	fh *finnhub.Client,
	crypto *usecase.CryptoReporter,
) xhttp.Handler {
	return api.NewSignalsEchoHandler(l, stocks, fh, crypto, ratelimit.New())
}

func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	rec *metrics.Recorder,
	stocks *usecase.StockNotifier,
	crypto *usecase.CryptoReporter,
	h xhttp.Handler,
) *server.App {
	return server.New(cfg, l, rec, stocks, crypto, h)
}
