package usecase

import (
	"blogdigest/internal/adapter/parser"
	"blogdigest/internal/domain"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Result описывает итог одного запуска конвейера.
type Result struct {
	Total    int
	Recent   int
	Path     string
	Written  bool
	Duration time.Duration
}

// DigestUseCase реализует конвейер: загрузка, парсинг, фильтрация по окну,
// сериализация и запись выходной ленты.
type DigestUseCase struct {
	fetcher    FeedFetcher
	parser     FeedParser
	serializer FeedSerializer
	writer     FeedWriter
	log        *slog.Logger
	sourceURL  string
	outputPath string
	channel    domain.Channel
	now        func() time.Time
}

// Option настраивает DigestUseCase.
type Option func(*DigestUseCase)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(uc *DigestUseCase) { uc.now = now }
}

// NewDigestUseCase создает новый экземпляр UseCase для построения выходной ленты.
func NewDigestUseCase(
	fetcher FeedFetcher,
	parser FeedParser,
	serializer FeedSerializer,
	writer FeedWriter,
	log *slog.Logger,
	sourceURL string,
	outputPath string,
	channel domain.Channel,
	opts ...Option,
) *DigestUseCase {
	uc := &DigestUseCase{
		fetcher:    fetcher,
		parser:     parser,
		serializer: serializer,
		writer:     writer,
		log:        log,
		sourceURL:  sourceURL,
		outputPath: outputPath,
		channel:    channel,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// WithLogger возвращает копию UseCase, пишущую в log (например, с run_id запуска).
func (uc *DigestUseCase) WithLogger(log *slog.Logger) *DigestUseCase {
	clone := *uc
	clone.log = log
	return &clone
}

// Run выполняет один полный проход конвейера.
// Если в окне нет постов, файл не пишется и возвращается Result с Written=false.
// Ошибка любого этапа прерывает запуск; выходной файл при этом не изменяется.
func (uc *DigestUseCase) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{Path: uc.outputPath}
	log := uc.log.With(
		slog.String("component", "digest"),
		slog.String("url", uc.sourceURL),
	)

	log.Info("Digest run started")

	body, err := uc.fetcher.Fetch(ctx, uc.sourceURL)
	if err != nil {
		log.Error("Feed fetch failed",
			slog.String("stage", "fetch"),
			slog.String("error_kind", domain.Kind(err)),
			slog.Any("error", err),
		)
		return res, fmt.Errorf("fetch failed: %w", err)
	}

	log.Debug("Feed fetched successfully", slog.String("stage", "fetch"), slog.Int("bytes", len(body)))

	feed, err := uc.parser.Parse(ctx, bytes.NewReader(body))
	if err != nil {
		log.Error("Feed parsing failed",
			slog.String("stage", "parse"),
			slog.String("error_kind", domain.Kind(err)),
			slog.Any("error", err),
		)
		return res, fmt.Errorf("parse failed: %w", err)
	}
	res.Total = len(feed.Items)

	now := uc.now()
	recent := parser.FilterRecent(feed.Items, now)
	res.Recent = len(recent)

	log.Info("Feed filtered",
		slog.String("stage", "filter"),
		slog.Int("items_found", res.Total),
		slog.Int("items_recent", res.Recent),
		slog.Time("cutoff", now.Add(-parser.Window)),
	)

	if len(recent) == 0 {
		res.Duration = time.Since(start)
		log.Info("No recent posts, output left untouched", slog.Duration("duration", res.Duration))
		return res, nil
	}

	doc, err := uc.serializer.Serialize(uc.channel, recent)
	if err != nil {
		log.Error("Feed serialization failed",
			slog.String("stage", "serialize"),
			slog.String("error_kind", domain.Kind(err)),
			slog.Any("error", err),
		)
		return res, fmt.Errorf("serialize failed: %w", err)
	}

	if err := uc.writer.Write(uc.outputPath, doc); err != nil {
		log.Error("Feed write failed",
			slog.String("stage", "write"),
			slog.String("error_kind", domain.Kind(err)),
			slog.Any("error", err),
		)
		return res, fmt.Errorf("write failed: %w", err)
	}
	res.Written = true
	res.Duration = time.Since(start)

	log.Info("Digest run completed successfully",
		slog.Int("items_written", res.Recent),
		slog.String("path", uc.outputPath),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}
