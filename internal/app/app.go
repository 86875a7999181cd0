package app

import (
	"blogdigest/internal/adapter/fetcher"
	"blogdigest/internal/adapter/parser"
	"blogdigest/internal/adapter/serializer"
	"blogdigest/internal/adapter/writer"
	"blogdigest/internal/config"
	"blogdigest/internal/domain"
	"blogdigest/internal/logger"
	"blogdigest/internal/usecase"
	"blogdigest/internal/worker"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
)

// App связывает компоненты blogdigest: логгер, загрузчик, парсер,
// сериализатор, запись на диск и воркер расписания.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	closeLog func() error
	digest   *usecase.DigestUseCase
	worker   *worker.Worker
	stdout   io.Writer
}

// Option настраивает App.
type Option func(*appOptions)

type appOptions struct {
	digestOpts []usecase.Option
}

// WithDigestOptions передает опции в DigestUseCase (например, WithClock в тестах).
func WithDigestOptions(opts ...usecase.Option) Option {
	return func(o *appOptions) { o.digestOpts = append(o.digestOpts, opts...) }
}

// New создает и инициализирует приложение по проверенной конфигурации.
// Сообщения оператору пишутся в stdout, логи - в stderr или файлы из конфигурации.
func New(cfg *config.Config, stdout, stderr io.Writer, opts ...Option) (*App, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}
	appLogger, closeLog, err := logger.New(cfg.Logger, stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	httpFetcher := fetcher.NewHTTPFetcher(appLogger, cfg.FetchTimeout(),
		fetcher.WithUserAgent(cfg.Source.UserAgent),
		fetcher.WithMaxBodyBytes(cfg.Source.MaxBodyBytes),
	)

	xmlParser := parser.NewXMLParser(appLogger, parser.WithSkipInvalidDates(cfg.Parser.SkipInvalidDates))

	rssSerializer := serializer.NewRSSSerializer(appLogger)

	fileWriter := writer.NewFileWriter(appLogger)

	channel := domain.Channel{
		Title:       cfg.Channel.Title,
		Link:        cfg.Channel.Link,
		Description: cfg.Channel.Description,
	}
	digest := usecase.NewDigestUseCase(
		httpFetcher,
		xmlParser,
		rssSerializer,
		fileWriter,
		appLogger,
		cfg.Source.URL,
		cfg.Output.Path,
		channel,
		o.digestOpts...,
	)

	a := &App{
		config:   cfg,
		logger:   appLogger,
		closeLog: closeLog,
		digest:   digest,
		stdout:   stdout,
	}
	a.worker = worker.New(a, cfg.Interval(), appLogger)
	return a, nil
}

// Run запускает конвейер однократно или по расписанию до получения SIGINT/SIGTERM.
// Возвращает ошибку единственного запуска; в режиме расписания ошибки только логируются.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.logger.Info("Starting blogdigest",
		slog.String("component", "app"),
		slog.String("source", a.config.Source.URL),
		slog.String("output", a.config.Output.Path),
		slog.String("interval", a.worker.GetInterval().String()),
	)
	return a.worker.Run(ctx)
}

// RunOnce выполняет один проход конвейера и сообщает результат оператору.
// Реализует worker.Job.
func (a *App) RunOnce(ctx context.Context) error {
	runLog := a.logger.With(slog.String("run_id", uuid.NewString()))
	res, err := a.digest.WithLogger(runLog).Run(ctx)
	if err != nil {
		return err
	}
	if !res.Written {
		fmt.Fprintln(a.stdout, "No recent posts found in the last 24 hours.")
		return nil
	}
	fmt.Fprintf(a.stdout, "RSS feed created: %s (%d items)\n", res.Path, res.Recent)
	return nil
}

// Close освобождает ресурсы приложения (файлы логов).
func (a *App) Close() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}
