package logger

import (
	"blogdigest/internal/config"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New создает и настраивает логгер приложения на основе конфигурации.
// Без файлов в конфигурации все сообщения пишутся в stderr. Файлы логов
// ротируются через lumberjack. Возвращаемая функция закрывает открытые файлы.
func New(cfg config.LoggerConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	logLevel := parseLogLevel(cfg.Level)
	var closers []io.Closer
	logWriter := stderr
	if cfg.File != "" {
		w, err := rotatingFile(cfg, cfg.File)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, w)
		logWriter = w
	}
	errorWriter := logWriter
	if cfg.ErrorFile != "" {
		w, err := rotatingFile(cfg, cfg.ErrorFile)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, w)
		errorWriter = w
	}
	handler := NewLevelDispatcherHandler(logWriter, errorWriter, &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	})
	closeAll := func() error {
		var firstErr error
		for _, c := range closers {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return slog.New(handler), closeAll, nil
}

func rotatingFile(cfg config.LoggerConfig, path string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}, nil
}

// parseLogLevel преобразует строковое представление уровня логирования в тип slog.Level.
// Поддерживает уровни: debug, info, warn, error.
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelDispatcherHandler реализует slog.Handler с маршрутизацией сообщений по уровням.
// Сообщения уровня ERROR и выше направляются в errorHandler, остальные - в defaultHandler.
type LevelDispatcherHandler struct {
	defaultHandler slog.Handler
	errorHandler   slog.Handler
}

// NewLevelDispatcherHandler создает новый обработчик логов с маршрутизацией по уровням.
// Если defaultOut и errorOut совпадают, оба обработчика пишут через общий мьютекс.
func NewLevelDispatcherHandler(defaultOut, errorOut io.Writer, opts *slog.HandlerOptions) *LevelDispatcherHandler {
	def := NewReadableHandler(defaultOut, opts)
	errH := NewReadableHandler(errorOut, opts)
	if defaultOut == errorOut {
		errH.mu = def.mu
	}
	return &LevelDispatcherHandler{
		defaultHandler: def,
		errorHandler:   errH,
	}
}

func (h *LevelDispatcherHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}

func (h *LevelDispatcherHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errorHandler.Handle(ctx, r)
	}
	return h.defaultHandler.Handle(ctx, r)
}

func (h *LevelDispatcherHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
		errorHandler:   h.errorHandler.WithAttrs(attrs),
	}
}

func (h *LevelDispatcherHandler) WithGroup(name string) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithGroup(name),
		errorHandler:   h.errorHandler.WithGroup(name),
	}
}

// ReadableHandler реализует slog.Handler с удобочитаемым форматированием логов:
//
//	[15:04:05.000] INFO [component] (op) <file.go:42>: message | key=value, key=value
type ReadableHandler struct {
	w      io.Writer
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
}

// NewReadableHandler создает новый обработчик с читаемым форматированием.
// Если opts равен nil, используются настройки по умолчанию.
func NewReadableHandler(w io.Writer, opts *slog.HandlerOptions) *ReadableHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ReadableHandler{w: w, opts: opts, mu: &sync.Mutex{}}
}

func (h *ReadableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle форматирует и записывает запись лога.
// Атрибуты component и op выносятся в префикс, остальные перечисляются после сообщения
// в порядке добавления: сначала накопленные через WithAttrs, затем атрибуты записи.
func (h *ReadableHandler) Handle(ctx context.Context, r slog.Record) error {
	var component, operation string
	var attrParts []string
	collect := func(a slog.Attr, prefix string) {
		a.Value = a.Value.Resolve()
		switch {
		case prefix == "" && a.Key == "component":
			component = a.Value.String()
		case prefix == "" && a.Key == "op":
			operation = a.Value.String()
		case a.Equal(slog.Attr{}):
		default:
			attrParts = append(attrParts, h.formatAttr(prefix, a))
		}
	}
	for _, a := range h.attrs {
		collect(a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a, h.prefix)
		return true
	})

	var line strings.Builder
	line.WriteString(fmt.Sprintf("[%s] %s", r.Time.Format("15:04:05.000"), formatLevel(r.Level)))
	if component != "" {
		line.WriteString(fmt.Sprintf(" [%s]", component))
	}
	if operation != "" {
		line.WriteString(fmt.Sprintf(" (%s)", operation))
	}
	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		line.WriteString(fmt.Sprintf(" <%s:%d>", filepath.Base(frame.File), frame.Line))
	}
	line.WriteString(": ")
	line.WriteString(r.Message)
	if len(attrParts) > 0 {
		line.WriteString(" | ")
		line.WriteString(strings.Join(attrParts, ", "))
	}
	line.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line.String())
	return err
}

func formatLevel(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "UNKNW"
	}
}

// formatAttr форматирует атрибут лога в зависимости от его типа и ключа.
// Ошибки заключаются в кавычки, длинные URL сокращаются, длительности округляются до миллисекунд.
func (h *ReadableHandler) formatAttr(prefix string, attr slog.Attr) string {
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	switch {
	case attr.Value.Kind() == slog.KindGroup:
		parts := make([]string, 0, len(attr.Value.Group()))
		for _, a := range attr.Value.Group() {
			parts = append(parts, h.formatAttr(key, a))
		}
		return strings.Join(parts, ", ")
	case attr.Key == "error":
		return fmt.Sprintf("%s=%q", key, attr.Value.String())
	case attr.Key == "url":
		return fmt.Sprintf("%s=%s", key, shortenURL(attr.Value.String()))
	case attr.Value.Kind() == slog.KindDuration:
		return fmt.Sprintf("%s=%s", key, attr.Value.Duration().Round(time.Millisecond))
	default:
		return fmt.Sprintf("%s=%s", key, attr.Value.String())
	}
}

// shortenURL сокращает URL длиннее 50 символов до схемы и домена.
func shortenURL(url string) string {
	if len(url) > 50 {
		parts := strings.Split(url, "/")
		if len(parts) >= 3 {
			return fmt.Sprintf("%s//%s/...", parts[0], parts[2])
		}
	}
	return url
}

func (h *ReadableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *ReadableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.prefix != "" {
		clone.prefix = h.prefix + "." + name
	} else {
		clone.prefix = name
	}
	return &clone
}
