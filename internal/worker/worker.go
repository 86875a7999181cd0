package worker

import (
	"context"
	"log/slog"
	"time"
)

// Job определяет интерфейс одного запуска конвейера.
type Job interface {
	RunOnce(ctx context.Context) error
}

// Worker запускает Job однократно или периодически.
// Запуски выполняются последовательно в горутине вызывающего; состояние между ними не хранится.
type Worker struct {
	job      Job
	interval time.Duration
	log      *slog.Logger
}

// New создает нового воркера. Нулевой interval означает один запуск.
func New(job Job, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		job:      job,
		interval: interval,
		log:      log.With(slog.String("component", "worker")),
	}
}

// Run выполняет Job. Без интервала возвращает результат единственного запуска.
// С интервалом запускает Job сразу и затем по таймеру до отмены контекста;
// ошибки отдельных запусков логируются и не останавливают цикл.
func (w *Worker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		return w.job.RunOnce(ctx)
	}
	w.log.Info("Scheduled digest worker started", slog.String("interval", w.interval.String()))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	runs, failures := 0, 0
loop:
	for {
		runs++
		if err := w.job.RunOnce(ctx); err != nil {
			failures++
			w.log.Error("Scheduled digest run failed",
				slog.Int("run", runs),
				slog.Any("error", err),
			)
		}
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			break loop
		}
	}
	w.log.Info("Worker stopping",
		slog.Int("runs", runs),
		slog.Int("failures", failures),
	)
	return nil
}

// GetInterval возвращает интервал запусков.
func (w *Worker) GetInterval() time.Duration { return w.interval }
