package writer

import (
	"blogdigest/internal/domain"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileWriter сохраняет выходную ленту на диск.
// Запись атомарна: данные пишутся во временный файл в каталоге назначения
// и переименовываются поверх целевого файла.
type FileWriter struct {
	log *slog.Logger
}

// NewFileWriter создает новый FileWriter.
func NewFileWriter(log *slog.Logger) *FileWriter {
	return &FileWriter{log: log.With(slog.String("component", "writer"))}
}

// Write создает недостающие каталоги и заменяет файл path содержимым data.
// При ошибке существующий файл остается нетронутым. Ошибки оборачивают domain.ErrWrite.
func (w *FileWriter) Write(path string, data []byte) (err error) {
	log := w.log.With(slog.String("path", path))
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("Failed to create output directory", slog.Any("error", err))
		return fmt.Errorf("%w: failed to create directory %s: %w", domain.ErrWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		log.Error("Failed to create temporary file", slog.Any("error", err))
		return fmt.Errorf("%w: failed to create temporary file in %s: %w", domain.ErrWrite, dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := os.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Warn("Failed to remove temporary file", slog.String("tmp", tmpName), slog.Any("error", rmErr))
			}
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		log.Error("Failed to write temporary file", slog.Any("error", err))
		return fmt.Errorf("%w: failed to write %s: %w", domain.ErrWrite, tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		log.Error("Failed to sync temporary file", slog.Any("error", err))
		return fmt.Errorf("%w: failed to sync %s: %w", domain.ErrWrite, tmpName, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		log.Error("Failed to set file mode", slog.Any("error", err))
		return fmt.Errorf("%w: failed to chmod %s: %w", domain.ErrWrite, tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		log.Error("Failed to close temporary file", slog.Any("error", err))
		return fmt.Errorf("%w: failed to close %s: %w", domain.ErrWrite, tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		log.Error("Failed to move file into place", slog.Any("error", err))
		return fmt.Errorf("%w: failed to rename %s to %s: %w", domain.ErrWrite, tmpName, path, err)
	}
	log.Info("Feed written", slog.Int("bytes", len(data)))
	return nil
}
