package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ondrasimku/info-service-go/internal/domain"
)

// LocalStorage keeps the info document in a single JSON file.
type LocalStorage struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func NewLocalStorage(path string, logger *slog.Logger) *LocalStorage {
	return &LocalStorage{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

func (s *LocalStorage) Path() string {
	return s.path
}

func (s *LocalStorage) Load(ctx context.Context) (domain.Info, error) {
	info, err := s.read()
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.logger.Info("Store file missing, writing defaults", "path", s.path)
		case errors.Is(err, fs.ErrPermission):
			s.logger.Warn("Store file unreadable, writing defaults", "path", s.path, "error", err)
		default:
			s.logger.Warn("Store file corrupt, writing defaults", "path", s.path, "error", err)
		}

		info = domain.DefaultInfo(s.now())
		if err := s.Save(ctx, info); err != nil {
			return info, err
		}
		return info, nil
	}

	repaired := false
	if info.UpdatedDate == "" {
		info.UpdatedDate = domain.Timestamp(s.now())
		repaired = true
	}
	if info.Title == "" {
		info.Title = domain.DefaultTitle
		repaired = true
	}
	if info.FileURL == "" {
		info.FileURL = domain.DefaultFileURL
		repaired = true
	}

	if repaired {
		s.logger.Info("Store file incomplete, filling missing fields", "path", s.path)
		if err := s.Save(ctx, info); err != nil {
			return info, err
		}
	}

	return info, nil
}

func (s *LocalStorage) read() (domain.Info, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Info{}, err
	}

	var raw *domain.Info
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Info{}, fmt.Errorf("failed to parse store file: %w", err)
	}
	if raw == nil {
		return domain.Info{}, fmt.Errorf("store file holds no document")
	}

	return *raw, nil
}

// Save writes info through a temporary file renamed over the target, so
// readers never observe a partially written document.
func (s *LocalStorage) Save(ctx context.Context, info domain.Info) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode info: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.New().String()))
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}
