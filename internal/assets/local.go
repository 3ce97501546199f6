package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore хранит изображения в каталоге на диске
type LocalStore struct {
	log       *slog.Logger
	dir       string
	urlPrefix string
	policy    Policy
}

func NewLocalStore(log *slog.Logger, dir, urlPrefix string, policy Policy) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create assets dir %s: %w", dir, err)
	}
	return &LocalStore{
		log:       log,
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		policy:    policy,
	}, nil
}

// Dir каталог с файлами, нужен для раздачи статики
func (s *LocalStore) Dir() string {
	return s.dir
}

// URLPrefix префикс ссылок на файлы
func (s *LocalStore) URLPrefix() string {
	return s.urlPrefix
}

func (s *LocalStore) Save(ctx context.Context, upload Upload) (string, error) {
	const op = "assets.LocalStore.Save"

	r, _, err := s.policy.prepare(upload)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	name := newName(upload.Filename)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create file: %w", op, err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.policy.MaxBytes > 0 && n > s.policy.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Error("failed to remove partial file", slog.String("path", path), slog.Any("error", rmErr))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("image stored", slog.String("op", op), slog.String("file", name), slog.Int64("bytes", n))
	return s.urlPrefix + "/" + name, nil
}

// Delete удаляет файл по ссылке. Чужие ссылки и отсутствующие файлы игнорируются.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, s.urlPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("assets.LocalStore.Delete: %w", err)
	}
	return nil
}
