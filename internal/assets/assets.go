// Package assets хранит загруженные изображения товаров и выдаёт на них ссылки.
package assets

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrTooLarge         = errors.New("image is too large")
)

// Store - хранилище изображений. Delete для отсутствующего файла не возвращает ошибку.
type Store interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Upload - загруженный файл в том виде, в каком его прислал клиент
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Policy ограничения на загружаемые изображения
type Policy struct {
	MaxBytes int64
}

// prepare проверяет размер и тип файла. Если тип не передан клиентом, он определяется по содержимому.
func (p Policy) prepare(upload Upload) (io.Reader, string, error) {
	if p.MaxBytes > 0 && upload.Size > p.MaxBytes {
		return nil, "", ErrTooLarge
	}

	br := bufio.NewReaderSize(upload.Body, 512)
	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		head, err := br.Peek(512)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, "", err
		}
		contentType = http.DetectContentType(head)
	}
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}
	if !allowedImageTypes[contentType] {
		return nil, "", ErrUnsupportedImage
	}

	var r io.Reader = br
	if p.MaxBytes > 0 {
		r = io.LimitReader(br, p.MaxBytes+1)
	}
	return r, contentType, nil
}

// newName генерирует имя файла: случайный uuid и расширение исходного файла.
// Имя клиента целиком не используется, чтобы исключить коллизии и обход каталогов.
func newName(filename string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + safeExt(filename)
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
