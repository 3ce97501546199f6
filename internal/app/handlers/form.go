package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/linemk/belekbox-shop/internal/assets"
)

// maxFormMemory - часть multipart-формы, которая держится в памяти, остальное уходит во временные файлы
const maxFormMemory = 8 << 20

// parseForm принимает как multipart, так и urlencoded формы
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// formValue возвращает значение поля и признак того, что поле было передано
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	if vs, ok := r.PostForm[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

func formInt(r *http.Request, key string) (*int, error) {
	raw, ok := formValue(r, key)
	if !ok {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return &v, nil
}

func formBool(r *http.Request, key string) (*bool, error) {
	raw, ok := formValue(r, key)
	if !ok {
		return nil, nil
	}
	v, err := parseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return &v, nil
}

// parseBool понимает также "on"/"off" и "yes"/"no" от html-чекбоксов
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}

func formString(r *http.Request, key string) *string {
	raw, ok := formValue(r, key)
	if !ok {
		return nil
	}
	return &raw
}

// formImage достаёт необязательный файл изображения. Пустое поле равносильно отсутствию файла.
// Файл нужно закрыть вызовом close.
func formImage(r *http.Request, key string) (upload *assets.Upload, closeFn func(), err error) {
	closeFn = func() {}
	if r.MultipartForm == nil {
		return nil, closeFn, nil
	}

	file, header, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, closeFn, nil
	}
	if err != nil {
		return nil, closeFn, err
	}
	if header.Filename == "" || header.Size == 0 {
		_ = file.Close()
		return nil, closeFn, nil
	}

	return uploadFromHeader(file, header), func() { _ = file.Close() }, nil
}

func uploadFromHeader(file multipart.File, header *multipart.FileHeader) *assets.Upload {
	return &assets.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}
