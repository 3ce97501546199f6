package assets_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/belekbox-shop/internal/assets"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngUpload(name string) assets.Upload {
	return assets.Upload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(pngHeader)),
		Body:        bytes.NewReader(pngHeader),
	}
}

func TestLocalStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := assets.NewLocalStore(testLogger(), dir, "/uploads/products", assets.Policy{MaxBytes: 1024})
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), pngUpload("photo.PNG"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(ref, ".png"), "extension is kept and lower-cased")

	name := strings.TrimPrefix(ref, "/uploads/products/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Delete(context.Background(), ref))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление - не ошибка
	assert.NoError(t, store.Delete(context.Background(), ref))
}

func TestLocalStore_UniqueNames(t *testing.T) {
	store, err := assets.NewLocalStore(testLogger(), t.TempDir(), "/uploads/products", assets.Policy{})
	require.NoError(t, err)

	first, err := store.Save(context.Background(), pngUpload("same.png"))
	require.NoError(t, err)
	second, err := store.Save(context.Background(), pngUpload("same.png"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalStore_IgnoresTraversalInFilename(t *testing.T) {
	dir := t.TempDir()
	store, err := assets.NewLocalStore(testLogger(), dir, "/uploads/products", assets.Policy{})
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), pngUpload("../../etc/passwd"))
	require.NoError(t, err)

	name := strings.TrimPrefix(ref, "/uploads/products/")
	assert.NotContains(t, name, "/")
	_, err = os.Stat(filepath.Join(dir, name))
	assert.NoError(t, err)
}

func TestLocalStore_DeleteForeignReference(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	store, err := assets.NewLocalStore(testLogger(), dir, "/uploads/products", assets.Policy{})
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "/static/images/logo.png"))
	assert.NoError(t, store.Delete(context.Background(), "/uploads/products/../../keep.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestLocalStore_RejectsNonImage(t *testing.T) {
	store, err := assets.NewLocalStore(testLogger(), t.TempDir(), "/uploads/products", assets.Policy{})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), assets.Upload{
		Filename: "script.sh",
		Body:     strings.NewReader("#!/bin/sh\necho hi\n"),
	})
	assert.ErrorIs(t, err, assets.ErrUnsupportedImage)
}

func TestLocalStore_DetectsTypeWhenMissing(t *testing.T) {
	store, err := assets.NewLocalStore(testLogger(), t.TempDir(), "/uploads/products", assets.Policy{})
	require.NoError(t, err)

	upload := pngUpload("photo.png")
	upload.ContentType = ""
	_, err = store.Save(context.Background(), upload)
	assert.NoError(t, err)
}

func TestLocalStore_TooLarge(t *testing.T) {
	dir := t.TempDir()
	store, err := assets.NewLocalStore(testLogger(), dir, "/uploads/products", assets.Policy{MaxBytes: 4})
	require.NoError(t, err)

	upload := pngUpload("big.png")
	upload.Size = 0 // размер неизвестен, проверка при записи
	_, err = store.Save(context.Background(), upload)
	assert.ErrorIs(t, err, assets.ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial file must be removed")
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *in.Key)
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_SaveAndDelete(t *testing.T) {
	client := newFakeS3()
	store := assets.NewS3StoreWithClient(client, assets.S3Options{
		Bucket:    "belekbox",
		Region:    "eu-central-1",
		KeyPrefix: "products/",
	}, assets.Policy{MaxBytes: 1024})

	ref, err := store.Save(context.Background(), pngUpload("box.jpg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "https://belekbox.s3.eu-central-1.amazonaws.com/products/"))

	key := strings.TrimPrefix(ref, "https://belekbox.s3.eu-central-1.amazonaws.com/")
	assert.Equal(t, pngHeader, client.objects[key])
	assert.Equal(t, "image/png", client.types[key])

	require.NoError(t, store.Delete(context.Background(), ref))
	assert.Equal(t, []string{key}, client.deleted)

	// чужая ссылка не трогает бакет
	require.NoError(t, store.Delete(context.Background(), "/uploads/products/old.png"))
	assert.Len(t, client.deleted, 1)
}
