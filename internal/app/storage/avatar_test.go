package storage_test

import (
	"context"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anychat/internal/app/storage"
	"anychat/internal/pkg/errs"
)

// memoryStore is an in-memory StorageService.
type memoryStore struct {
	objects  map[string][]byte
	presigns []string

	// truncate drops the last byte of every upload.
	truncate bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) PresignUpload(_ context.Context, key, mimeType string, fileSize int64, d time.Duration) (string, error) {
	m.presigns = append(m.presigns, key)
	return "https://s3.example.com/bucket/" + key + "?sig=put", nil
}

func (m *memoryStore) PresignDownload(_ context.Context, key string, d time.Duration) (string, error) {
	return "https://s3.example.com/bucket/" + key + "?sig=get", nil
}

func (m *memoryStore) Upload(_ context.Context, key, mimeType string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if m.truncate && len(b) > 0 {
		b = b[:len(b)-1]
	}
	m.objects[key] = b
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) GetObjectMetadata(_ context.Context, key string) (map[string]string, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, errs.NewError(errs.ErrEntityNotFound, "File")
	}
	return map[string]string{storage.MetadataContentLength: strconv.Itoa(len(b))}, nil
}

func TestValidateFileSize(t *testing.T) {
	assert.Nil(t, storage.ValidateFileSize(1024))
	assert.Equal(t, errs.ErrInvalidParams, storage.ValidateFileSize(0).Code)
	assert.Equal(t, errs.ErrFileSizeTooLarge, storage.ValidateFileSize(storage.MaxAvatarSize+1).Code)
}

func TestValidateFileType(t *testing.T) {
	assert.Nil(t, storage.ValidateFileType("me.JPG", "image/jpeg"))
	assert.Nil(t, storage.ValidateFileType("me.webp", "IMAGE/WEBP"))

	for _, tt := range []struct{ name, mime string }{
		{"me.png", "image/jpeg"},
		{"me", "image/png"},
		{"me.svg", "image/svg+xml"},
		{"me.exe", "application/octet-stream"},
	} {
		err := storage.ValidateFileType(tt.name, tt.mime)
		require.NotNil(t, err, tt.name)
		assert.Equal(t, errs.ErrFileTypeInvalid, err.Code)
	}
}

func TestAvatarKey(t *testing.T) {
	key := storage.AvatarKey("users/u1", "Me.PNG")
	assert.True(t, strings.HasPrefix(key, "avatars/users/u1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, storage.AvatarKey("users/u1", "Me.PNG"))
}

func TestPresignWithPublicBaseURL(t *testing.T) {
	store := newMemoryStore()
	avatars := storage.NewAvatars(store, "https://cdn.example.com/")

	upload, err := avatars.Presign(context.Background(), "rooms/r1", "cover.gif", "image/gif", 2048)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(upload.Key, "avatars/rooms/r1/"))
	assert.Contains(t, upload.UploadURL, "sig=put")
	assert.Equal(t, "https://cdn.example.com/"+upload.Key, upload.PublicURL)
	assert.Equal(t, int64(300), upload.ExpiresIn)
	assert.Equal(t, []string{upload.Key}, store.presigns)
}

func TestPresignRejectsInvalidFiles(t *testing.T) {
	store := newMemoryStore()
	avatars := storage.NewAvatars(store, "")

	_, err := avatars.Presign(context.Background(), "users/u1", "me.png", "image/png", 0)
	assert.True(t, errs.IsCode(err, errs.ErrInvalidParams))

	_, err = avatars.Presign(context.Background(), "", "me.png", "image/png", 10)
	assert.True(t, errs.IsCode(err, errs.ErrInvalidParams))

	assert.Empty(t, store.presigns)
}

func TestStoreUploadsAndSignsURL(t *testing.T) {
	store := newMemoryStore()
	avatars := storage.NewAvatars(store, "")

	key, url, err := avatars.Store(context.Background(), "users/u1", "me.png", "image/png", 3, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), store.objects[key])
	assert.Contains(t, url, "sig=get")

	require.NoError(t, avatars.Remove(context.Background(), key))
	assert.NotContains(t, store.objects, key)
	assert.True(t, errs.IsCode(avatars.Remove(context.Background(), ""), errs.ErrInvalidParams))
}

func TestStoreRejectsIncompleteUpload(t *testing.T) {
	store := newMemoryStore()
	store.truncate = true
	avatars := storage.NewAvatars(store, "")

	_, _, err := avatars.Store(context.Background(), "users/u1", "me.png", "image/png", 3, strings.NewReader("png"))
	assert.True(t, errs.IsCode(err, errs.ErrFileStorageFailed))
}

func TestKeyFromURLWithPublicBaseURL(t *testing.T) {
	avatars := storage.NewAvatars(newMemoryStore(), "https://cdn.example.com")

	url, err := avatars.PublicURL(context.Background(), "avatars/users/u 1/a.png")
	require.NoError(t, err)
	key, ok := avatars.KeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "avatars/users/u 1/a.png", key)

	for _, raw := range []string{
		"",
		"https://elsewhere.example.com/avatars/users/u1/a.png",
		"https://cdn.example.com/other/a.png",
		"https://cdn.example.com/avatars/../secret",
	} {
		_, ok := avatars.KeyFromURL(raw)
		assert.False(t, ok, raw)
	}
}

func TestKeyFromURLWithSignedURL(t *testing.T) {
	avatars := storage.NewAvatars(newMemoryStore(), "")

	key, ok := avatars.KeyFromURL("https://s3.example.com/bucket/avatars/rooms/r1/a.gif?X-Amz-Signature=abc")
	require.True(t, ok)
	assert.Equal(t, "avatars/rooms/r1/a.gif", key)

	key, ok = avatars.KeyFromURL("https://bucket.s3.example.com/avatars/users/u1/b.png")
	require.True(t, ok)
	assert.Equal(t, "avatars/users/u1/b.png", key)

	_, ok = avatars.KeyFromURL("https://gravatar.example.com/u1.png")
	assert.False(t, ok)
}
