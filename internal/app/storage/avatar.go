package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"anychat/internal/pkg/errs"
)

const (
	// MaxAvatarSizeMB is the maximum allowed avatar size in megabytes.
	MaxAvatarSizeMB = 5

	// MaxAvatarSize is the maximum allowed avatar size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024

	// PresignedURLDuration is how long an upload URL stays valid.
	PresignedURLDuration = 5 * time.Minute

	// DownloadURLDuration is how long a signed avatar URL stays valid when the bucket has no
	// public base URL. It matches the default token lifetime.
	DownloadURLDuration = 7 * 24 * time.Hour

	avatarPrefix = "avatars"
)

// Metadata keys returned by StorageService.GetObjectMetadata.
const (
	MetadataContentType   = "Content-Type"
	MetadataContentLength = "Content-Length"
)

// AllowedMIMETypes defines the permitted avatar MIME types.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to their MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateFileSize checks that an avatar is non-empty and within MaxAvatarSize.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxAvatarSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// ValidateFileType checks that the MIME type is allowed and agrees with the file extension.
func ValidateFileType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) < 2 {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	expectedMIME, ok := ExtToMIME[ext]
	if !ok || expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}

// AvatarKey returns a fresh object key for an avatar of owner ("users/u1", "rooms/r1").
func AvatarKey(owner string, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join(avatarPrefix, owner, uuid.NewString()+ext)
}

// Upload describes a presigned avatar upload.
type Upload struct {
	Key       string `json:"fileKey"`
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Avatars validates and stores avatar images.
type Avatars struct {
	store         StorageService
	publicBaseURL string
}

// NewAvatars wraps store. publicBaseURL may be empty, in which case URLs are signed.
func NewAvatars(store StorageService, publicBaseURL string) *Avatars {
	return &Avatars{store: store, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Presign validates the file and returns an upload URL and the URL the avatar will be served at.
func (a *Avatars) Presign(ctx context.Context, owner, fileName, mimeType string, fileSize int64) (*Upload, error) {
	if err := validateAvatar(owner, fileName, mimeType, fileSize); err != nil {
		return nil, err
	}

	key := AvatarKey(owner, fileName)
	uploadURL, err := a.store.PresignUpload(ctx, key, strings.ToLower(mimeType), fileSize, PresignedURLDuration)
	if err != nil {
		return nil, err
	}
	publicURL, err := a.PublicURL(ctx, key)
	if err != nil {
		return nil, err
	}

	return &Upload{
		Key:       key,
		UploadURL: uploadURL,
		PublicURL: publicURL,
		ExpiresIn: int64(PresignedURLDuration.Seconds()),
	}, nil
}

// Store validates and uploads body, returning the object key and its URL. The object is
// read back before the URL is handed out; a missing object or a size mismatch fails with
// ErrFileStorageFailed.
func (a *Avatars) Store(ctx context.Context, owner, fileName, mimeType string, fileSize int64, body io.Reader) (string, string, error) {
	if err := validateAvatar(owner, fileName, mimeType, fileSize); err != nil {
		return "", "", err
	}

	key := AvatarKey(owner, fileName)
	if err := a.store.Upload(ctx, key, strings.ToLower(mimeType), body); err != nil {
		return "", "", err
	}
	if err := a.verify(ctx, key, fileSize); err != nil {
		return "", "", err
	}
	publicURL, err := a.PublicURL(ctx, key)
	if err != nil {
		return "", "", err
	}
	return key, publicURL, nil
}

// Remove deletes a stored avatar.
func (a *Avatars) Remove(ctx context.Context, key string) error {
	if key == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return a.store.Delete(ctx, key)
}

// PublicURL returns the URL key is served at: under the public base URL when configured,
// otherwise a signed download URL.
func (a *Avatars) PublicURL(ctx context.Context, key string) (string, error) {
	if a.publicBaseURL != "" {
		escaped := make([]string, 0, 4)
		for _, segment := range strings.Split(key, "/") {
			escaped = append(escaped, url.PathEscape(segment))
		}
		return a.publicBaseURL + "/" + strings.Join(escaped, "/"), nil
	}
	return a.store.PresignDownload(ctx, key, DownloadURLDuration)
}

// KeyFromURL returns the object key of an avatar URL produced by PublicURL. ok is false for
// URLs that do not point at a stored avatar, such as external images.
func (a *Avatars) KeyFromURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	var escaped string
	if a.publicBaseURL != "" {
		rest, found := strings.CutPrefix(raw, a.publicBaseURL+"/")
		if !found {
			return "", false
		}
		escaped, _, _ = strings.Cut(rest, "?")
	} else {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false
		}
		// Presigned URLs may be path-style (/bucket/avatars/...) or virtual-hosted (/avatars/...).
		p := u.EscapedPath()
		idx := strings.Index(p, "/"+avatarPrefix+"/")
		if idx < 0 {
			return "", false
		}
		escaped = p[idx+1:]
	}

	key, err := url.PathUnescape(escaped)
	if err != nil || !strings.HasPrefix(key, avatarPrefix+"/") || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func (a *Avatars) verify(ctx context.Context, key string, fileSize int64) error {
	metadata, err := a.store.GetObjectMetadata(ctx, key)
	if err != nil {
		return errs.NewError(errs.ErrFileStorageFailed, err)
	}
	if size, ok := metadata[MetadataContentLength]; ok && size != strconv.FormatInt(fileSize, 10) {
		return errs.NewError(errs.ErrFileStorageFailed, "verify upload")
	}
	return nil
}

func validateAvatar(owner, fileName, mimeType string, fileSize int64) error {
	if strings.Trim(owner, "/") == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if err := ValidateFileSize(fileSize); err != nil {
		return err
	}
	if err := ValidateFileType(fileName, mimeType); err != nil {
		return err
	}
	return nil
}
