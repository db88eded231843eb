package service

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/media"
	pkglog "github.com/weiawesome/birdup/pkg/log"
	"github.com/weiawesome/birdup/pkg/storage"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

// storeImage normalizes an uploaded image to the variant, writes it under
// prefix/<uuid><ext> and returns the storage key.
func storeImage(ctx context.Context, store storage.Storage, prefix string, v media.Variant, up *domain.Upload) (string, error) {
	ext := strings.ToLower(path.Ext(up.Filename))
	if !imageExtensions[ext] {
		return "", ErrInvalidImage
	}
	if up.ContentType != "" && !strings.HasPrefix(up.ContentType, "image/") {
		return "", ErrInvalidImage
	}

	img, err := media.Normalize(up.Body, ext, v)
	if err != nil {
		if errors.Is(err, media.ErrNotImage) {
			return "", ErrInvalidImage
		}
		return "", err
	}

	key := prefix + "/" + uuid.NewString() + ext
	if err := store.Write(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType); err != nil {
		return "", err
	}
	return key, nil
}

// removeObject deletes a replaced or orphaned object. Failures only leak
// storage, so they are logged.
func removeObject(ctx context.Context, store storage.Storage, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("failed to delete stored object")
	}
}

// objectURL resolves a storage key to a URL; empty on failure.
func objectURL(ctx context.Context, store storage.Storage, key string) string {
	if key == "" {
		return ""
	}
	u, err := store.GetURL(ctx, key, urlExpiry)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("failed to resolve object url")
		return ""
	}
	return u
}
