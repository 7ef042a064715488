// Package storage describes where uploaded property images live.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// BlobScheme prefixes references to objects held in the S3-compatible store.
const BlobScheme = "blob://"

// KeyPrefix is the root every managed image key lives under.
const KeyPrefix = "properties/"

var (
	ErrNotFound   = errors.New("storage object not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store is implemented by every image backend.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// List calls fn for every object under prefix until fn returns an error.
	List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error
	PublicURL(key string) string
	// Ref is the value persisted in image_url for key.
	Ref(key string) string
	// KeyFromRef reports whether ref was produced by this backend.
	KeyFromRef(ref string) (string, bool)
	Ping(ctx context.Context) error
}

// BlobKey strips the blob:// scheme, case-insensitively.
func BlobKey(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if len(ref) < len(BlobScheme) || !strings.EqualFold(ref[:len(BlobScheme)], BlobScheme) {
		return "", false
	}
	key := strings.TrimLeft(ref[len(BlobScheme):], "/")
	if key == "" {
		return "", false
	}
	return key, true
}

// CleanKey rejects keys that are empty, absolute or escape the bucket root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
