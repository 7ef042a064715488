package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/estatehub/estatehub-backend/api/responses"
	"github.com/estatehub/estatehub-backend/api/validators"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/storage"
)

type blobResolver interface {
	ResolveBlob(ctx context.Context, ref string) (string, bool)
}

type resolveBlobRequest struct {
	Key string `json:"key" validate:"required,max=1024"`
}

type resolveBlobResponse struct {
	URL string `json:"url"`
}

// BlobResolve maps an object key to a public URL. GET reads ?key=, POST reads {"key"}.
// The key is either bare (properties/...) or carries the blob:// scheme; URLs and
// paths are rejected, and a key no backend can locate answers NOT_FOUND.
func BlobResolve(resolver blobResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if resolver == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "resolver unavailable"))
			return
		}

		var key string
		if r.Method == http.MethodPost {
			var payload resolveBlobRequest
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			key = payload.Key
		} else {
			key = r.URL.Query().Get("key")
		}
		ref, err := blobRef(key)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		url, ok := resolver.ResolveBlob(ctx, ref)
		if !ok || url == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "blob not resolvable"))
			return
		}
		responses.WriteSuccess(w, resolveBlobResponse{URL: url})
	}
}

// blobRef normalizes the request key into a blob:// reference.
func blobRef(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "key is required").
			WithDetails(map[string]any{"field": "key"})
	}
	if stripped, ok := storage.BlobKey(key); ok {
		key = stripped
	} else if strings.Contains(key, "://") {
		return "", invalidBlobKey()
	}
	cleaned, err := storage.CleanKey(key)
	if err != nil {
		return "", invalidBlobKey()
	}
	return storage.BlobScheme + cleaned, nil
}

func invalidBlobKey() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "key must be a storage object key").
		WithDetails(map[string]any{"field": "key"})
}
