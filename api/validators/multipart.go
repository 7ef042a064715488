package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
)

// multipartMemory is how much of a form is buffered in memory before spilling to temp files.
const multipartMemory = 8 << 20

// ParseMultipartForm bounds the request body at maxBytes and parses it.
func ParseMultipartForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return pkgerrors.New(pkgerrors.CodeValidation, "content type must be multipart/form-data")
	}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return pkgerrors.New(pkgerrors.CodePayloadTooLarge, "upload exceeds the request size limit").
				WithDetails(map[string]any{"limit_bytes": maxBytes})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormFiles returns the file parts submitted under field, in submission order.
func FormFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

func FormValue(r *http.Request, field string) string {
	if r.MultipartForm == nil {
		return ""
	}
	if values := r.MultipartForm.Value[field]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}
