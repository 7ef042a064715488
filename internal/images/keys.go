package images

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/estatehub/estatehub-backend/pkg/storage"
	"github.com/google/uuid"
)

const maxExtensionLength = 10

// uploadDir is the date directory a batch is written to.
func uploadDir(sellerID, propertyID uuid.UUID, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s%s/%s/%04d/%02d/%02d",
		storage.KeyPrefix, sellerID, propertyID, now.Year(), int(now.Month()), now.Day())
}

// objectKey places one file under dir with a random, collision resistant name.
func objectKey(dir, fileName, contentType string) string {
	return dir + "/" + uuid.NewString() + fileExtension(fileName, contentType)
}

// fileExtension keeps the client's extension when it is sane, otherwise derives one from the MIME type.
func fileExtension(fileName, contentType string) string {
	ext := strings.ToLower(path.Ext(sanitizeFileName(fileName)))
	if isCleanExtension(ext) {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		candidate := strings.ToLower(exts[0])
		if isCleanExtension(candidate) {
			return candidate
		}
	}
	return ""
}

func isCleanExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > maxExtensionLength || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_")
}
