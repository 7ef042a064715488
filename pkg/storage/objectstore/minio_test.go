package objectstore

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/estatehub/estatehub-backend/pkg/storage"
	"github.com/minio/minio-go/v7"
)

func TestRefRoundTrip(t *testing.T) {
	s := newStore(nil, "property-images", "http://localhost:9000/property-images/")

	key := "properties/s/p/2026/01/02/a.webp"
	ref := s.Ref(key)
	if ref != "blob://"+key {
		t.Fatalf("unexpected ref %q", ref)
	}
	got, ok := s.KeyFromRef(ref)
	if !ok || got != key {
		t.Fatalf("KeyFromRef(%q) = %q,%v", ref, got, ok)
	}
	if _, ok := s.KeyFromRef("/uploads/" + key); ok {
		t.Fatal("local refs must not be claimed by the object store")
	}
	if url := s.PublicURL(key); url != "http://localhost:9000/property-images/"+key {
		t.Fatalf("unexpected public url %q", url)
	}
}

func TestTranslateErrorNotFound(t *testing.T) {
	err := translateError(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	other := minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	if err := translateError(other); errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("access denied must not map to not found")
	}
	if translateError(nil) != nil {
		t.Fatal("nil should stay nil")
	}
}

func TestPublicReadPolicy(t *testing.T) {
	var policy struct {
		Statement []struct {
			Effect   string
			Action   []string
			Resource []string
		}
	}
	if err := json.Unmarshal([]byte(publicReadPolicy("imgs")), &policy); err != nil {
		t.Fatalf("policy is not json: %v", err)
	}
	if len(policy.Statement) != 1 || policy.Statement[0].Resource[0] != "arn:aws:s3:::imgs/*" {
		t.Fatalf("unexpected policy %+v", policy)
	}
}
