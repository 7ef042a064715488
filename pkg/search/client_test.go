package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estatehub/estatehub-backend/pkg/config"
)

func TestNewRequiresHost(t *testing.T) {
	if _, err := New(config.SearchConfig{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestBuildFilter(t *testing.T) {
	got := buildFilter(Query{City: "Madrid", PropertyType: "condo", OnlyActive: true})
	want := `city = "Madrid" AND property_type = "condo" AND listing_status = "active"`
	if got != want {
		t.Fatalf("filter = %s, want %s", got, want)
	}
	if buildFilter(Query{City: "  "}) != "" {
		t.Fatal("blank values must not produce clauses")
	}
	if got := buildFilter(Query{City: `San "Quoted"`}); got != `city = "San \"Quoted\""` {
		t.Fatalf("quotes must be escaped, got %s", got)
	}
}

func TestHitIDsSkipsMalformedHits(t *testing.T) {
	ids := hitIDs([]interface{}{
		map[string]interface{}{"id": "a"},
		map[string]interface{}{"id": 12},
		"junk",
		map[string]interface{}{"id": "b"},
	})
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestSearchAgainstServer(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/indexes/listings/search" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode search body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":[{"id":"p-2"},{"id":"p-1"}],"estimatedTotalHits":2,"limit":5,"offset":0,"processingTimeMs":1,"query":"pool"}`))
	}))
	defer srv.Close()

	client, err := New(config.SearchConfig{Host: srv.URL, Index: "listings"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	res, err := client.Search(context.Background(), Query{Text: "pool", OnlyActive: true, Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.IDs) != 2 || res.IDs[0] != "p-2" || res.Total != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if captured["q"] != "pool" || captured["filter"] != `listing_status = "active"` {
		t.Fatalf("unexpected request %v", captured)
	}
}

func TestUpsertNoDocumentsIsNoop(t *testing.T) {
	client, err := New(config.SearchConfig{Host: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Upsert(context.Background()); err != nil {
		t.Fatalf("empty upsert should not call the server: %v", err)
	}
}
