package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if LimitWithBuffer(10) != 11 {
		t.Fatal("buffer should add one row")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", out, in)
	}
}

func TestParseCursorErrors(t *testing.T) {
	if c, err := ParseCursor("  "); c != nil || err != nil {
		t.Fatalf("empty cursor should be nil,nil; got %v,%v", c, err)
	}
	for _, bad := range []string{"%%%", "bm9waXBl", EncodeCursor(Cursor{})[:4]} {
		if _, err := ParseCursor(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestTrim(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cursorOf := func(i int) Cursor { return Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Minute), ID: ids[i]} }

	page, next := Trim([]int{0, 1, 2}, 2, cursorOf)
	if len(page) != 2 || next == "" {
		t.Fatalf("expected a trimmed page with a cursor, got %v %q", page, next)
	}
	decoded, err := ParseCursor(next)
	if err != nil || decoded.ID != ids[1] {
		t.Fatalf("cursor should point at the last returned row, got %+v %v", decoded, err)
	}

	page, next = Trim([]int{0, 1}, 2, cursorOf)
	if len(page) != 2 || next != "" {
		t.Fatalf("last page must not carry a cursor, got %v %q", page, next)
	}
}
