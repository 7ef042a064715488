package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestPropertyImagesMigrationContainsIndexes(t *testing.T) {
	content := readMigration(t, "create_property_images_table")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS property_images",
		"REFERENCES properties(id) ON DELETE CASCADE",
		"CHECK (display_order >= 0)",
		"CREATE INDEX IF NOT EXISTS idx_property_images_property_id ON property_images (property_id)",
		"CREATE INDEX IF NOT EXISTS idx_property_images_property_cover ON property_images (property_id, is_cover)",
		"CREATE INDEX IF NOT EXISTS idx_property_images_property_order ON property_images (property_id, display_order)",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_property_images_single_cover ON property_images (property_id) WHERE is_cover",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPropertiesMigrationUsesUUIDKeys(t *testing.T) {
	content := readMigration(t, "create_properties_table")
	for _, sub := range []string{
		"id UUID PRIMARY KEY DEFAULT gen_random_uuid()",
		"price NUMERIC(14,2) NOT NULL",
		"listing_status IN ('draft', 'active', 'pending', 'sold', 'inactive')",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsRepoMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("validate repo migrations: %v", err)
	}
}

func TestValidateEmbedded(t *testing.T) {
	if err := ValidateEmbedded(); err != nil {
		t.Fatalf("validate embedded migrations: %v", err)
	}
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20260101000000_no_down.sql":  "-- +goose Up\nSELECT 1;\n",
		"20260101000001_reversed.sql": "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
		"BadName.sql":                 "-- +goose Up\n-- +goose Down\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	err := ValidateDir(dir)
	if got := len(multierr.Errors(err)); got != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", got, err)
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	embeddedFiles, err := fs.Glob(embedded, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	diskFiles, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embeddedFiles) == 0 || len(embeddedFiles) != len(diskFiles) {
		t.Fatalf("embedded=%d disk=%d", len(embeddedFiles), len(diskFiles))
	}
}

func TestLatestVersion(t *testing.T) {
	version, err := LatestVersion()
	if err != nil {
		t.Fatalf("latest version: %v", err)
	}
	if version != 20260105090500 {
		t.Fatalf("unexpected latest version %d", version)
	}
}

func TestCreateSQLMigrationAndValidate(t *testing.T) {
	dir := t.TempDir()
	versionClock = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	t.Cleanup(func() { versionClock = time.Now })

	path, err := CreateSQLMigration(dir, "Add Image Alt Text!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20260203040506_add_image_alt_text.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if _, err := CreateSQLMigration(dir, "add image alt text"); err == nil {
		t.Fatal("expected duplicate version to fail")
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("validate created migration: %v", err)
	}

	bad := filepath.Join(dir, "20260203040507_broken.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write bad migration: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected missing down block to fail validation")
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), "  !!! "); err == nil {
		t.Fatal("expected empty sanitized name to fail")
	}
}
