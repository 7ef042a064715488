package images

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/auth"
	"github.com/estatehub/estatehub-backend/pkg/db"
	"github.com/estatehub/estatehub-backend/pkg/db/dbtest"
	"github.com/estatehub/estatehub-backend/pkg/enums"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/metrics"
	"github.com/estatehub/estatehub-backend/pkg/storage"
	"github.com/estatehub/estatehub-backend/pkg/storage/local"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const tenMB = 10 * 1024 * 1024

type flakyStore struct {
	storage.Store
	failPutFor  string
	failDeletes bool
	deletedKeys []string
}

func (f *flakyStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if f.failPutFor != "" && strings.HasSuffix(key, f.failPutFor) {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, key, body, size, contentType)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	f.deletedKeys = append(f.deletedKeys, key)
	if f.failDeletes {
		return errors.New("permission denied")
	}
	return f.Store.Delete(ctx, key)
}

type fixture struct {
	conn     *gorm.DB
	store    *flakyStore
	root     string
	svc      Service
	registry *prometheus.Registry
	logs     *bytes.Buffer
	seller   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	root := t.TempDir()
	base, err := local.New(root, "/uploads")
	require.NoError(t, err)
	store := &flakyStore{Store: base}

	registry := prometheus.NewRegistry()
	logs := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: logs})
	imageMetrics := metrics.NewImageMetrics(registry)

	svc, err := NewService(ServiceParams{
		Repo:           NewRepository(conn),
		DB:             db.Wrap(conn),
		Store:          store,
		Resolver:       NewResolver(ResolverConfig{PublicBaseURL: "https://www.example.com"}, nil, nil, imageMetrics, logg),
		Metrics:        imageMetrics,
		Logger:         logg,
		MaxUploadBytes: tenMB,
		Now:            func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return &fixture{conn: conn, store: store, root: root, svc: svc, registry: registry, logs: logs, seller: uuid.New()}
}

func (f *fixture) sellerActor() auth.Actor {
	return auth.Actor{UserID: f.seller, Role: enums.UserRoleSeller}
}

func jpeg(name, body string) UploadFile {
	return UploadFile{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code(), typed.Error())
}

func TestUploadFirstBatchBecomesCoverAndOrdered(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)

	result, err := f.svc.Upload(context.Background(), f.sellerActor(), UploadInput{
		PropertyID: property.ID,
		Files: []UploadFile{
			jpeg("one.jpg", "first"),
			{Filename: "notes.txt", ContentType: "text/plain", Size: 4, Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("text")), nil }},
			jpeg("two.jpg", "second"),
			{Filename: "huge.jpg", ContentType: "image/jpeg", Size: tenMB},
			jpeg("three.jpg", "third"),
		},
	})
	require.NoError(t, err)

	require.Equal(t, 3, result.Count)
	assert.True(t, result.Images[0].IsCover)
	assert.False(t, result.Images[1].IsCover)
	assert.False(t, result.Images[2].IsCover)
	assert.Equal(t, []int{1, 2, 3}, []int{result.Images[0].DisplayOrder, result.Images[1].DisplayOrder, result.Images[2].DisplayOrder})
	assert.Equal(t, "properties/"+f.seller.String()+"/"+property.ID.String()+"/2026/05/04", result.UploadPath)
	assert.Equal(t, []SkippedFile{
		{Filename: "notes.txt", Reason: SkipReasonNotImage},
		{Filename: "huge.jpg", Reason: SkipReasonTooLarge},
	}, result.Skipped)

	for _, image := range result.Images {
		assert.True(t, strings.HasPrefix(image.ImageURL, "https://www.example.com/uploads/properties/"), image.ImageURL)
		key := strings.TrimPrefix(image.ImageURL, "https://www.example.com/uploads/")
		_, statErr := os.Stat(filepath.Join(f.root, filepath.FromSlash(key)))
		assert.NoError(t, statErr)
	}
	assert.Equal(t, 3.0, counterValue(t, f.registry, "image_uploads_total"))
	assert.Equal(t, 2.0, counterValue(t, f.registry, "image_upload_skipped_total"))
}

func TestUploadContinuesOrderingWithoutStealingCover(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	dbtest.SeedImage(t, f.conn, property.ID, "https://cdn.example.com/existing.jpg", 4, true)

	result, err := f.svc.Upload(context.Background(), f.sellerActor(), UploadInput{
		PropertyID: property.ID,
		Files:      []UploadFile{jpeg("a.jpg", "a"), jpeg("b.jpg", "b")},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	assert.False(t, result.Images[0].IsCover)
	assert.Equal(t, 5, result.Images[0].DisplayOrder)
	assert.Equal(t, 6, result.Images[1].DisplayOrder)
	assert.Empty(t, result.Skipped)
}

func TestUploadAuthorization(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	ctx := context.Background()
	files := []UploadFile{jpeg("a.jpg", "a")}

	_, err := f.svc.Upload(ctx, auth.Actor{UserID: uuid.New(), Role: enums.UserRoleSeller}, UploadInput{PropertyID: property.ID, Files: files})
	requireCode(t, err, pkgerrors.CodeForbidden)

	other := uuid.New()
	_, err = f.svc.Upload(ctx, f.sellerActor(), UploadInput{PropertyID: property.ID, SellerID: &other, Files: files})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Upload(ctx, f.sellerActor(), UploadInput{PropertyID: uuid.New(), Files: files})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Upload(ctx, auth.Actor{}, UploadInput{PropertyID: property.ID, Files: files})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	result, err := f.svc.Upload(ctx, auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, UploadInput{PropertyID: property.ID, Files: files})
	require.NoError(t, err)
	assert.Contains(t, result.UploadPath, f.seller.String(), "admin uploads land in the seller's directory")
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, f.sellerActor(), UploadInput{PropertyID: property.ID})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Upload(ctx, f.sellerActor(), UploadInput{Files: []UploadFile{jpeg("a.jpg", "a")}})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Upload(ctx, f.sellerActor(), UploadInput{
		PropertyID: property.ID,
		Files: []UploadFile{
			{Filename: "doc.pdf", ContentType: "application/pdf", Size: 10},
			{Filename: "empty.png", ContentType: "image/png", Size: 0},
		},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Len(t, details["skipped"], 2)
}

func TestUploadSkipsStorageFailures(t *testing.T) {
	f := newFixture(t)
	f.store.failPutFor = ".png"
	property := dbtest.SeedProperty(t, f.conn, f.seller)

	result, err := f.svc.Upload(context.Background(), f.sellerActor(), UploadInput{
		PropertyID: property.ID,
		Files: []UploadFile{
			{Filename: "bad.png", ContentType: "image/png", Size: 3, Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("png")), nil }},
			jpeg("good.jpg", "jpg"),
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.True(t, result.Images[0].IsCover, "first stored file becomes the cover")
	assert.Equal(t, []SkippedFile{{Filename: "bad.png", Reason: SkipReasonStorageWriteFailed}}, result.Skipped)
}

func TestListOrdersCoverFirst(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	dbtest.SeedImage(t, f.conn, property.ID, "/uploads/one.jpg", 1, false)
	dbtest.SeedImage(t, f.conn, property.ID, "https://cdn.example.com/cover.jpg", 3, true)
	dbtest.SeedImage(t, f.conn, property.ID, "blob://properties/unresolvable.jpg", 2, false)

	result, err := f.svc.List(context.Background(), auth.Actor{}, property.ID)
	require.NoError(t, err)
	require.Equal(t, 3, result.Count)
	assert.Equal(t, property.ID, result.PropertyID)
	assert.Equal(t, "https://cdn.example.com/cover.jpg", result.Images[0].ImageURL)
	assert.Equal(t, "https://www.example.com/uploads/one.jpg", result.Images[1].ImageURL)
	assert.Equal(t, "blob://properties/unresolvable.jpg", result.Images[2].ImageURL, "unresolvable refs keep the stored value")

	_, err = f.svc.List(context.Background(), auth.Actor{}, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListHidesDraftGalleriesFromOthers(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller, dbtest.WithStatus(enums.ListingStatusDraft))
	dbtest.SeedImage(t, f.conn, property.ID, "/uploads/draft.jpg", 1, true)
	ctx := context.Background()

	_, err := f.svc.List(ctx, auth.Actor{}, property.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	buyer := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer}
	_, err = f.svc.List(ctx, buyer, property.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	owned, err := f.svc.List(ctx, f.sellerActor(), property.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, owned.Count)

	admin := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	managed, err := f.svc.List(ctx, admin, property.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, managed.Count)
}

func TestUpdateBatchMovesCoverAtomically(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	oldCover := dbtest.SeedImage(t, f.conn, property.ID, "/uploads/3.jpg", 1, true)
	newCover := dbtest.SeedImage(t, f.conn, property.ID, "/uploads/5.jpg", 2, false)

	yes := true
	result, err := f.svc.UpdateBatch(context.Background(), f.sellerActor(), UpdateInput{
		Images: []ImageUpdate{{ImageID: newCover.ID, IsCover: &yes}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)

	repo := NewRepository(f.conn)
	old, err := repo.FindByID(context.Background(), oldCover.ID)
	require.NoError(t, err)
	current, err := repo.FindByID(context.Background(), newCover.ID)
	require.NoError(t, err)
	assert.False(t, old.IsCover)
	assert.True(t, current.IsCover)
	assert.Equal(t, 2, current.DisplayOrder, "partial tuples leave other fields untouched")
}

func TestUpdateBatchReorderAndUnsetCover(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	cover := dbtest.SeedImage(t, f.conn, property.ID, "/uploads/a.jpg", 1, true)
	other := dbtest.SeedImage(t, f.conn, property.ID, "/uploads/b.jpg", 2, false)

	no := false
	zero := 0
	_, err := f.svc.UpdateBatch(context.Background(), f.sellerActor(), UpdateInput{
		Images: []ImageUpdate{
			{ImageID: cover.ID, IsCover: &no},
			{ImageID: other.ID, DisplayOrder: &zero},
		},
	})
	require.NoError(t, err)

	rows, err := NewRepository(f.conn).ListByProperty(context.Background(), property.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, other.ID, rows[0].ID, "a gallery never ends up without a cover")
	assert.True(t, rows[0].IsCover)
	assert.Equal(t, 0, rows[0].DisplayOrder)
}

func TestUpdateBatchUnsetLowestCoverKeepsIt(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	cover := dbtest.SeedImage(t, f.conn, property.ID, "/uploads/a.jpg", 0, true)
	dbtest.SeedImage(t, f.conn, property.ID, "/uploads/b.jpg", 1, false)

	no := false
	result, err := f.svc.UpdateBatch(context.Background(), f.sellerActor(), UpdateInput{
		Images: []ImageUpdate{{ImageID: cover.ID, IsCover: &no}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)

	rows, err := NewRepository(f.conn).ListByProperty(context.Background(), property.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, cover.ID, rows[0].ID)
	assert.True(t, rows[0].IsCover, "the lowest-ordered image is promoted back")
	assert.False(t, rows[1].IsCover)
}

func TestUpdateBatchErrors(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	image := dbtest.SeedImage(t, f.conn, property.ID, "/uploads/a.jpg", 1, true)
	ctx := context.Background()
	yes := true
	negative := -1

	_, err := f.svc.UpdateBatch(ctx, f.sellerActor(), UpdateInput{})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.UpdateBatch(ctx, f.sellerActor(), UpdateInput{Images: []ImageUpdate{{ImageID: image.ID}}})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.UpdateBatch(ctx, f.sellerActor(), UpdateInput{Images: []ImageUpdate{{ImageID: image.ID, DisplayOrder: &negative}}})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.UpdateBatch(ctx, f.sellerActor(), UpdateInput{Images: []ImageUpdate{{ImageID: image.ID + 100, IsCover: &yes}}})
	requireCode(t, err, pkgerrors.CodeNotFound)

	stranger := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleSeller}
	_, err = f.svc.UpdateBatch(ctx, stranger, UpdateInput{Images: []ImageUpdate{{ImageID: image.ID, IsCover: &yes}}})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeleteCoverPromotesLowestOrder(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	ctx := context.Background()

	uploaded, err := f.svc.Upload(ctx, f.sellerActor(), UploadInput{
		PropertyID: property.ID,
		Files:      []UploadFile{jpeg("a.jpg", "a"), jpeg("b.jpg", "b")},
	})
	require.NoError(t, err)
	cover := uploaded.Images[0]

	result, err := f.svc.Delete(ctx, f.sellerActor(), cover.ID)
	require.NoError(t, err)
	assert.Equal(t, cover.ID, result.DeletedID)

	listed, err := f.svc.List(ctx, auth.Actor{}, property.ID)
	require.NoError(t, err)
	require.Equal(t, 1, listed.Count)
	assert.True(t, listed.Images[0].IsCover)
	assert.Equal(t, uploaded.Images[1].ID, listed.Images[0].ID)

	key := strings.TrimPrefix(cover.ImageURL, "https://www.example.com/uploads/")
	_, statErr := os.Stat(filepath.Join(f.root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(statErr), "stored object should be removed")

	_, err = f.svc.Delete(ctx, f.sellerActor(), listed.Images[0].ID)
	require.NoError(t, err)
	listed, err = f.svc.List(ctx, auth.Actor{}, property.ID)
	require.NoError(t, err)
	assert.Zero(t, listed.Count)
}

func TestDeleteStorageFailureIsCountedNotFatal(t *testing.T) {
	f := newFixture(t)
	f.store.failDeletes = true
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	image := dbtest.SeedImage(t, f.conn, property.ID, "/uploads/properties/x/a.jpg", 1, true)

	_, err := f.svc.Delete(context.Background(), f.sellerActor(), image.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"properties/x/a.jpg"}, f.store.deletedKeys)
	assert.Equal(t, 1.0, counterValue(t, f.registry, "image_storage_delete_failures_total"))
	assert.Contains(t, f.logs.String(), "image.delete.storage_cleanup_failed")
}

func TestDeleteErrors(t *testing.T) {
	f := newFixture(t)
	property := dbtest.SeedProperty(t, f.conn, f.seller)
	image := dbtest.SeedImage(t, f.conn, property.ID, "https://cdn.example.com/a.jpg", 1, true)
	ctx := context.Background()

	_, err := f.svc.Delete(ctx, f.sellerActor(), 0)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.Delete(ctx, f.sellerActor(), image.ID+1)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Delete(ctx, auth.Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer}, image.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Delete(ctx, auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, image.ID)
	require.NoError(t, err)
	assert.Empty(t, f.store.deletedKeys, "external URLs are not owned by the store")
}

func TestRemoveStoredObjectsCombinesFailures(t *testing.T) {
	f := newFixture(t)
	f.store.failDeletes = true

	err := f.svc.RemoveStoredObjects(context.Background(), []string{
		"/uploads/properties/a.jpg",
		"https://cdn.example.com/b.jpg",
		"/uploads/properties/c.jpg",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "properties/a.jpg")
	assert.Contains(t, err.Error(), "properties/c.jpg")
	assert.Equal(t, 2.0, counterValue(t, f.registry, "image_storage_delete_failures_total"))
}

func TestCoverURLs(t *testing.T) {
	f := newFixture(t)
	withCover := dbtest.SeedProperty(t, f.conn, f.seller)
	without := dbtest.SeedProperty(t, f.conn, f.seller)
	dbtest.SeedImage(t, f.conn, withCover.ID, "/uploads/cover.jpg", 1, true)
	dbtest.SeedImage(t, f.conn, without.ID, "/uploads/plain.jpg", 1, false)

	urls, err := f.svc.CoverURLs(context.Background(), []uuid.UUID{withCover.ID, without.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{withCover.ID: "https://www.example.com/uploads/cover.jpg"}, urls)
}

func TestImageMediaType(t *testing.T) {
	cases := map[string]bool{
		"image/jpeg":                true,
		"IMAGE/PNG; charset=binary": true,
		"image/":                    false,
		"text/plain":                false,
		"":                          false,
		"image jpeg":                false,
	}
	for input, want := range cases {
		_, ok := imageMediaType(input)
		assert.Equal(t, want, ok, input)
	}
}
