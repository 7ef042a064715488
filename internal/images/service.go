package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"sort"
	"strings"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/auth"
	"github.com/estatehub/estatehub-backend/pkg/db"
	"github.com/estatehub/estatehub-backend/pkg/db/models"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/metrics"
	"github.com/estatehub/estatehub-backend/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const maxOriginalFilename = 255

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type refResolver interface {
	Resolve(ctx context.Context, ref string) (string, bool)
	ResolveOrStored(ctx context.Context, ref string) string
	Forget(ctx context.Context, ref string)
}

// Service exposes the property image lifecycle.
type Service interface {
	Upload(ctx context.Context, actor auth.Actor, input UploadInput) (*UploadResult, error)
	List(ctx context.Context, actor auth.Actor, propertyID uuid.UUID) (*ListResult, error)
	// UpdateBatch applies order and cover changes in one transaction. A property
	// left without a cover gets its lowest-ordered image promoted, so is_cover:false
	// on the cover of the lowest-ordered image leaves it the cover. Every entry
	// counts toward UpdatedCount.
	UpdateBatch(ctx context.Context, actor auth.Actor, input UpdateInput) (*UpdateResult, error)
	Delete(ctx context.Context, actor auth.Actor, imageID int64) (*DeleteResult, error)
	CoverURLs(ctx context.Context, propertyIDs []uuid.UUID) (map[uuid.UUID]string, error)
	StoredRefs(ctx context.Context, propertyID uuid.UUID) ([]string, error)
	RemoveStoredObjects(ctx context.Context, refs []string) error
}

// ServiceParams wires the image service.
type ServiceParams struct {
	Repo           Repository
	DB             txRunner
	Store          storage.Store
	Resolver       refResolver
	Metrics        *metrics.ImageMetrics
	Logger         *logger.Logger
	MaxUploadBytes int64
	Now            func() time.Time
}

type service struct {
	repo     Repository
	db       txRunner
	store    storage.Store
	resolver refResolver
	metrics  *metrics.ImageMetrics
	logg     *logger.Logger
	maxBytes int64
	now      func() time.Time
}

// NewService validates the dependencies and builds the image service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("image repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("image store required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		db:       params.DB,
		store:    params.Store,
		resolver: params.Resolver,
		metrics:  params.Metrics,
		logg:     params.Logger,
		maxBytes: params.MaxUploadBytes,
		now:      now,
	}, nil
}

type storedFile struct {
	key      string
	filename string
	mimeType string
	size     int64
}

func (s *service) Upload(ctx context.Context, actor auth.Actor, input UploadInput) (*UploadResult, error) {
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property_id is required")
	}
	if len(input.Files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image file is required").
			WithDetails(map[string]any{"field": "images"})
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.SellerID != nil && *input.SellerID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller_id does not match the authenticated user")
	}

	property, err := s.repo.PropertySummary(ctx, input.PropertyID)
	if err != nil {
		return nil, db.MapError(err, "property not found")
	}
	if !actor.CanManage(property.SellerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to manage this property")
	}

	ctx = s.logg.WithPropertyID(ctx, property.ID.String())

	skipped := make([]SkippedFile, 0)
	skip := func(name, reason string) {
		skipped = append(skipped, SkippedFile{Filename: name, Reason: reason})
		s.metrics.IncSkipped(reason)
	}

	type candidate struct {
		file     UploadFile
		mimeType string
	}
	valid := make([]candidate, 0, len(input.Files))
	for _, file := range input.Files {
		mimeType, ok := imageMediaType(file.ContentType)
		switch {
		case !ok:
			skip(file.Filename, SkipReasonNotImage)
		case file.Size <= 0:
			skip(file.Filename, SkipReasonEmpty)
		case file.Size >= s.maxBytes:
			skip(file.Filename, SkipReasonTooLarge)
		case file.Open == nil:
			skip(file.Filename, SkipReasonUnreadable)
		default:
			valid = append(valid, candidate{file: file, mimeType: mimeType})
		}
	}
	if len(valid) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no valid image files in upload").
			WithDetails(map[string]any{"skipped": skipped, "max_bytes": s.maxBytes})
	}

	dir := uploadDir(property.SellerID, property.ID, s.now())
	stored := make([]storedFile, 0, len(valid))
	for _, c := range valid {
		key := objectKey(dir, c.file.Filename, c.mimeType)
		if err := s.put(ctx, key, c.file, c.mimeType); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"object_key": key,
				"filename":   c.file.Filename,
				"error":      err.Error(),
			}), "image.upload.store_failed")
			if errors.Is(err, errUnreadable) {
				skip(c.file.Filename, SkipReasonUnreadable)
			} else {
				skip(c.file.Filename, SkipReasonStorageWriteFailed)
			}
			continue
		}
		stored = append(stored, storedFile{key: key, filename: c.file.Filename, mimeType: c.mimeType, size: c.file.Size})
	}
	if len(stored) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image storage unavailable").
			WithDetails(map[string]any{"skipped": skipped})
	}

	var rows []*models.PropertyImage
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.LockProperty(ctx, property.ID); err != nil {
			return err
		}
		maxOrder, err := repo.MaxDisplayOrder(ctx, property.ID)
		if err != nil {
			return err
		}
		hasCover, err := repo.HasCover(ctx, property.ID)
		if err != nil {
			return err
		}

		rows = make([]*models.PropertyImage, 0, len(stored))
		for i, file := range stored {
			size := file.size
			mimeType := file.mimeType
			rows = append(rows, &models.PropertyImage{
				PropertyID:       property.ID,
				ImageURL:         s.store.Ref(file.key),
				IsCover:          !hasCover && i == 0,
				DisplayOrder:     maxOrder + i + 1,
				FileSize:         &size,
				MimeType:         &mimeType,
				OriginalFilename: originalFilename(file.filename),
			})
		}
		return repo.CreateBatch(ctx, rows)
	})
	if err != nil {
		s.discardStored(ctx, stored)
		mapped := db.MapError(err, "persist image metadata")
		if db.IsForeignKeyViolation(err) {
			mapped = pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "property not found")
		} else if db.IsUniqueViolation(err, "") {
			mapped = pkgerrors.Wrap(pkgerrors.CodeConflict, err, "concurrent cover update; retry the upload")
		}
		return nil, mapped
	}

	s.metrics.AddUploaded(len(rows))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"uploaded": len(rows),
		"skipped":  len(skipped),
		"path":     dir,
	}), "image.upload.completed")

	out := make([]ImageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(*row, s.resolver.ResolveOrStored(ctx, row.ImageURL)))
	}
	return &UploadResult{
		Images:     out,
		Count:      len(out),
		UploadPath: dir,
		Skipped:    skipped,
	}, nil
}

var errUnreadable = errors.New("upload part unreadable")

func (s *service) put(ctx context.Context, key string, file UploadFile, mimeType string) error {
	body, err := file.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", errUnreadable, err)
	}
	defer body.Close()
	return s.store.Put(ctx, key, io.LimitReader(body, file.Size), file.Size, mimeType)
}

// discardStored removes objects written for a batch whose rows were never committed.
func (s *service) discardStored(ctx context.Context, stored []storedFile) {
	for _, file := range stored {
		if err := s.store.Delete(ctx, file.key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.metrics.IncDeleteFailure()
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"object_key": file.key,
				"error":      err.Error(),
			}), "image.upload.cleanup_failed")
		}
	}
}

// List returns the gallery of a property. Galleries of listings that are not
// active answer NOT_FOUND unless the actor manages the listing.
func (s *service) List(ctx context.Context, actor auth.Actor, propertyID uuid.UUID) (*ListResult, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property id")
	}
	property, err := s.repo.PropertySummary(ctx, propertyID)
	if err != nil {
		return nil, db.MapError(err, "property not found")
	}
	if !property.VisibleTo(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	rows, err := s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, db.MapError(err, "list images")
	}
	out := make([]ImageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row, s.resolver.ResolveOrStored(ctx, row.ImageURL)))
	}
	return &ListResult{PropertyID: propertyID, Images: out, Count: len(out)}, nil
}

func (s *service) UpdateBatch(ctx context.Context, actor auth.Actor, input UpdateInput) (*UpdateResult, error) {
	if err := validateUpdates(input.Images); err != nil {
		return nil, err
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	ids := uniqueImageIDs(input.Images)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if err := ensureAllFound(ids, rows); err != nil {
			return err
		}

		propertyIDs := distinctProperties(rows)
		for _, propertyID := range propertyIDs {
			property, err := repo.PropertySummary(ctx, propertyID)
			if err != nil {
				return err
			}
			if !actor.CanManage(property.SellerID) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to manage one or more images").
					WithDetails(map[string]any{"property_id": propertyID})
			}
			if err := repo.LockProperty(ctx, propertyID); err != nil {
				return err
			}
		}

		// Rows may have moved or vanished while we waited on the locks.
		rows, err = repo.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if err := ensureAllFound(ids, rows); err != nil {
			return err
		}
		owner := make(map[int64]uuid.UUID, len(rows))
		for _, row := range rows {
			owner[row.ID] = row.PropertyID
		}

		for _, update := range input.Images {
			if update.IsCover != nil && *update.IsCover {
				if err := repo.ClearCover(ctx, owner[update.ImageID], update.ImageID); err != nil {
					return err
				}
			}
			if err := repo.UpdateFields(ctx, update); err != nil {
				return err
			}
		}

		// Unsetting the only cover must not leave a gallery without one.
		for _, propertyID := range propertyIDs {
			hasCover, err := repo.HasCover(ctx, propertyID)
			if err != nil {
				return err
			}
			if !hasCover {
				if _, _, err := repo.PromoteLowestOrder(ctx, propertyID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "concurrent cover update; retry")
		}
		return nil, db.MapError(err, "update images")
	}

	return &UpdateResult{Message: "Images updated successfully", UpdatedCount: len(input.Images)}, nil
}

func validateUpdates(updates []ImageUpdate) error {
	if len(updates) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "images must contain at least one entry")
	}
	if len(updates) > MaxBatchUpdate {
		return pkgerrors.New(pkgerrors.CodeValidation, "too many images in one update").
			WithDetails(map[string]any{"max": MaxBatchUpdate})
	}
	for i, update := range updates {
		field := fmt.Sprintf("images[%d]", i)
		switch {
		case update.ImageID <= 0:
			return pkgerrors.New(pkgerrors.CodeValidation, "imageId must be a positive integer").
				WithDetails(map[string]any{"field": field + ".imageId"})
		case update.DisplayOrder != nil && *update.DisplayOrder < 0:
			return pkgerrors.New(pkgerrors.CodeValidation, "display_order must be zero or greater").
				WithDetails(map[string]any{"field": field + ".display_order"})
		case update.empty():
			return pkgerrors.New(pkgerrors.CodeValidation, "each entry must set display_order or is_cover").
				WithDetails(map[string]any{"field": field})
		}
	}
	return nil
}

func uniqueImageIDs(updates []ImageUpdate) []int64 {
	seen := make(map[int64]struct{}, len(updates))
	ids := make([]int64, 0, len(updates))
	for _, update := range updates {
		if _, ok := seen[update.ImageID]; ok {
			continue
		}
		seen[update.ImageID] = struct{}{}
		ids = append(ids, update.ImageID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func ensureAllFound(ids []int64, rows []models.PropertyImage) error {
	if len(rows) == len(ids) {
		return nil
	}
	found := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		found[row.ID] = struct{}{}
	}
	missing := make([]int64, 0, len(ids)-len(rows))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "one or more images not found").
		WithDetails(map[string]any{"missing_ids": missing})
}

// distinctProperties returns the owning properties in a stable lock order.
func distinctProperties(rows []models.PropertyImage) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.PropertyID]; ok {
			continue
		}
		seen[row.PropertyID] = struct{}{}
		out = append(out, row.PropertyID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, imageID int64) (*DeleteResult, error) {
	if imageID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "imageId must be a positive integer").
			WithDetails(map[string]any{"field": "imageId"})
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	ctx = s.logg.WithImageID(ctx, imageID)

	var deleted *models.PropertyImage
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		row, err := repo.FindByID(ctx, imageID)
		if err != nil {
			return err
		}
		property, err := repo.PropertySummary(ctx, row.PropertyID)
		if err != nil {
			return err
		}
		if !actor.CanManage(property.SellerID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to manage this image")
		}
		if err := repo.LockProperty(ctx, row.PropertyID); err != nil {
			return err
		}
		// Re-read under the lock; a concurrent writer may have changed the cover.
		row, err = repo.FindByID(ctx, imageID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, imageID); err != nil {
			return err
		}
		if row.IsCover {
			if _, _, err := repo.PromoteLowestOrder(ctx, row.PropertyID); err != nil {
				return err
			}
		}
		deleted = row
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "image not found")
		}
		return nil, db.MapError(err, "delete image")
	}

	if err := s.removeObject(ctx, deleted.ImageURL); err != nil {
		s.metrics.IncDeleteFailure()
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"image_url": deleted.ImageURL,
			"error":     err.Error(),
		}), "image.delete.storage_cleanup_failed")
	}

	return &DeleteResult{Message: "Image deleted successfully", DeletedID: imageID}, nil
}

// removeObject deletes the object behind ref when this backend owns it.
func (s *service) removeObject(ctx context.Context, ref string) error {
	key, ok := s.store.KeyFromRef(ref)
	if !ok {
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	s.resolver.Forget(ctx, ref)
	return nil
}

// RemoveStoredObjects deletes every managed object behind refs and combines the failures.
func (s *service) RemoveStoredObjects(ctx context.Context, refs []string) error {
	var combined error
	for _, ref := range refs {
		if err := s.removeObject(ctx, ref); err != nil {
			s.metrics.IncDeleteFailure()
			combined = multierr.Append(combined, fmt.Errorf("remove %s: %w", ref, err))
		}
	}
	return combined
}

func (s *service) StoredRefs(ctx context.Context, propertyID uuid.UUID) ([]string, error) {
	rows, err := s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, db.MapError(err, "list images")
	}
	refs := make([]string, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, row.ImageURL)
	}
	return refs, nil
}

// CoverURLs resolves the cover of each property; properties without a cover are absent.
func (s *service) CoverURLs(ctx context.Context, propertyIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	refs, err := s.repo.CoverRefs(ctx, propertyIDs)
	if err != nil {
		return nil, db.MapError(err, "load cover images")
	}
	out := make(map[uuid.UUID]string, len(refs))
	for id, ref := range refs {
		out[id] = s.resolver.ResolveOrStored(ctx, ref)
	}
	return out, nil
}

// imageMediaType parses a part's Content-Type and accepts only image/* types.
func imageMediaType(contentType string) (string, bool) {
	clean := strings.TrimSpace(contentType)
	if clean == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", false
	}
	mediaType = strings.ToLower(mediaType)
	if !strings.HasPrefix(mediaType, "image/") || len(mediaType) == len("image/") {
		return "", false
	}
	return mediaType, true
}

func originalFilename(name string) *string {
	clean := sanitizeFileName(name)
	if clean == "" {
		return nil
	}
	if runes := []rune(clean); len(runes) > maxOriginalFilename {
		clean = string(runes[:maxOriginalFilename])
	}
	return &clean
}
