package saved

import (
	"context"
	"fmt"

	"github.com/estatehub/estatehub-backend/pkg/db"
	"github.com/estatehub/estatehub-backend/pkg/db/models"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/pagination"
	"github.com/google/uuid"
)

type coverSource interface {
	CoverURLs(ctx context.Context, propertyIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

// ServiceParams groups dependencies for the saved-property service.
type ServiceParams struct {
	Repo   *Repository
	Covers coverSource
}

// Service exposes the favorites of an authenticated user.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*SavedPageDTO, error)
	ListIDs(ctx context.Context, userID uuid.UUID, params pagination.Params) (*SavedIDsDTO, error)
	Add(ctx context.Context, userID, propertyID uuid.UUID) (*AddResult, error)
	Remove(ctx context.Context, userID, propertyID uuid.UUID) error
}

type service struct {
	repo   *Repository
	covers coverSource
}

// NewService builds a saved-property service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("saved repository required")
	}
	if params.Covers == nil {
		return nil, fmt.Errorf("cover source required")
	}
	return &service{repo: params.Repo, covers: params.Covers}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*SavedPageDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	records, err := s.repo.List(ctx, userID, cursor, params.Limit)
	if err != nil {
		return nil, db.MapError(err, "list saved properties")
	}
	records, next := pagination.Trim(records, params.Limit, func(r savedRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.SavedAt, ID: r.SavedID}
	})

	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.PropertyID)
	}
	covers, err := s.covers.CoverURLs(ctx, ids)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, userID)
	if err != nil {
		return nil, db.MapError(err, "count saved properties")
	}

	items := make([]SavedItemDTO, 0, len(records))
	for _, r := range records {
		items = append(items, r.toDTO(covers[r.PropertyID]))
	}
	return &SavedPageDTO{Items: items, Total: total, NextCursor: next}, nil
}

func (s *service) ListIDs(ctx context.Context, userID uuid.UUID, params pagination.Params) (*SavedIDsDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListIDs(ctx, userID, cursor, params.Limit)
	if err != nil {
		return nil, db.MapError(err, "list saved property ids")
	}
	page, next := pagination.Trim(rows, params.Limit, func(row models.SavedProperty) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	ids := make([]uuid.UUID, 0, len(page))
	for _, row := range page {
		ids = append(ids, row.PropertyID)
	}
	return &SavedIDsDTO{PropertyIDs: ids, NextCursor: next}, nil
}

// Add is idempotent; saving a listing twice keeps the first entry.
func (s *service) Add(ctx context.Context, userID, propertyID uuid.UUID) (*AddResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property_id is required")
	}
	created, err := s.repo.Add(ctx, userID, propertyID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "property not found")
		}
		return nil, db.MapError(err, "save property")
	}
	return &AddResult{PropertyID: propertyID, Created: created}, nil
}

// Remove drops the entry regardless of prior state.
func (s *service) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if propertyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "property id is required")
	}
	if err := s.repo.Remove(ctx, userID, propertyID); err != nil {
		return db.MapError(err, "remove saved property")
	}
	return nil
}
