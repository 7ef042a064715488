package catalog

import (
	"context"
	"fmt"

	"github.com/estatehub/estatehub-backend/pkg/db"
)

// Service exposes read-only catalog data.
type Service interface {
	Features(ctx context.Context) ([]FeatureDTO, error)
	Neighborhoods(ctx context.Context, city string) ([]NeighborhoodDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Features(ctx context.Context) ([]FeatureDTO, error) {
	rows, err := s.repo.ListFeatures(ctx)
	if err != nil {
		return nil, db.MapError(err, "list features")
	}
	out := make([]FeatureDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToFeatureDTO(row))
	}
	return out, nil
}

func (s *service) Neighborhoods(ctx context.Context, city string) ([]NeighborhoodDTO, error) {
	rows, err := s.repo.ListNeighborhoods(ctx, city)
	if err != nil {
		return nil, db.MapError(err, "list neighborhoods")
	}
	out := make([]NeighborhoodDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toNeighborhoodDTO(row))
	}
	return out, nil
}
