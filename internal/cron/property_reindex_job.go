package cron

import (
	"context"
	"fmt"

	"github.com/estatehub/estatehub-backend/internal/properties"
	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/search"
	"github.com/google/uuid"
)

const defaultReindexBatch = 200

type PropertyReindexJobParams struct {
	Logger     *logger.Logger
	Properties activePropertyLister
	Index      documentIndex
	BatchSize  int
}

type activePropertyLister interface {
	ListActivePage(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Property, error)
}

type documentIndex interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, docs ...search.Document) error
}

// NewPropertyReindexJob pushes every active listing to the search index so entries
// missed by best-effort indexing on write converge.
func NewPropertyReindexJob(params PropertyReindexJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Properties == nil {
		return nil, fmt.Errorf("property repository required")
	}
	if params.Index == nil {
		return nil, fmt.Errorf("search index required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReindexBatch
	}
	return &propertyReindexJob{
		logg:  params.Logger,
		repo:  params.Properties,
		index: params.Index,
		batch: batch,
	}, nil
}

type propertyReindexJob struct {
	logg  *logger.Logger
	repo  activePropertyLister
	index documentIndex
	batch int
}

func (j *propertyReindexJob) Name() string { return "property-search-reindex" }

func (j *propertyReindexJob) Run(ctx context.Context) error {
	if err := j.index.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure search index: %w", err)
	}
	var (
		afterID uuid.UUID
		indexed int
		batches int
	)
	for {
		rows, err := j.repo.ListActivePage(ctx, afterID, j.batch)
		if err != nil {
			return fmt.Errorf("list active properties: %w", err)
		}
		if len(rows) == 0 {
			break
		}
		docs := make([]search.Document, 0, len(rows))
		for _, row := range rows {
			docs = append(docs, properties.Document(row))
		}
		if err := j.index.Upsert(ctx, docs...); err != nil {
			return fmt.Errorf("index batch after %s: %w", afterID, err)
		}
		indexed += len(docs)
		batches++
		afterID = rows[len(rows)-1].ID
		if len(rows) < j.batch {
			break
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"indexed": indexed,
		"batches": batches,
	}), "property.reindex.complete")
	return nil
}
