package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estatehub/estatehub-backend/internal/images"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/metrics"
	"github.com/estatehub/estatehub-backend/pkg/storage"
	"go.uber.org/multierr"
)

const (
	defaultReconcileGrace = time.Hour
	reconcilePageSize     = 500
)

type ImageReconcileJobParams struct {
	Logger  *logger.Logger
	Store   storage.Store
	Images  managedRefRepo
	Metrics *metrics.ImageMetrics
	// Grace protects objects written by uploads whose rows are not committed yet.
	Grace time.Duration
}

type managedRefRepo interface {
	ListManagedRefs(ctx context.Context, afterID int64, limit int) ([]images.ManagedRef, error)
	MarkStorageMissing(ctx context.Context, ids []int64, at time.Time) (int64, error)
	ClearStorageMissing(ctx context.Context, ids []int64) (int64, error)
}

// NewImageReconcileJob builds the job that keeps image rows and stored objects in step:
// unreferenced objects past the grace period are deleted, and rows whose object is
// gone are flagged with storage_missing_at.
func NewImageReconcileJob(params ImageReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("image store required")
	}
	if params.Images == nil {
		return nil, fmt.Errorf("image repository required")
	}
	grace := params.Grace
	if grace <= 0 {
		grace = defaultReconcileGrace
	}
	return &imageReconcileJob{
		logg:     params.Logger,
		store:    params.Store,
		repo:     params.Images,
		metrics:  params.Metrics,
		grace:    grace,
		pageSize: reconcilePageSize,
		now:      time.Now,
	}, nil
}

type imageReconcileJob struct {
	logg     *logger.Logger
	store    storage.Store
	repo     managedRefRepo
	metrics  *metrics.ImageMetrics
	grace    time.Duration
	pageSize int
	now      func() time.Time
}

func (j *imageReconcileJob) Name() string { return "image-storage-reconcile" }

type reconcileStats struct {
	rowsScanned    int
	missingMarked  int64
	missingCleared int64
	objectsScanned int
	orphansDeleted int
}

func (j *imageReconcileJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var stats reconcileStats

	referenced, rowsErr := j.checkRows(ctx, now, &stats)
	if referenced == nil {
		// Without the full reference set, deleting objects is unsafe.
		return fmt.Errorf("image reconcile: %w", rowsErr)
	}
	objectsErr := j.sweepObjects(ctx, now.Add(-j.grace), referenced, &stats)

	j.metrics.AddMissingMarked(int(stats.missingMarked))
	j.metrics.AddOrphansDeleted(stats.orphansDeleted)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"rows_scanned":    stats.rowsScanned,
		"missing_marked":  stats.missingMarked,
		"missing_cleared": stats.missingCleared,
		"objects_scanned": stats.objectsScanned,
		"orphans_deleted": stats.orphansDeleted,
		"grace":           j.grace.String(),
	}), "image.reconcile.complete")

	if err := multierr.Combine(rowsErr, objectsErr); err != nil {
		return fmt.Errorf("image reconcile: %w", err)
	}
	return nil
}

// checkRows stats every managed reference. It returns nil keys only when paging the
// table itself failed; per-object failures are collected in the error.
func (j *imageReconcileJob) checkRows(ctx context.Context, now time.Time, stats *reconcileStats) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	var (
		combined error
		afterID  int64
	)
	for {
		page, err := j.repo.ListManagedRefs(ctx, afterID, j.pageSize)
		if err != nil {
			return nil, multierr.Append(combined, fmt.Errorf("list image rows after %d: %w", afterID, err))
		}
		if len(page) == 0 {
			return keys, combined
		}
		afterID = page[len(page)-1].ID
		stats.rowsScanned += len(page)

		var missing, present []int64
		for _, ref := range page {
			key, ok := j.store.KeyFromRef(ref.ImageURL)
			if !ok {
				continue
			}
			keys[key] = struct{}{}
			_, statErr := j.store.Stat(ctx, key)
			switch {
			case errors.Is(statErr, storage.ErrNotFound):
				if ref.StorageMissingAt == nil {
					missing = append(missing, ref.ID)
				}
			case statErr != nil:
				combined = multierr.Append(combined, fmt.Errorf("stat %s: %w", key, statErr))
			case ref.StorageMissingAt != nil:
				present = append(present, ref.ID)
			}
		}

		marked, err := j.repo.MarkStorageMissing(ctx, missing, now)
		combined = multierr.Append(combined, err)
		stats.missingMarked += marked
		cleared, err := j.repo.ClearStorageMissing(ctx, present)
		combined = multierr.Append(combined, err)
		stats.missingCleared += cleared

		if len(page) < j.pageSize {
			return keys, combined
		}
	}
}

func (j *imageReconcileJob) sweepObjects(ctx context.Context, cutoff time.Time, referenced map[string]struct{}, stats *reconcileStats) error {
	var combined error
	listErr := j.store.List(ctx, storage.KeyPrefix, func(obj storage.ObjectInfo) error {
		stats.objectsScanned++
		if _, ok := referenced[obj.Key]; ok {
			return nil
		}
		if obj.LastModified.IsZero() || !obj.LastModified.Before(cutoff) {
			return nil
		}
		if err := j.store.Delete(ctx, obj.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			combined = multierr.Append(combined, fmt.Errorf("delete orphan %s: %w", obj.Key, err))
			return nil
		}
		stats.orphansDeleted++
		j.logg.Debug(j.logg.WithField(ctx, "object_key", obj.Key), "image.reconcile.orphan_deleted")
		return nil
	})
	if listErr != nil {
		combined = multierr.Append(combined, fmt.Errorf("list stored objects: %w", listErr))
	}
	return combined
}
