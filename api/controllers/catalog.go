package controllers

import (
	"net/http"

	"github.com/estatehub/estatehub-backend/api/responses"
	"github.com/estatehub/estatehub-backend/api/validators"
	"github.com/estatehub/estatehub-backend/internal/catalog"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/logger"
)

func FeatureList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		features, err := svc.Features(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"features": features, "count": len(features)})
	}
}

// NeighborhoodList filters by ?city= when present.
func NeighborhoodList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		city := validators.SanitizeString(r.URL.Query().Get("city"), 120)
		neighborhoods, err := svc.Neighborhoods(ctx, city)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"neighborhoods": neighborhoods, "count": len(neighborhoods)})
	}
}
