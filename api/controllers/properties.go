package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/estatehub/estatehub-backend/api/responses"
	"github.com/estatehub/estatehub-backend/api/validators"
	"github.com/estatehub/estatehub-backend/internal/properties"
	"github.com/estatehub/estatehub-backend/pkg/enums"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/pagination"
)

// PropertyList returns active listings newest first.
func PropertyList(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.List(ctx, properties.ListInput{Filters: filters, Pagination: params})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func parseListFilters(r *http.Request) (properties.ListFilters, error) {
	query := r.URL.Query()
	filters := properties.ListFilters{City: validators.SanitizeString(query.Get("city"), 120)}

	if raw := strings.TrimSpace(query.Get("property_type")); raw != "" {
		value, err := enums.ParsePropertyType(raw)
		if err != nil {
			return filters, invalidQuery("property_type", err)
		}
		filters.PropertyType = &value
	}
	if raw := strings.TrimSpace(query.Get("operation_type")); raw != "" {
		value, err := enums.ParseOperationType(raw)
		if err != nil {
			return filters, invalidQuery("operation_type", err)
		}
		filters.OperationType = &value
	}
	for _, bound := range []struct {
		key  string
		dest **decimal.Decimal
	}{
		{"min_price", &filters.MinPrice},
		{"max_price", &filters.MaxPrice},
	} {
		raw := strings.TrimSpace(query.Get(bound.key))
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil || value.IsNegative() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "price filter must be a non-negative number").
				WithDetails(map[string]any{"field": bound.key})
		}
		*bound.dest = &value
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}
	if strings.TrimSpace(query.Get("min_bedrooms")) != "" {
		value, err := validators.ParseQueryInt(r, "min_bedrooms", 0, 0, 100)
		if err != nil {
			return filters, err
		}
		filters.MinBedrooms = &value
	}
	return filters, nil
}

func invalidQuery(field string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).WithDetails(map[string]any{"field": field})
}

// PropertyDetail returns one listing with its gallery and features. Drafts are visible to their owner.
func PropertyDetail(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		propertyID, err := validators.ParseUUIDParam(r, "propertyId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.Detail(ctx, optionalActor(ctx), propertyID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// PropertyMap returns active listings within radius_km of lat/lng, nearest first.
func PropertyMap(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		lat, err := validators.ParseQueryFloat(r, "lat", -90, 90)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		lng, err := validators.ParseQueryFloat(r, "lng", -180, 180)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if lat == nil || lng == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng are required"))
			return
		}
		radius, err := validators.ParseQueryFloat(r, "radius_km", 0, properties.MaxRadiusKm)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := properties.MapInput{Latitude: *lat, Longitude: *lng, Limit: limit}
		if radius != nil {
			input.RadiusKm = *radius
		}
		resp, err := svc.MapSearch(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// PropertySearch runs a full-text query against the search index.
func PropertySearch(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, 50)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		query := r.URL.Query()
		resp, err := svc.Search(ctx, properties.SearchInput{
			Query:         validators.SanitizeString(query.Get("q"), 200),
			City:          validators.SanitizeString(query.Get("city"), 120),
			PropertyType:  strings.TrimSpace(query.Get("property_type")),
			OperationType: strings.TrimSpace(query.Get("operation_type")),
			Limit:         limit,
			Offset:        offset,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
