package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/estatehub/estatehub-backend/api/middleware"
	"github.com/estatehub/estatehub-backend/api/validators"
	"github.com/estatehub/estatehub-backend/pkg/auth"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/pagination"
	"github.com/google/uuid"
)

// requireActor returns the authenticated caller or an UNAUTHORIZED error.
func requireActor(ctx context.Context) (auth.Actor, error) {
	claims := middleware.ClaimsFromContext(ctx)
	if claims == nil || claims.UserID == uuid.Nil {
		return auth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return claims.Actor(), nil
}

// optionalActor is the zero Actor for anonymous requests.
func optionalActor(ctx context.Context) auth.Actor {
	if claims := middleware.ClaimsFromContext(ctx); claims != nil {
		return claims.Actor()
	}
	return auth.Actor{}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
