package properties

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/estatehub/estatehub-backend/internal/catalog"
	"github.com/estatehub/estatehub-backend/internal/images"
	"github.com/estatehub/estatehub-backend/pkg/auth"
	"github.com/estatehub/estatehub-backend/pkg/db"
	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/estatehub/estatehub-backend/pkg/enums"
	pkgerrors "github.com/estatehub/estatehub-backend/pkg/errors"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/maps"
	"github.com/estatehub/estatehub-backend/pkg/pagination"
	"github.com/estatehub/estatehub-backend/pkg/search"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultCurrency = "USD"
	maxSearchLimit  = 50
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type imageGallery interface {
	List(ctx context.Context, actor auth.Actor, propertyID uuid.UUID) (*images.ListResult, error)
	CoverURLs(ctx context.Context, propertyIDs []uuid.UUID) (map[uuid.UUID]string, error)
	StoredRefs(ctx context.Context, propertyID uuid.UUID) ([]string, error)
	RemoveStoredObjects(ctx context.Context, refs []string) error
}

type searchIndex interface {
	Upsert(ctx context.Context, docs ...search.Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type geocoder interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.AutocompleteSuggestion, error)
	ResolvePlace(ctx context.Context, placeID string) (*maps.Place, error)
	Geocode(ctx context.Context, address string) (*maps.Place, error)
}

// Service exposes listing browse and seller management.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListPage, error)
	ListBySeller(ctx context.Context, actor auth.Actor, params pagination.Params) (*ListPage, error)
	Detail(ctx context.Context, actor auth.Actor, id uuid.UUID) (*DetailDTO, error)
	MapSearch(ctx context.Context, input MapInput) (*MapResult, error)
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	Create(ctx context.Context, actor auth.Actor, input CreateInput) (*DetailDTO, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateInput) (*DetailDTO, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	ReplaceFeatures(ctx context.Context, actor auth.Actor, id uuid.UUID, input ReplaceFeaturesInput) ([]catalog.FeatureDTO, error)
	Autocomplete(ctx context.Context, input string) ([]maps.AutocompleteSuggestion, error)
}

// ServiceParams wires the listing service. Search and Geocoder are optional.
type ServiceParams struct {
	Repo     Repository
	DB       txRunner
	Images   imageGallery
	Search   searchIndex
	Geocoder geocoder
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	db       txRunner
	images   imageGallery
	search   searchIndex
	geocoder geocoder
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("property repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Images == nil {
		return nil, fmt.Errorf("image service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		db:       params.DB,
		images:   params.Images,
		search:   params.Search,
		geocoder: params.Geocoder,
		logg:     params.Logger,
	}, nil
}

// List pages through active listings, newest first.
func (s *service) List(ctx context.Context, input ListInput) (*ListPage, error) {
	if err := validateFilters(input.Filters); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, ListQuery{
		Filters:    input.Filters,
		ActiveOnly: true,
		Cursor:     cursor,
		Limit:      input.Pagination.Limit,
	})
	if err != nil {
		return nil, db.MapError(err, "list properties")
	}
	return s.page(ctx, rows, input.Pagination.Limit)
}

// ListBySeller includes drafts and inactive listings of the caller.
func (s *service) ListBySeller(ctx context.Context, actor auth.Actor, params pagination.Params) (*ListPage, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	sellerID := actor.UserID
	rows, err := s.repo.List(ctx, ListQuery{SellerID: &sellerID, Cursor: cursor, Limit: params.Limit})
	if err != nil {
		return nil, db.MapError(err, "list seller properties")
	}
	return s.page(ctx, rows, params.Limit)
}

func (s *service) page(ctx context.Context, rows []models.Property, limit int) (*ListPage, error) {
	rows, next := pagination.Trim(rows, limit, func(p models.Property) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	items, err := s.summaries(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &ListPage{Items: items, NextCursor: next}, nil
}

func (s *service) summaries(ctx context.Context, rows []models.Property) ([]SummaryDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	covers, err := s.images.CoverURLs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]SummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSummary(row, covers[row.ID]))
	}
	return out, nil
}

// Detail hides non-active listings from everyone but their seller and admins.
func (s *service) Detail(ctx context.Context, actor auth.Actor, id uuid.UUID) (*DetailDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property id")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "property not found")
	}
	if row.ListingStatus != enums.ListingStatusActive && !actor.CanManage(row.SellerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	return s.detail(ctx, actor, row)
}

func (s *service) detail(ctx context.Context, actor auth.Actor, row *models.Property) (*DetailDTO, error) {
	gallery, err := s.images.List(ctx, actor, row.ID)
	if err != nil {
		return nil, err
	}
	features, err := s.repo.FeaturesFor(ctx, row.ID)
	if err != nil {
		return nil, db.MapError(err, "load property features")
	}

	var cover string
	for _, img := range gallery.Images {
		if img.IsCover {
			cover = img.ImageURL
			break
		}
	}
	dto := &DetailDTO{
		SummaryDTO:  toSummary(*row, cover),
		SellerID:    row.SellerID,
		Description: row.Description,
		YearBuilt:   row.YearBuilt,
		UpdatedAt:   row.UpdatedAt,
		Images:      gallery.Images,
		Features:    make([]catalog.FeatureDTO, 0, len(features)),
	}
	for _, f := range features {
		dto.Features = append(dto.Features, catalog.ToFeatureDTO(f))
	}
	return dto, nil
}

// MapSearch prefilters by bounding box in SQL, then keeps listings within the exact
// great-circle radius, nearest first.
func (s *service) MapSearch(ctx context.Context, input MapInput) (*MapResult, error) {
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lat/lng out of range")
	}
	radius := input.RadiusKm
	if radius == 0 {
		radius = DefaultRadiusKm
	}
	if radius < 0 || radius > MaxRadiusKm {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "radius_km must be between 0 and %g", MaxRadiusKm)
	}

	candidates, err := s.repo.WithinBox(ctx, boxAround(input.Latitude, input.Longitude, radius), maxMapCandidates)
	if err != nil {
		return nil, db.MapError(err, "map search")
	}

	type hit struct {
		row      models.Property
		distance float64
	}
	hits := make([]hit, 0, len(candidates))
	for _, row := range candidates {
		if !row.HasLocation() {
			continue
		}
		d := distanceKm(input.Latitude, input.Longitude, *row.Latitude, *row.Longitude)
		if d <= radius {
			hits = append(hits, hit{row: row, distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	if limit := pagination.NormalizeLimit(input.Limit); len(hits) > limit {
		hits = hits[:limit]
	}

	rows := make([]models.Property, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, h.row)
	}
	summaries, err := s.summaries(ctx, rows)
	if err != nil {
		return nil, err
	}
	items := make([]MapItemDTO, 0, len(hits))
	for i, h := range hits {
		items = append(items, MapItemDTO{SummaryDTO: summaries[i], DistanceKm: roundKm(h.distance)})
	}
	return &MapResult{
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		RadiusKm:  radius,
		Items:     items,
		Count:     len(items),
	}, nil
}

func roundKm(km float64) float64 {
	return float64(int64(km*1000+0.5)) / 1000
}

// Search runs full-text matching in the index and re-reads hits from the database in
// relevance order. Hits that are gone or no longer active are dropped.
func (s *service) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	if s.search == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "search is not configured")
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "q is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	res, err := s.search.Search(ctx, search.Query{
		Text:          query,
		City:          input.City,
		PropertyType:  input.PropertyType,
		OperationType: input.OperationType,
		OnlyActive:    true,
		Limit:         int64(limit),
		Offset:        int64(offset),
	})
	if err != nil {
		if errors.Is(err, search.ErrDisabled) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "search is not configured")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search unavailable")
	}

	ids := make([]uuid.UUID, 0, len(res.IDs))
	for _, raw := range res.IDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, db.MapError(err, "load search hits")
	}
	byID := make(map[uuid.UUID]models.Property, len(found))
	for _, row := range found {
		byID[row.ID] = row
	}
	rows := make([]models.Property, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok && row.ListingStatus == enums.ListingStatusActive {
			rows = append(rows, row)
		}
	}
	items, err := s.summaries(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Query: query, Items: items, Total: res.Total}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*DetailDTO, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	row := &models.Property{
		ID:            uuid.New(),
		SellerID:      actor.UserID,
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Price:         input.Price,
		Currency:      strings.ToUpper(input.Currency),
		AddressLine:   strings.TrimSpace(input.AddressLine),
		City:          strings.TrimSpace(input.City),
		State:         strings.TrimSpace(input.State),
		Country:       strings.TrimSpace(input.Country),
		ZipCode:       strings.TrimSpace(input.ZipCode),
		PropertyType:  input.PropertyType,
		OperationType: input.OperationType,
		ListingStatus: input.ListingStatus,
		Bedrooms:      input.Bedrooms,
		Bathrooms:     input.Bathrooms,
		AreaM2:        input.AreaM2,
		YearBuilt:     input.YearBuilt,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
	}
	if !row.HasLocation() {
		row.Latitude, row.Longitude = nil, nil
		s.locate(ctx, row, input.PlaceID)
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, db.MapError(err, "create property")
	}
	s.index(ctx, *row)

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"property_id": row.ID.String(),
		"seller_id":   row.SellerID.String(),
		"geocoded":    row.HasLocation(),
	}), "property.created")
	return s.detail(ctx, actor, row)
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateInput) (*DetailDTO, error) {
	row, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	fields, err := updateFields(input)
	if err != nil {
		return nil, err
	}
	if input.touchesAddress() && input.Latitude == nil && input.Longitude == nil {
		merged := *row
		applyAddress(&merged, input)
		merged.Latitude, merged.Longitude = nil, nil
		s.locate(ctx, &merged, "")
		if merged.HasLocation() {
			fields["latitude"] = *merged.Latitude
			fields["longitude"] = *merged.Longitude
		}
	}
	if len(fields) == 0 {
		return s.detail(ctx, actor, row)
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, db.MapError(err, "update property")
	}
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "property not found")
	}
	s.index(ctx, *updated)
	return s.detail(ctx, actor, updated)
}

// Delete removes the row first; stored objects and the index entry are cleaned up after.
func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	row, err := s.manageable(ctx, actor, id)
	if err != nil {
		return err
	}
	refs, err := s.images.StoredRefs(ctx, row.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return db.MapError(err, "property not found")
	}

	ctx = s.logg.WithPropertyID(ctx, row.ID.String())
	if err := s.images.RemoveStoredObjects(ctx, refs); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "property.delete.storage_cleanup_failed")
	}
	if s.search != nil {
		if err := s.search.Delete(ctx, row.ID.String()); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "property.delete.unindex_failed")
		}
	}
	s.logg.Info(s.logg.WithField(ctx, "images_removed", len(refs)), "property.deleted")
	return nil
}

func (s *service) ReplaceFeatures(ctx context.Context, actor auth.Actor, id uuid.UUID, input ReplaceFeaturesInput) ([]catalog.FeatureDTO, error) {
	if _, err := s.manageable(ctx, actor, id); err != nil {
		return nil, err
	}
	featureIDs := uniqueFeatureIDs(input.FeatureIDs)
	for _, fid := range featureIDs {
		if fid <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "feature ids must be positive")
		}
	}

	var out []catalog.FeatureDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ReplaceFeatures(ctx, id, featureIDs); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "feature not found")
			}
			return db.MapError(err, "replace features")
		}
		rows, err := repo.FeaturesFor(ctx, id)
		if err != nil {
			return db.MapError(err, "load property features")
		}
		out = make([]catalog.FeatureDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, catalog.ToFeatureDTO(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Autocomplete(ctx context.Context, input string) ([]maps.AutocompleteSuggestion, error) {
	if s.geocoder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address autocomplete is not configured")
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "input is required")
	}
	return s.geocoder.Autocomplete(ctx, maps.AutocompleteRequest{Input: input})
}

func (s *service) manageable(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Property, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property id")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "property not found")
	}
	if !actor.CanManage(row.SellerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "property belongs to another seller")
	}
	return row, nil
}

// locate fills in coordinates from a place id or the postal address. Failures leave
// the listing without a location.
func (s *service) locate(ctx context.Context, row *models.Property, placeID string) {
	if s.geocoder == nil {
		return
	}
	var (
		place *maps.Place
		err   error
	)
	if placeID = strings.TrimSpace(placeID); placeID != "" {
		place, err = s.geocoder.ResolvePlace(ctx, placeID)
	} else {
		place, err = s.geocoder.Geocode(ctx, postalAddress(*row))
	}
	if err != nil {
		level := s.logg.Warn
		if errors.Is(err, maps.ErrNoMatch) {
			level = s.logg.Info
		}
		level(s.logg.WithField(ctx, "error", err.Error()), "property.geocode.skipped")
		return
	}
	lat, lng := place.Location.Latitude, place.Location.Longitude
	row.Latitude, row.Longitude = &lat, &lng
}

// index pushes the listing to search; the database stays the source of truth.
func (s *service) index(ctx context.Context, row models.Property) {
	if s.search == nil {
		return
	}
	if err := s.search.Upsert(ctx, Document(row)); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"property_id": row.ID.String(),
			"error":       err.Error(),
		}), "property.index_failed")
	}
}

func postalAddress(p models.Property) string {
	parts := []string{p.AddressLine, p.City, p.State, p.ZipCode, p.Country}
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ", ")
}

func applyAddress(p *models.Property, in UpdateInput) {
	if in.AddressLine != nil {
		p.AddressLine = *in.AddressLine
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.State != nil {
		p.State = *in.State
	}
	if in.Country != nil {
		p.Country = *in.Country
	}
	if in.ZipCode != nil {
		p.ZipCode = *in.ZipCode
	}
}

func validateCreate(in *CreateInput) error {
	if !in.Price.IsPositive() {
		return fieldError("price", "must be greater than 0")
	}
	if !in.PropertyType.IsValid() {
		return fieldError("property_type", "unknown property type")
	}
	if !in.OperationType.IsValid() {
		return fieldError("operation_type", "unknown operation type")
	}
	switch in.ListingStatus {
	case "":
		in.ListingStatus = enums.ListingStatusDraft
	case enums.ListingStatusDraft, enums.ListingStatusActive:
	default:
		return fieldError("listing_status", "new listings start as draft or active")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return fieldError("latitude", "latitude and longitude must be set together")
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = defaultCurrency
	}
	return nil
}

func updateFields(in UpdateInput) (map[string]any, error) {
	fields := map[string]any{}
	setString := func(column string, v *string) {
		if v != nil {
			fields[column] = strings.TrimSpace(*v)
		}
	}
	setString("title", in.Title)
	setString("address_line", in.AddressLine)
	setString("city", in.City)
	setString("state", in.State)
	setString("country", in.Country)
	setString("zip_code", in.ZipCode)
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Currency != nil {
		fields["currency"] = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, fieldError("price", "must be greater than 0")
		}
		fields["price"] = *in.Price
	}
	if in.PropertyType != nil {
		if !in.PropertyType.IsValid() {
			return nil, fieldError("property_type", "unknown property type")
		}
		fields["property_type"] = *in.PropertyType
	}
	if in.OperationType != nil {
		if !in.OperationType.IsValid() {
			return nil, fieldError("operation_type", "unknown operation type")
		}
		fields["operation_type"] = *in.OperationType
	}
	if in.ListingStatus != nil {
		if !in.ListingStatus.IsValid() {
			return nil, fieldError("listing_status", "unknown listing status")
		}
		fields["listing_status"] = *in.ListingStatus
	}
	if in.Bedrooms != nil {
		fields["bedrooms"] = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		fields["bathrooms"] = *in.Bathrooms
	}
	if in.AreaM2 != nil {
		fields["area_m2"] = *in.AreaM2
	}
	if in.YearBuilt != nil {
		fields["year_built"] = *in.YearBuilt
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, fieldError("latitude", "latitude and longitude must be set together")
	}
	if in.Latitude != nil {
		fields["latitude"] = *in.Latitude
		fields["longitude"] = *in.Longitude
	}
	return fields, nil
}

func validateFilters(f ListFilters) error {
	if f.PropertyType != nil && !f.PropertyType.IsValid() {
		return fieldError("property_type", "unknown property type")
	}
	if f.OperationType != nil && !f.OperationType.IsValid() {
		return fieldError("operation_type", "unknown operation type")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return fieldError("min_price", "must not exceed max_price")
	}
	if f.MinBedrooms != nil && *f.MinBedrooms < 0 {
		return fieldError("min_bedrooms", "must be >= 0")
	}
	return nil
}

func uniqueFeatureIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: message})
}
