package properties

import (
	"github.com/estatehub/estatehub-backend/pkg/db/models"
	"github.com/estatehub/estatehub-backend/pkg/search"
)

// Document projects a listing onto the search index.
func Document(row models.Property) search.Document {
	doc := search.Document{
		ID:            row.ID.String(),
		Title:         row.Title,
		AddressLine:   row.AddressLine,
		City:          row.City,
		State:         row.State,
		ZipCode:       row.ZipCode,
		PropertyType:  row.PropertyType.String(),
		OperationType: row.OperationType.String(),
		ListingStatus: row.ListingStatus.String(),
		Price:         row.Price.InexactFloat64(),
		Bedrooms:      row.Bedrooms,
		CreatedAt:     row.CreatedAt.Unix(),
	}
	if row.Description != nil {
		doc.Description = *row.Description
	}
	return doc
}
