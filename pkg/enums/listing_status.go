package enums

import "fmt"

// ListingStatus tracks where a listing is in its lifecycle.
type ListingStatus string

const (
	ListingStatusDraft    ListingStatus = "draft"
	ListingStatusActive   ListingStatus = "active"
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusInactive ListingStatus = "inactive"
)

var validListingStatuses = []ListingStatus{
	ListingStatusDraft,
	ListingStatusActive,
	ListingStatusPending,
	ListingStatusSold,
	ListingStatusInactive,
}

func (v ListingStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is known.
func (v ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
