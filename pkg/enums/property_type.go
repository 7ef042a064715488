package enums

import "fmt"

// PropertyType classifies the kind of dwelling or lot being listed.
type PropertyType string

const (
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeCondo      PropertyType = "condo"
	PropertyTypeTownhouse  PropertyType = "townhouse"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
)

var validPropertyTypes = []PropertyType{
	PropertyTypeHouse,
	PropertyTypeApartment,
	PropertyTypeCondo,
	PropertyTypeTownhouse,
	PropertyTypeLand,
	PropertyTypeCommercial,
}

func (v PropertyType) String() string {
	return string(v)
}

// IsValid reports whether the value is known.
func (v PropertyType) IsValid() bool {
	for _, candidate := range validPropertyTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePropertyType converts raw input into a PropertyType.
func ParsePropertyType(value string) (PropertyType, error) {
	for _, candidate := range validPropertyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid property type %q", value)
}
