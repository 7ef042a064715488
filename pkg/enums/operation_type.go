package enums

import "fmt"

// OperationType distinguishes sale listings from rentals.
type OperationType string

const (
	OperationTypeSale OperationType = "sale"
	OperationTypeRent OperationType = "rent"
)

var validOperationTypes = []OperationType{
	OperationTypeSale,
	OperationTypeRent,
}

func (v OperationType) String() string {
	return string(v)
}

// IsValid reports whether the value is known.
func (v OperationType) IsValid() bool {
	for _, candidate := range validOperationTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseOperationType converts raw input into a OperationType.
func ParseOperationType(value string) (OperationType, error) {
	for _, candidate := range validOperationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation type %q", value)
}
