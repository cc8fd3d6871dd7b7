package address

import (
	"fmt"
	"strings"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	"github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

// Compose builds the canonical postal string for the given market. It is
// pure: the same fields always compose to the same string. A missing
// required field fails validation naming the first one missing, in the
// order the form presents them.
func Compose(market enums.Market, fields types.AddressFields) (string, error) {
	switch market {
	case enums.MarketDomestic:
		return composeDomestic(fields)
	case enums.MarketInternational:
		return composeInternational(fields)
	default:
		return "", errors.New(errors.CodeValidation, fmt.Sprintf("unknown market %q", market))
	}
}

func composeDomestic(fields types.AddressFields) (string, error) {
	required := []struct {
		name  string
		value string
	}{
		{"street", fields.Street},
		{"building", fields.Building},
		{"city", fields.City},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return "", missingField(field.name)
		}
	}

	segments := []string{
		labeled("street", fields.Street),
		labeled("building", fields.Building),
		labeled("apartment", fields.Apartment),
		labeled("entrance", fields.Entrance),
		labeled("floor", fields.Floor),
		strings.TrimSpace(fields.City),
	}
	return joinNonEmpty(segments), nil
}

func composeInternational(fields types.AddressFields) (string, error) {
	required := []struct {
		name  string
		value string
	}{
		{"street", fields.Street},
		{"city", fields.City},
		{"state", fields.State},
		{"postal_code", fields.PostalCode},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return "", missingField(field.name)
		}
	}

	segments := []string{
		strings.TrimSpace(fields.Street),
		strings.TrimSpace(fields.Line2),
		strings.TrimSpace(fields.City),
		strings.TrimSpace(fields.State),
		strings.TrimSpace(fields.PostalCode),
	}
	return joinNonEmpty(segments), nil
}

func labeled(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return label + " " + value
}

func joinNonEmpty(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment != "" {
			parts = append(parts, segment)
		}
	}
	return strings.Join(parts, ", ")
}

func missingField(name string) error {
	return errors.New(errors.CodeValidation, fmt.Sprintf("%s is required", name)).
		WithDetails(map[string]any{"field": name})
}
