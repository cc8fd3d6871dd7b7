package payment

import (
	"strings"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	"github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

const cashLabel = "cash on delivery"

// Selection is a resolved payment choice: the code the order API accepts
// plus the label shown to the shopper. MethodID is empty for ad-hoc picks.
type Selection struct {
	MethodID string `json:"method_id,omitempty"`
	Code     string `json:"code"`
	Label    string `json:"label"`
}

// ResolveMethod maps a saved payment method to a backend code and display
// label. Known types map to themselves; unrecognized types pass through
// unchanged with the raw type as label.
func ResolveMethod(method types.PaymentMethod) Selection {
	selection := resolveType(string(method.Type))
	selection.MethodID = method.ID
	if method.Type == enums.PaymentMethodTypeCard && method.CardLast4 != "" {
		brand := method.CardBrand
		if brand == "" {
			brand = "card"
		}
		selection.Label = brand + " •••• " + method.CardLast4
	}
	return selection
}

// ResolveType maps a raw type string the shopper picked without a saved
// method.
func ResolveType(raw string) (Selection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selection{}, errors.New(errors.CodeValidation, "payment type is required")
	}
	return resolveType(raw), nil
}

// DefaultSelection picks the shopper's default saved method, or falls back
// to cash on delivery when no methods are saved. Cash fallback requires no
// user interaction, only confirmation at review.
func DefaultSelection(methods []types.PaymentMethod) Selection {
	for _, method := range methods {
		if method.IsDefault {
			return ResolveMethod(method)
		}
	}
	if len(methods) > 0 {
		return ResolveMethod(methods[0])
	}
	return resolveType(string(enums.PaymentMethodTypeCash))
}

func resolveType(raw string) Selection {
	switch enums.PaymentMethodType(raw) {
	case enums.PaymentMethodTypeCash:
		return Selection{Code: raw, Label: cashLabel}
	case enums.PaymentMethodTypeCard, enums.PaymentMethodTypeTransfer, enums.PaymentMethodTypeDigitalWallet:
		return Selection{Code: raw, Label: raw}
	default:
		return Selection{Code: raw, Label: raw}
	}
}
