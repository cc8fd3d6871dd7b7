package checkout

import (
	"time"

	"github.com/talgatbekov/bazarline-backend/internal/payment"
	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	"github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

// Session is the ephemeral checkout state for one shopper. It lives only in
// this process: created at begin, destroyed on success acknowledgement or
// cancel. All mutation happens under the store lock.
type Session struct {
	UserID string
	Market enums.Market
	Step   enums.CheckoutStep

	// Confirmed selections. Review is unreachable until both are set.
	Address *types.Address
	Payment *payment.Selection

	// Pre-filled defaults from the profile. Suggestions only: they never
	// advance the step until the shopper confirms them.
	SuggestedAddress *types.Address
	SuggestedPayment *payment.Selection

	DeliveryDate   string
	DeliveryNote   string
	SecondaryPhone string

	OrderNumber string
	TotalAmount int64

	submitting bool
	UpdatedAt  time.Time
}

// routeStep places the cursor according to what has been confirmed so far.
func (s *Session) routeStep() {
	switch {
	case s.Address == nil:
		s.Step = enums.CheckoutStepAddress
	case s.Payment == nil:
		s.Step = enums.CheckoutStepPayment
	default:
		s.Step = enums.CheckoutStepReview
	}
}

// selectAddress confirms an address choice. From review (changing a choice)
// the session returns to review; otherwise it advances to payment.
func (s *Session) selectAddress(addr types.Address) error {
	if s.Step == enums.CheckoutStepSuccess {
		return errors.New(errors.CodeStateConflict, "checkout already completed")
	}
	if addr.FullAddress == "" {
		return errors.New(errors.CodeValidation, "composed address is empty")
	}
	s.Address = &addr
	if s.Payment != nil {
		s.Step = enums.CheckoutStepReview
	} else {
		s.Step = enums.CheckoutStepPayment
	}
	return nil
}

// selectPayment confirms a payment choice. With an address already confirmed
// the session moves to review; without one the method is kept for later and
// the cursor returns to none.
func (s *Session) selectPayment(selection payment.Selection) error {
	if s.Step == enums.CheckoutStepSuccess {
		return errors.New(errors.CodeStateConflict, "checkout already completed")
	}
	if selection.Code == "" {
		return errors.New(errors.CodeValidation, "payment selection is empty")
	}
	s.Payment = &selection
	if s.Address != nil {
		s.Step = enums.CheckoutStepReview
	} else {
		s.Step = enums.CheckoutStepNone
	}
	return nil
}

// completeSubmission records a successful order creation.
func (s *Session) completeSubmission(orderNumber string, total int64) {
	s.OrderNumber = orderNumber
	s.TotalAmount = total
	s.Step = enums.CheckoutStepSuccess
}
