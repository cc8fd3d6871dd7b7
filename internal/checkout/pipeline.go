package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
)

type nowFunc func() time.Time

func defaultNow() time.Time { return time.Now() }

const deliveryDateLayout = "2006-01-02"

// Confirm runs the submission pipeline: validate the assembled session,
// create the order, clear the cart, move to success. Validation failures
// never reach the network; the cart is cleared only after the order API
// reports success. A confirm racing an in-flight submission is dropped as a
// no-op.
func (s *service) Confirm(ctx context.Context, userID string, req ConfirmRequest) (View, error) {
	session, acquired, err := s.store.BeginSubmission(userID)
	if err != nil {
		return View{}, err
	}
	if !acquired {
		return s.refreshView(ctx, session)
	}
	defer s.store.EndSubmission(userID)

	if session.Step != enums.CheckoutStepReview {
		return View{}, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not at review")
	}
	if session.Address == nil || session.Address.FullAddress == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "address is not selected").
			WithDetails(map[string]any{"field": "address"})
	}
	if session.Payment == nil || session.Payment.Code == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is not selected").
			WithDetails(map[string]any{"field": "payment"})
	}
	if err := s.validateDeliveryDate(req.DeliveryDate); err != nil {
		return View{}, err
	}

	items, err := s.cart.Fetch(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if len(items) == 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
			WithDetails(map[string]any{"field": "cart"})
	}

	profile, err := s.profile.GetProfile(ctx)
	if err != nil {
		return View{}, err
	}

	input := shopapi.CreateOrderInput{
		CustomerName:    profile.Name,
		CustomerPhone:   profile.Phone,
		SecondaryPhone:  strings.TrimSpace(req.SecondaryPhone),
		DeliveryAddress: session.Address.FullAddress,
		City:            session.Address.Fields.City,
		State:           session.Address.Fields.State,
		PostalCode:      session.Address.Fields.PostalCode,
		DeliveryNote:    strings.TrimSpace(req.DeliveryNote),
		DeliveryDate:    req.DeliveryDate,
		AddressID:       session.Address.ID,
		PaymentMethodID: session.Payment.MethodID,
		PaymentCode:     session.Payment.Code,
		UseCurrentCart:  true,
	}

	result, err := s.orders.CreateOrder(ctx, input)
	if err != nil {
		// Session stays at review and the cart is untouched, so the
		// shopper can retry safely.
		return View{}, err
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		s.logg.Error(ctx, "cart clear after submission failed", err)
	}

	updated, err := s.store.Update(userID, func(session *Session) error {
		session.DeliveryDate = req.DeliveryDate
		session.DeliveryNote = strings.TrimSpace(req.DeliveryNote)
		session.SecondaryPhone = strings.TrimSpace(req.SecondaryPhone)
		session.completeSubmission(result.OrderNumber, result.TotalAmount)
		return nil
	})
	if err != nil {
		// The session was discarded mid-flight. The order exists either
		// way; report it so it is not silently lost.
		session.completeSubmission(result.OrderNumber, result.TotalAmount)
		return s.view(session, nil), nil
	}

	s.logg.Info(s.logg.WithField(ctx, "order_number", result.OrderNumber), "order submitted")
	return s.view(updated, nil), nil
}

// validateDeliveryDate accepts one of the next N calendar days, N being the
// configured delivery window.
func (s *service) validateDeliveryDate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery date is required").
			WithDetails(map[string]any{"field": "delivery_date"})
	}
	date, err := time.Parse(deliveryDateLayout, raw)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery date must be YYYY-MM-DD").
			WithDetails(map[string]any{"field": "delivery_date"})
	}

	today := s.now().Truncate(24 * time.Hour)
	offset := int(date.Sub(today).Hours() / 24)
	if offset < 1 || offset > s.cfg.DeliveryWindowDays {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("delivery date must fall within the next %d days", s.cfg.DeliveryWindowDays)).
			WithDetails(map[string]any{"field": "delivery_date"})
	}
	return nil
}
