package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/talgatbekov/bazarline-backend/internal/address"
	"github.com/talgatbekov/bazarline-backend/internal/payment"
	"github.com/talgatbekov/bazarline-backend/internal/pricing"
	"github.com/talgatbekov/bazarline-backend/pkg/config"
	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type profileAPI interface {
	GetProfile(ctx context.Context) (*shopapi.Profile, error)
	ListAddresses(ctx context.Context) ([]types.Address, error)
	GetAddress(ctx context.Context, addressID string) (*types.Address, error)
	ListPaymentMethods(ctx context.Context) ([]types.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, methodID string) (*types.PaymentMethod, error)
}

type orderAPI interface {
	CreateOrder(ctx context.Context, input shopapi.CreateOrderInput) (*shopapi.CreateOrderResult, error)
}

type cartStore interface {
	Fetch(ctx context.Context, userID string) ([]types.CartLineItem, error)
	Clear(ctx context.Context, userID string) error
}

type marketStore interface {
	Get(ctx context.Context, userID string) (enums.Market, error)
}

// AddressRequest confirms an address choice: a saved address id, or
// structured fields to compose on the fly.
type AddressRequest struct {
	AddressID string               `json:"address_id,omitempty"`
	Fields    *types.AddressFields `json:"fields,omitempty"`
}

// PaymentRequest confirms a payment choice: a saved method id, or a raw
// type for ad-hoc selection.
type PaymentRequest struct {
	MethodID string `json:"method_id,omitempty"`
	Type     string `json:"type,omitempty"`
}

// ConfirmRequest carries the final pieces collected at review.
type ConfirmRequest struct {
	DeliveryDate   string `json:"delivery_date"`
	DeliveryNote   string `json:"delivery_note,omitempty"`
	SecondaryPhone string `json:"secondary_phone,omitempty"`
}

// View is the session snapshot returned to the client after every
// operation.
type View struct {
	Step             enums.CheckoutStep    `json:"step"`
	Market           enums.Market          `json:"market"`
	Items            []types.CartLineItem  `json:"items"`
	Quote            pricing.Quote         `json:"quote"`
	Address          *types.Address        `json:"address,omitempty"`
	Payment          *payment.Selection    `json:"payment,omitempty"`
	SuggestedAddress *types.Address        `json:"suggested_address,omitempty"`
	SuggestedPayment *payment.Selection    `json:"suggested_payment,omitempty"`
	DeliveryDate     string                `json:"delivery_date,omitempty"`
	DeliveryNote     string                `json:"delivery_note,omitempty"`
	SecondaryPhone   string                `json:"secondary_phone,omitempty"`
	OrderNumber      string                `json:"order_number,omitempty"`
	TotalAmount      int64                 `json:"total_amount,omitempty"`
}

// Service walks a shopper from cart to confirmed order.
type Service interface {
	Snapshot(ctx context.Context, userID string) (View, error)
	Begin(ctx context.Context, userID string) (View, error)
	ChooseAddress(ctx context.Context, userID string, req AddressRequest) (View, error)
	ChoosePayment(ctx context.Context, userID string, req PaymentRequest) (View, error)
	Confirm(ctx context.Context, userID string, req ConfirmRequest) (View, error)
	Cancel(ctx context.Context, userID string) error
	Acknowledge(ctx context.Context, userID string) (View, error)
}

type service struct {
	logg    *logger.Logger
	store   *Store
	cart    cartStore
	markets marketStore
	profile profileAPI
	orders  orderAPI
	calc    *pricing.Calculator
	cfg     config.CheckoutConfig
	now     nowFunc
}

// ServiceParams wires the checkout service dependencies.
type ServiceParams struct {
	Logger  *logger.Logger
	Store   *Store
	Cart    cartStore
	Markets marketStore
	Profile profileAPI
	Orders  orderAPI
	Config  config.CheckoutConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Markets == nil {
		return nil, fmt.Errorf("market store required")
	}
	if params.Profile == nil {
		return nil, fmt.Errorf("profile api required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order api required")
	}
	return &service{
		logg:    params.Logger,
		store:   params.Store,
		cart:    params.Cart,
		markets: params.Markets,
		profile: params.Profile,
		orders:  params.Orders,
		calc:    pricing.NewCalculator(params.Config.DeliveryFee, params.Config.TaxRateBasisPoints, params.Config.Currency),
		cfg:     params.Config,
		now:     defaultNow,
	}, nil
}

// Snapshot returns the current session and price quote without mutating
// anything. Without a live session it reports step none over the cart.
func (s *service) Snapshot(ctx context.Context, userID string) (View, error) {
	items, err := s.cart.Fetch(ctx, userID)
	if err != nil {
		return View{}, err
	}
	market, err := s.markets.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}

	session, ok := s.store.Get(userID)
	if !ok {
		return View{
			Step:   enums.CheckoutStepNone,
			Market: market,
			Items:  items,
			Quote:  s.calc.Price(items),
		}, nil
	}
	return s.view(session, items), nil
}

// Begin opens a checkout session, or resumes the live one at whatever step
// its confirmed selections allow. Profile defaults are pre-filled as
// suggestions only.
func (s *service) Begin(ctx context.Context, userID string) (View, error) {
	items, err := s.cart.Fetch(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if len(items) == 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	market, err := s.markets.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}

	if existing, ok := s.store.Get(userID); ok && existing.Step != enums.CheckoutStepSuccess {
		updated, err := s.store.Update(userID, func(session *Session) error {
			session.routeStep()
			return nil
		})
		if err != nil {
			return View{}, err
		}
		return s.view(updated, items), nil
	}

	session := Session{
		UserID: userID,
		Market: market,
	}
	s.prefillDefaults(ctx, &session)
	session.routeStep()
	s.store.Put(session)

	return s.view(session, items), nil
}

// prefillDefaults loads the shopper's default address and payment method as
// suggestions. Failures here degrade to an unprefilled form, they never
// block checkout.
func (s *service) prefillDefaults(ctx context.Context, session *Session) {
	if addresses, err := s.profile.ListAddresses(ctx); err == nil {
		for i := range addresses {
			if addresses[i].IsDefault {
				session.SuggestedAddress = &addresses[i]
				break
			}
		}
	} else {
		s.logg.Error(ctx, "address pre-fill skipped", err)
	}

	methods, err := s.profile.ListPaymentMethods(ctx)
	if err != nil {
		s.logg.Error(ctx, "payment pre-fill skipped", err)
		return
	}
	selection := payment.DefaultSelection(methods)
	session.SuggestedPayment = &selection
}

// ChooseAddress confirms an address. Saved addresses missing a composed
// string are composed from their structured fields for the session market.
func (s *service) ChooseAddress(ctx context.Context, userID string, req AddressRequest) (View, error) {
	session, ok := s.store.Get(userID)
	if !ok {
		return View{}, pkgerrors.New(pkgerrors.CodeNotFound, "no active checkout session")
	}

	var chosen types.Address
	switch {
	case strings.TrimSpace(req.AddressID) != "":
		saved, err := s.profile.GetAddress(ctx, req.AddressID)
		if err != nil {
			return View{}, err
		}
		chosen = *saved
		if chosen.FullAddress == "" {
			composed, err := address.Compose(session.Market, chosen.Fields)
			if err != nil {
				return View{}, err
			}
			chosen.FullAddress = composed
		}
	case req.Fields != nil:
		composed, err := address.Compose(session.Market, *req.Fields)
		if err != nil {
			return View{}, err
		}
		chosen = types.Address{FullAddress: composed, Fields: *req.Fields}
	default:
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "address_id or fields is required")
	}

	updated, err := s.store.Update(userID, func(session *Session) error {
		return session.selectAddress(chosen)
	})
	if err != nil {
		return View{}, err
	}
	return s.refreshView(ctx, updated)
}

// ChoosePayment confirms a payment method.
func (s *service) ChoosePayment(ctx context.Context, userID string, req PaymentRequest) (View, error) {
	if _, ok := s.store.Get(userID); !ok {
		return View{}, pkgerrors.New(pkgerrors.CodeNotFound, "no active checkout session")
	}

	var selection payment.Selection
	switch {
	case strings.TrimSpace(req.MethodID) != "":
		saved, err := s.profile.GetPaymentMethod(ctx, req.MethodID)
		if err != nil {
			return View{}, err
		}
		selection = payment.ResolveMethod(*saved)
	case strings.TrimSpace(req.Type) != "":
		resolved, err := payment.ResolveType(req.Type)
		if err != nil {
			return View{}, err
		}
		selection = resolved
	default:
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "method_id or type is required")
	}

	updated, err := s.store.Update(userID, func(session *Session) error {
		return session.selectPayment(selection)
	})
	if err != nil {
		return View{}, err
	}
	return s.refreshView(ctx, updated)
}

// Cancel discards the session. An order-creation call already in flight is
// not cancelled; its result still lands on the order API side.
func (s *service) Cancel(_ context.Context, userID string) error {
	s.store.Delete(userID)
	return nil
}

// Acknowledge closes out a completed checkout.
func (s *service) Acknowledge(ctx context.Context, userID string) (View, error) {
	session, ok := s.store.Get(userID)
	if !ok {
		return View{}, pkgerrors.New(pkgerrors.CodeNotFound, "no active checkout session")
	}
	if session.Step != enums.CheckoutStepSuccess {
		return View{}, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not completed")
	}
	s.store.Delete(userID)

	view := s.view(session, nil)
	view.Step = enums.CheckoutStepNone
	return view, nil
}

func (s *service) refreshView(ctx context.Context, session Session) (View, error) {
	items, err := s.cart.Fetch(ctx, session.UserID)
	if err != nil {
		return View{}, err
	}
	return s.view(session, items), nil
}

func (s *service) view(session Session, items []types.CartLineItem) View {
	return View{
		Step:             session.Step,
		Market:           session.Market,
		Items:            items,
		Quote:            s.calc.Price(items),
		Address:          session.Address,
		Payment:          session.Payment,
		SuggestedAddress: session.SuggestedAddress,
		SuggestedPayment: session.SuggestedPayment,
		DeliveryDate:     session.DeliveryDate,
		DeliveryNote:     session.DeliveryNote,
		SecondaryPhone:   session.SecondaryPhone,
		OrderNumber:      session.OrderNumber,
		TotalAmount:      session.TotalAmount,
	}
}
