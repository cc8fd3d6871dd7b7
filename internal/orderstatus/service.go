package orderstatus

import (
	"context"
	"fmt"

	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type managementAPI interface {
	GetOrders(ctx context.Context, filter shopapi.OrdersFilter) (*shopapi.OrderPage, error)
	GetOrderDetail(ctx context.Context, orderID string, market enums.Market) (*types.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status enums.OrderStatus) error
	CancelOrder(ctx context.Context, orderID string) error
	ResumeOrder(ctx context.Context, orderID string) error
}

// MutationResult carries the wholesale refetch done after every status
// mutation. Detail and list come back from the server rather than being
// patched locally, so server-computed display fields never drift.
type MutationResult struct {
	Order *types.Order      `json:"order"`
	Page  *shopapi.OrderPage `json:"page"`
}

// Service applies manager-initiated order status transitions.
type Service interface {
	List(ctx context.Context, filter shopapi.OrdersFilter) (*shopapi.OrderPage, error)
	Detail(ctx context.Context, orderID string, market enums.Market) (*types.Order, error)
	SetStatus(ctx context.Context, orderID string, market enums.Market, status enums.OrderStatus) (*MutationResult, error)
	Cancel(ctx context.Context, orderID string, market enums.Market) (*MutationResult, error)
	Resume(ctx context.Context, orderID string, market enums.Market) (*MutationResult, error)
}

type service struct {
	logg *logger.Logger
	api  managementAPI
}

// ServiceParams wires the order status service.
type ServiceParams struct {
	Logger *logger.Logger
	API    managementAPI
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.API == nil {
		return nil, fmt.Errorf("management api required")
	}
	return &service{logg: params.Logger, api: params.API}, nil
}

func (s *service) List(ctx context.Context, filter shopapi.OrdersFilter) (*shopapi.OrderPage, error) {
	return s.api.GetOrders(ctx, filter)
}

func (s *service) Detail(ctx context.Context, orderID string, market enums.Market) (*types.Order, error) {
	return s.api.GetOrderDetail(ctx, orderID, market)
}

// SetStatus is the manager override: any of the six settable statuses may
// be assigned from any non-terminal state, including moving backward. The
// free choice is deliberate and must not be narrowed to a linear
// progression here.
func (s *service) SetStatus(ctx context.Context, orderID string, market enums.Market, status enums.OrderStatus) (*MutationResult, error) {
	if !status.IsSettable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("status %q cannot be assigned", status))
	}

	current, err := s.api.GetOrderDetail(ctx, orderID, market)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s and can no longer change status", current.Status))
	}

	if err := s.api.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID,
		"status":   status.String(),
	}), "order status updated")

	return s.refetch(ctx, orderID, market)
}

// Cancel moves the order to cancelled. Delivered and refunded orders are
// past the point of cancellation.
func (s *service) Cancel(ctx context.Context, orderID string, market enums.Market) (*MutationResult, error) {
	current, err := s.api.GetOrderDetail(ctx, orderID, market)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("a %s order cannot be cancelled", current.Status))
	}

	if err := s.api.CancelOrder(ctx, orderID); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "order cancelled")

	return s.refetch(ctx, orderID, market)
}

// Resume moves a cancelled order back to pending. It is a distinct action
// with its own confirmation, never reachable through SetStatus semantics.
func (s *service) Resume(ctx context.Context, orderID string, market enums.Market) (*MutationResult, error) {
	current, err := s.api.GetOrderDetail(ctx, orderID, market)
	if err != nil {
		return nil, err
	}
	if current.Status != enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("only cancelled orders can resume, order is %s", current.Status))
	}

	if err := s.api.ResumeOrder(ctx, orderID); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "order resumed")

	return s.refetch(ctx, orderID, market)
}

// refetch reloads detail and list wholesale after a mutation. A refetch
// failure after a successful mutation is reported as-is; the mutation has
// landed.
func (s *service) refetch(ctx context.Context, orderID string, market enums.Market) (*MutationResult, error) {
	order, err := s.api.GetOrderDetail(ctx, orderID, market)
	if err != nil {
		return nil, err
	}
	page, err := s.api.GetOrders(ctx, shopapi.OrdersFilter{Market: market})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Order: order, Page: page}, nil
}
