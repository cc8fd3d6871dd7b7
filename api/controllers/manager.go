package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/talgatbekov/bazarline-backend/api/middleware"
	"github.com/talgatbekov/bazarline-backend/api/responses"
	"github.com/talgatbekov/bazarline-backend/api/validators"
	"github.com/talgatbekov/bazarline-backend/internal/manager"
	"github.com/talgatbekov/bazarline-backend/internal/orderstatus"
	"github.com/talgatbekov/bazarline-backend/internal/poller"
	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/pagination"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type dashboardService interface {
	GetDashboardStats(ctx context.Context, market enums.Market) (*types.DashboardStats, error)
	GetRevenueAnalytics(ctx context.Context, market enums.Market) (*types.RevenueAnalytics, error)
}

type statusBody struct {
	Status string `json:"status" validate:"required"`
}

type pollingBody struct {
	View    string `json:"view" validate:"required"`
	Market  string `json:"market,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// ManagerStatus evaluates the authorization gate and reports the outcome.
// Hitting this endpoint again after an error outcome is the retry.
func ManagerStatus(gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		result := gate.Evaluate(ctx, middleware.UserIDFromContext(ctx), middleware.AuthKeyFromContext(ctx))
		responses.WriteSuccess(w, result)
	}
}

// ManagerOrders lists orders for the requested market.
func ManagerOrders(svc orderstatus.Service, gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		selected, err := requestedMarket(r, gate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, pagination.MaxOffset)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filter := shopapi.OrdersFilter{Market: selected, Limit: limit, Offset: offset}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = status
		}

		page, err := svc.List(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ManagerOrderDetail returns one order.
func ManagerOrderDetail(svc orderstatus.Service, gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		selected, err := requestedMarket(r, gate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Detail(ctx, chi.URLParam(r, "orderId"), selected)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ManagerSetOrderStatus applies the manager's status override.
func ManagerSetOrderStatus(svc orderstatus.Service, gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		selected, err := requestedMarket(r, gate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body statusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		result, err := svc.SetStatus(ctx, chi.URLParam(r, "orderId"), selected, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ManagerCancelOrder cancels the order unless it is already delivered.
func ManagerCancelOrder(svc orderstatus.Service, gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		selected, err := requestedMarket(r, gate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Cancel(ctx, chi.URLParam(r, "orderId"), selected)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ManagerResumeOrder moves a cancelled order back to pending.
func ManagerResumeOrder(svc orderstatus.Service, gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		selected, err := requestedMarket(r, gate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Resume(ctx, chi.URLParam(r, "orderId"), selected)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ManagerDashboardStats returns the aggregate stats cards.
func ManagerDashboardStats(svc dashboardService, gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		selected, err := requestedMarket(r, gate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		stats, err := svc.GetDashboardStats(ctx, selected)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// ManagerDashboardRevenue returns the revenue analytics payload.
func ManagerDashboardRevenue(svc dashboardService, gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		selected, err := requestedMarket(r, gate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		revenue, err := svc.GetRevenueAnalytics(ctx, selected)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, revenue)
	}
}

// ManagerPollingRearm replaces the manager's background refresh task.
func ManagerPollingRearm(scheduler *poller.Scheduler, gate *manager.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body pollingBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := enums.ParseDashboardView(body.View)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid view"))
			return
		}

		selected, err := marketFromValue(body.Market, gate, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		enabled := true
		if body.Enabled != nil {
			enabled = *body.Enabled
		}

		userID := middleware.UserIDFromContext(ctx)
		if err := scheduler.Rearm(userID, shopapi.BearerFromContext(ctx), selected, view, enabled); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"view":    view.String(),
			"enabled": enabled && !view.SuppressesPolling(),
		})
	}
}

// ManagerPollingLatest returns the last refresh result.
func ManagerPollingLatest(scheduler *poller.Scheduler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := scheduler.Latest(middleware.UserIDFromContext(r.Context()))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no refresh data yet"))
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// ManagerPollingStop tears the refresh task down.
func ManagerPollingStop(scheduler *poller.Scheduler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduler.Stop(middleware.UserIDFromContext(r.Context()))
		responses.WriteSuccess(w, map[string]string{"status": "stopped"})
	}
}

// requestedMarket parses the market query parameter and verifies the
// manager may access it.
func requestedMarket(r *http.Request, gate *manager.Gate) (enums.Market, error) {
	return marketFromValue(r.URL.Query().Get("market"), gate, r)
}

func marketFromValue(raw string, gate *manager.Gate, r *http.Request) (enums.Market, error) {
	ctx := r.Context()
	result := gate.Peek(middleware.UserIDFromContext(ctx), middleware.AuthKeyFromContext(ctx))

	raw = strings.TrimSpace(raw)
	if raw == "" {
		if len(result.Status.AccessibleMarkets) > 0 {
			return result.Status.AccessibleMarkets[0], nil
		}
		return enums.MarketDomestic, nil
	}

	selected, err := enums.ParseMarket(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid market")
	}
	if !result.Status.CanAccessMarket(selected) {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "market not accessible")
	}
	return selected, nil
}
