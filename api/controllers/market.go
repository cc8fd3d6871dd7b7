package controllers

import (
	"net/http"

	"github.com/talgatbekov/bazarline-backend/api/middleware"
	"github.com/talgatbekov/bazarline-backend/api/responses"
	"github.com/talgatbekov/bazarline-backend/api/validators"
	"github.com/talgatbekov/bazarline-backend/internal/market"
	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
)

type marketBody struct {
	Market string `json:"market" validate:"required,oneof=domestic international"`
}

// MarketGet returns the shopper's persisted market selection.
func MarketGet(svc *market.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selected, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"market": selected.String()})
	}
}

// MarketPut stores a new market selection.
func MarketPut(svc *market.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body marketBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selected := enums.Market(body.Market)
		if err := svc.Set(r.Context(), middleware.UserIDFromContext(r.Context()), selected); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"market": selected.String()})
	}
}
