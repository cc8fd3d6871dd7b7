package controllers

import (
	"net/http"

	"github.com/talgatbekov/bazarline-backend/api/middleware"
	"github.com/talgatbekov/bazarline-backend/api/responses"
	"github.com/talgatbekov/bazarline-backend/api/validators"
	"github.com/talgatbekov/bazarline-backend/internal/checkout"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

type addressBody struct {
	AddressID string               `json:"address_id,omitempty"`
	Fields    *types.AddressFields `json:"fields,omitempty"`
}

type paymentBody struct {
	MethodID string `json:"method_id,omitempty"`
	Type     string `json:"type,omitempty"`
}

type confirmBody struct {
	DeliveryDate   string `json:"delivery_date" validate:"required"`
	DeliveryNote   string `json:"delivery_note,omitempty" validate:"max=500"`
	SecondaryPhone string `json:"secondary_phone,omitempty" validate:"max=32"`
}

// CheckoutSnapshot returns the live session and price quote.
func CheckoutSnapshot(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Snapshot(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CheckoutBegin(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Begin(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CheckoutAddress(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addressBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ChooseAddress(r.Context(), middleware.UserIDFromContext(r.Context()), checkout.AddressRequest{
			AddressID: body.AddressID,
			Fields:    body.Fields,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CheckoutPayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body paymentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ChoosePayment(r.Context(), middleware.UserIDFromContext(r.Context()), checkout.PaymentRequest{
			MethodID: body.MethodID,
			Type:     body.Type,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CheckoutConfirm(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body confirmBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Confirm(r.Context(), middleware.UserIDFromContext(r.Context()), checkout.ConfirmRequest{
			DeliveryDate:   body.DeliveryDate,
			DeliveryNote:   body.DeliveryNote,
			SecondaryPhone: body.SecondaryPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CheckoutCancel(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Cancel(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func CheckoutAcknowledge(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Acknowledge(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
