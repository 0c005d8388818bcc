package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/vitrine-backend/api/responses"
	"github.com/angelmondragon/vitrine-backend/api/validators"
	"github.com/angelmondragon/vitrine-backend/internal/checkout"
	"github.com/angelmondragon/vitrine-backend/internal/shop"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

type shopCheckout interface {
	Checkout(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
	OpenCheckout(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
	CloseCheckout(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
	BackToReview(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
	UpdateForm(ctx context.Context, scope clientstore.Scope, patch checkout.FormPatch) (*shop.View, error)
	Validate(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
	BeginEditPhone(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
	SavePhone(ctx context.Context, scope clientstore.Scope, phone string) (*shop.View, error)
	CancelEditPhone(ctx context.Context, scope clientstore.Scope) (*shop.View, error)
	Finalize(ctx context.Context, scope clientstore.Scope, userAgent string) (*shop.Receipt, error)
}

type updateFormRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=120"`
	Location       *string `json:"location" validate:"omitempty,max=300"`
	DeliveryMethod *string `json:"delivery_method" validate:"omitempty,oneof=retirar entrega"`
	WhatsApp       *string `json:"whatsapp" validate:"omitempty,max=32"`
	CPF            *string `json:"cpf" validate:"omitempty,max=18"`
}

func (p updateFormRequest) toPatch() checkout.FormPatch {
	return checkout.FormPatch{
		Name:           p.Name,
		Location:       p.Location,
		DeliveryMethod: p.DeliveryMethod,
		WhatsApp:       p.WhatsApp,
		CPF:            p.CPF,
	}
}

type savePhoneRequest struct {
	WhatsApp string `json:"whatsapp" validate:"required,max=32"`
}

func CheckoutView(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return checkoutStep(svc, logg, shopCheckout.Checkout)
}

func CheckoutOpen(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return checkoutStep(svc, logg, shopCheckout.OpenCheckout)
}

func CheckoutClose(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return checkoutStep(svc, logg, shopCheckout.CloseCheckout)
}

func CheckoutBack(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return checkoutStep(svc, logg, shopCheckout.BackToReview)
}

func CheckoutValidate(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return checkoutStep(svc, logg, shopCheckout.Validate)
}

func CheckoutPhoneEdit(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return checkoutStep(svc, logg, shopCheckout.BeginEditPhone)
}

func CheckoutPhoneCancel(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return checkoutStep(svc, logg, shopCheckout.CancelEditPhone)
}

func CheckoutPhoneSave(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return viewHandler(svc != nil, logg, func(r *http.Request) (*shop.View, error) {
		var payload savePhoneRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.SavePhone(r.Context(), shopScope(r), payload.WhatsApp)
	})
}

// CheckoutUpdateForm applies a partial form update; omitted fields are kept.
func CheckoutUpdateForm(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return viewHandler(svc != nil, logg, func(r *http.Request) (*shop.View, error) {
		var payload updateFormRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.UpdateForm(r.Context(), shopScope(r), payload.toPatch())
	})
}

// CheckoutFinalize persists the order and returns the WhatsApp handoff steps.
func CheckoutFinalize(svc shopCheckout, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("shop"))
			return
		}
		receipt, err := svc.Finalize(r.Context(), shopScope(r), r.UserAgent())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

func checkoutStep(svc shopCheckout, logg *logger.Logger, step func(shopCheckout, context.Context, clientstore.Scope) (*shop.View, error)) http.HandlerFunc {
	return viewHandler(svc != nil, logg, func(r *http.Request) (*shop.View, error) {
		return step(svc, r.Context(), shopScope(r))
	})
}
