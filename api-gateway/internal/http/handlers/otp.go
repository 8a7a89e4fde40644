package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-food-delivery/api-gateway/internal/errors"
	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/models"
)

// SendOTP - POST /otp/send. Код уходит в очередь, ответ 202 без ожидания письма.
func (h *Handlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var in models.SendOTPRequest
	if err := decodeValid(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.messaging.SendOTP(r.Context(), in.ToContract()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, models.Accepted())
}

// VerifyOTP - POST /otp/verify.
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in models.VerifyOTPRequest
	if err := decodeValid(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.messaging.VerifyOTP(r.Context(), in.ToContract())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.VerifyOTPFromContract(out))
}
