package handlers

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/log"
	"github.com/pribylovaa/go-food-delivery/pkg/redact"

	apierrors "github.com/pribylovaa/go-food-delivery/api-gateway/internal/errors"
	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/models"
)

// GenerateTokens - POST /auth/tokens.
// При входе с нового устройства отправляет письмо; сбой отправки не влияет на ответ.
func (h *Handlers) GenerateTokens(w http.ResponseWriter, r *http.Request) {
	const op = "handlers/GenerateTokens"

	var in models.TokensRequest
	if err := decodeValid(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if in.DeviceInfo == "" {
		in.DeviceInfo = r.UserAgent()
	}
	if in.IPAddress == "" {
		in.IPAddress = clientIP(r)
	}

	out, err := h.tokens.Generate(r.Context(), in.ToContract())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if out.NewDeviceLogin && in.Email != "" {
		mail := contracts.NewDeviceMail{Email: in.Email, Name: in.Name, DeviceInfo: in.DeviceInfo}
		if err := h.messaging.NotifyNewDevice(r.Context(), mail); err != nil {
			log.From(r.Context()).Warn("new_device_mail_dispatch_failed",
				slog.String("op", op),
				slog.String("email", redact.Email(in.Email)),
				slog.String("err", err.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, models.TokensFromContract(out))
}

// RefreshTokens - POST /auth/refresh.
func (h *Handlers) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	var in models.SessionRequest
	if err := decodeValid(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.tokens.Refresh(r.Context(), in.ToContract())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TokensFromContract(out))
}

// RevokeToken - POST /auth/revoke.
func (h *Handlers) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var in models.SessionRequest
	if err := decodeValid(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.tokens.Revoke(r.Context(), in.ToContract())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: out.Success})
}

// RestoreToken - POST /auth/restore.
func (h *Handlers) RestoreToken(w http.ResponseWriter, r *http.Request) {
	var in models.SessionRequest
	if err := decodeValid(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.tokens.Restore(r.Context(), in.ToContract())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: out.Success})
}

// ValidateToken - GET /auth/validate. Токен берётся из заголовка Authorization: Bearer.
func (h *Handlers) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthorized)
		return
	}

	out, err := h.tokens.Validate(r.Context(), token)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SubjectFromContract(out))
}

// bearerToken достаёт токен из Authorization. Схема сравнивается без учёта регистра.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// clientIP - первый адрес из X-Forwarded-For, иначе хост из RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
