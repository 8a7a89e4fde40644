package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"

	apierrors "github.com/pribylovaa/go-food-delivery/api-gateway/internal/errors"
)

// TokensClient - вызовы token-service.
type TokensClient interface {
	Generate(ctx context.Context, in contracts.GenerateTokensRequest) (*contracts.TokensReply, error)
	Refresh(ctx context.Context, ref contracts.UserRef) (*contracts.TokensReply, error)
	Revoke(ctx context.Context, ref contracts.UserRef) (*contracts.SuccessReply, error)
	Restore(ctx context.Context, ref contracts.UserRef) (*contracts.SuccessReply, error)
	Validate(ctx context.Context, accessToken string) (*contracts.ValidateTokenReply, error)
}

// MessagingClient - вызовы messaging-service.
type MessagingClient interface {
	SendOTP(ctx context.Context, in contracts.SendOTPRequest) error
	VerifyOTP(ctx context.Context, in contracts.VerifyOTPRequest) (*contracts.VerifyOTPReply, error)
	NotifyNewDevice(ctx context.Context, in contracts.NewDeviceMail) error
}

// RatingsClient публикует обновления рейтинга.
type RatingsClient interface {
	Update(ctx context.Context, entity contracts.RatingEntity, in contracts.RatingUpdate) error
}

// Handlers агрегирует клиенты внутренних сервисов.
type Handlers struct {
	tokens    TokensClient
	messaging MessagingClient
	ratings   RatingsClient
}

func New(tokens TokensClient, messaging MessagingClient, ratings RatingsClient) *Handlers {
	return &Handlers{tokens: tokens, messaging: messaging, ratings: ratings}
}

// maxBodyBytes - верхняя граница тела запроса.
const maxBodyBytes = 64 << 10

// writeJSON - ответ JSON с нужным Content-Type. Ошибки пишет apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict - строгий JSON-декодер: неизвестные поля и хвост после объекта запрещены.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err)
	}

	if dec.More() {
		return fmt.Errorf("%w: trailing data", apierrors.ErrBadRequest)
	}

	return nil
}

// validator - модель, умеющая проверить себя.
type validator interface {
	Validate() error
}

// decodeValid разбирает тело и проверяет модель; ошибка всегда ErrBadRequest.
func decodeValid(w http.ResponseWriter, r *http.Request, value validator) error {
	if err := decodeStrict(w, r, value); err != nil {
		return err
	}

	if err := value.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err)
	}

	return nil
}
