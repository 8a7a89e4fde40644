package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/models"
)

// ErrNotFound - записи для email нет (или код в ней другой).
var ErrNotFound = errors.New("not found")

// OTPStorage - операции над кодами подтверждения.
type OTPStorage interface {
	// UpsertOTP создаёт или перезаписывает код для email.
	UpsertOTP(ctx context.Context, otp models.OTP) error
	// OTPByEmail возвращает текущий код для email.
	OTPByEmail(ctx context.Context, email string) (*models.OTP, error)
	// DeleteOTP удаляет запись, только если в ней всё ещё code.
	DeleteOTP(ctx context.Context, email string, code int) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	OTPStorage
	Close(ctx context.Context) error
}
