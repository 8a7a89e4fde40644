// service содержит бизнес-логику token-service: выпуск access/refresh токенов,
// учёт устройств сессии, ротацию refresh-токена, отзыв и восстановление сессии.
//
// Основные аспекты:
//   - Service не хранит состояние запроса и безопасен для конкурентного
//     использования при потокобезопасном storage.Storage.
//   - Обработчики очередей могут вызываться повторно для одного сообщения
//     (at-least-once), поэтому все операции идемпотентны либо безопасны
//     при повторе: повторный вход с тем же устройством не меняет сессию.
//   - Ошибки - сентинелы ниже; транспорт маппит их на коды ответа.
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/go-food-delivery/token-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/storage"
)

var (
	// ErrInvalidArgument - пустой userId, неизвестный userType или пустой deviceInfo.
	// Транспорт: codes.InvalidArgument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSessionNotFound - для пары нет сессии. Транспорт: codes.NotFound.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked - выпуск токенов для отозванной сессии запрещён.
	// Транспорт: codes.PermissionDenied.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrTokenRevoked - refresh для отозванной сессии. Транспорт: codes.Unauthenticated.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrInvalidToken - подпись/формат/содержимое токена неверны. Транспорт: codes.Unauthenticated.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired - срок действия токена истёк. Транспорт: codes.Unauthenticated.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRotated - токен ротирован параллельным refresh. Транспорт: codes.Aborted.
	ErrTokenRotated = errors.New("token already rotated")
)

// Service описывает бизнес-логику token-service.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	now     func() time.Time
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}
