package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-food-delivery/token-service/internal/models"
)

var (
	// ErrNotFound - сессии для пары (userId, userType) нет.
	ErrNotFound = errors.New("not found")
	// ErrRevoked - сессия пары отозвана.
	ErrRevoked = errors.New("revoked")
	// ErrConflict - условное обновление не применилось: токен уже ротирован.
	ErrConflict = errors.New("conflict")
)

// UpsertInput - данные входа для UpsertSession.
type UpsertInput struct {
	Key        models.SessionKey
	DeviceInfo string
	IPAddress  string
	// Token сохраняется только если сессия создаётся.
	Token string
}

// UpsertResult - итог UpsertSession.
type UpsertResult struct {
	// Session - состояние после операции.
	Session *models.Session
	// Created - сессия создана этим вызовом.
	Created bool
	// NewDevice - устройство добавлено в существующую сессию этим вызовом.
	NewDevice bool
}

// SessionStorage выполняет операции над refresh-сессиями.
type SessionStorage interface {
	// UpsertSession атомарно создаёт сессию или добавляет устройство в активную.
	// Для отозванной сессии возвращает ErrRevoked и ничего не меняет.
	UpsertSession(ctx context.Context, in UpsertInput) (*UpsertResult, error)
	// SessionByUser находит сессию пары.
	SessionByUser(ctx context.Context, key models.SessionKey) (*models.Session, error)
	// RotateRefreshToken заменяет oldToken на newToken, только если oldToken всё ещё
	// действующий, а сессия не отозвана (ErrConflict / ErrRevoked / ErrNotFound).
	RotateRefreshToken(ctx context.Context, key models.SessionKey, oldToken, newToken string) error
	// SetRevoked выставляет флаг отзыва (идемпотентно).
	SetRevoked(ctx context.Context, key models.SessionKey, revoked bool) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	SessionStorage
	Close(ctx context.Context) error
}
