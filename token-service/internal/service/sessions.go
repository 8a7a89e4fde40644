package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/log"
	"github.com/pribylovaa/go-food-delivery/pkg/redact"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/models"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/storage"
)

// deviceLogLen - сколько рун user-agent попадает в лог.
const deviceLogLen = 32

// GenerateInput - запрос на выпуск токенов при входе.
type GenerateInput struct {
	UserID     string
	UserType   contracts.UserType
	DeviceInfo string
	IPAddress  string
}

func validKey(userID string, userType contracts.UserType) (models.SessionKey, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || !userType.Valid() {
		return models.SessionKey{}, ErrInvalidArgument
	}

	return models.SessionKey{UserID: userID, UserType: userType}, nil
}

// GenerateTokens выпускает токены при входе.
//
// Переходы сессии:
//   - сессии нет - создаётся с одним устройством, newDeviceLogin=false;
//   - устройство известно - новый access, прежний refresh, newDeviceLogin=false;
//   - устройство новое - добавляется, новый access, прежний refresh, newDeviceLogin=true;
//   - сессия отозвана - ErrSessionRevoked, сессия не меняется.
func (s *Service) GenerateTokens(ctx context.Context, in GenerateInput) (*models.TokenPair, error) {
	const op = "service/token/GenerateTokens"

	key, err := validKey(in.UserID, in.UserType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	device := strings.TrimSpace(in.DeviceInfo)
	if device == "" {
		return nil, fmt.Errorf("%s: empty device info: %w", op, ErrInvalidArgument)
	}

	lg := log.From(ctx).With(
		slog.String("op", op),
		slog.String("user_id", key.UserID),
		slog.String("user_type", string(key.UserType)),
	)

	now := s.now()

	// Кандидат в refresh-токен сохраняется, только если сессия создаётся.
	candidate, err := s.signToken(kindRefresh, key, now)
	if err != nil {
		lg.Error("refresh_token_sign_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.storage.UpsertSession(ctx, storage.UpsertInput{
		Key:        key,
		DeviceInfo: device,
		IPAddress:  strings.TrimSpace(in.IPAddress),
		Token:      candidate,
	})
	if err != nil {
		if errors.Is(err, storage.ErrRevoked) {
			lg.Warn("generate_on_revoked_session")
			return nil, fmt.Errorf("%s: %w", op, ErrSessionRevoked)
		}

		lg.Error("session_upsert_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	access, err := s.signToken(kindAccess, key, now)
	if err != nil {
		lg.Error("access_token_sign_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case res.Created:
		lg.Info("session_created")
	case res.NewDevice:
		lg.Info("new_device_login", slog.String("device", redact.Device(device, deviceLogLen)))
	}

	return &models.TokenPair{
		AccessToken:    access,
		RefreshToken:   res.Session.Token,
		NewDeviceLogin: res.NewDevice,
	}, nil
}

// RefreshTokens проверяет сохранённый refresh-токен и ротирует оба токена.
// При любой ошибке проверки сохранённый токен не меняется.
func (s *Service) RefreshTokens(ctx context.Context, userID string, userType contracts.UserType) (*models.TokenPair, error) {
	const op = "service/token/RefreshTokens"

	key, err := validKey(userID, userType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg := log.From(ctx).With(
		slog.String("op", op),
		slog.String("user_id", key.UserID),
		slog.String("user_type", string(key.UserType)),
	)

	session, err := s.storage.SessionByUser(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		lg.Error("session_lookup_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if session.IsRevoked {
		lg.Warn("refresh_revoked")
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	claims, err := s.parseToken(kindRefresh, session.Token)
	if err != nil {
		lg.Warn("refresh_token_rejected", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if claims.UserID != key.UserID || claims.UserType != string(key.UserType) {
		lg.Warn("refresh_token_subject_mismatch")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	now := s.now()

	access, err := s.signToken(kindAccess, key, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := s.signToken(kindRefresh, key, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RotateRefreshToken(ctx, key, session.Token, refresh); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			lg.Warn("refresh_rotation_conflict")
			return nil, fmt.Errorf("%s: %w", op, ErrTokenRotated)
		case errors.Is(err, storage.ErrRevoked):
			return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		lg.Error("refresh_rotation_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("refresh_rotated")

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RevokeToken отзывает сессию пары (идемпотентно).
func (s *Service) RevokeToken(ctx context.Context, userID string, userType contracts.UserType) error {
	return s.setRevoked(ctx, "service/token/RevokeToken", userID, userType, true)
}

// RestoreToken снимает отзыв сессии пары (идемпотентно).
func (s *Service) RestoreToken(ctx context.Context, userID string, userType contracts.UserType) error {
	return s.setRevoked(ctx, "service/token/RestoreToken", userID, userType, false)
}

func (s *Service) setRevoked(ctx context.Context, op, userID string, userType contracts.UserType, revoked bool) error {
	key, err := validKey(userID, userType)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SetRevoked(ctx, key, revoked); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		log.From(ctx).Error("session_set_revoked_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("session_revocation_changed",
		slog.String("op", op),
		slog.String("user_id", key.UserID),
		slog.String("user_type", string(key.UserType)),
		slog.Bool("revoked", revoked),
	)

	return nil
}
