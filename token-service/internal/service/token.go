package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-food-delivery/token-service/internal/models"
)

type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

// tokenClaims - полезная нагрузка обоих типов токенов.
type tokenClaims struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

func (s *Service) secret(kind tokenKind) []byte {
	if kind == kindRefresh {
		return []byte(s.cfg.RefreshSecret)
	}

	return []byte(s.cfg.AccessSecret)
}

func (s *Service) ttl(kind tokenKind) time.Duration {
	if kind == kindRefresh {
		return s.cfg.RefreshTokenTTL
	}

	return s.cfg.AccessTokenTTL
}

// signToken выпускает токен; jti делает каждый выпуск уникальным,
// иначе два refresh в одну секунду дали бы одинаковую строку.
func (s *Service) signToken(kind tokenKind, key models.SessionKey, now time.Time) (string, error) {
	const op = "service/token/signToken"

	claims := tokenClaims{
		UserID:   key.UserID,
		UserType: string(key.UserType),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   key.UserID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl(kind))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret(kind))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// parseToken проверяет подпись, срок и издателя токена.
func (s *Service) parseToken(kind tokenKind, tokenStr string) (*tokenClaims, error) {
	const op = "service/token/parseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{},
		func(*jwt.Token) (any, error) { return s.secret(kind), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// ValidateAccessToken проверяет access-токен и возвращает его субъекта.
func (s *Service) ValidateAccessToken(tokenStr string) (*models.Claims, error) {
	c, err := s.parseToken(kindAccess, tokenStr)
	if err != nil {
		return nil, err
	}

	return &models.Claims{UserID: c.UserID, UserType: c.UserType}, nil
}
