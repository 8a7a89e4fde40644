package service

// Тесты сервисного слоя token-service.
//
//  Проверяем:
//  - валидацию входов (userId, userType, deviceInfo);
//  - переходы сессии в GenerateTokens (создание / известное устройство / новое / отозванная);
//  - RefreshTokens: ротацию, отказ без ротации при подделке/истечении/отзыве;
//  - маппинг ошибок storage -> service;
//  - RevokeToken/RestoreToken.
//
// Подготовка окружения:
//   # 1) Сгенерировать моки интерфейса хранилища:
//   mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks
//
//   # 2) Запустить тесты:
//   go test ./internal/service -v -race -count=1

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/models"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/storage"
	"github.com/pribylovaa/go-food-delivery/token-service/mocks"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:    "unit-access-secret",
		RefreshSecret:   "unit-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "token-service",
	}
}

// newServiceWithMock - поднимает сервис с моком стораджа.
func newServiceWithMock(t *testing.T) (*Service, *mocks.MockStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	return New(ms, testAuthCfg()), ms
}

var key = models.SessionKey{UserID: "u-1", UserType: contracts.UserTypeCustomer}

func genInput(device string) GenerateInput {
	return GenerateInput{UserID: key.UserID, UserType: key.UserType, DeviceInfo: device, IPAddress: "10.0.0.1"}
}

// mustRefresh выпускает refresh-токен для key тем же сервисом.
func mustRefresh(t *testing.T, s *Service, k models.SessionKey) string {
	t.Helper()
	tok, err := s.signToken(kindRefresh, k, s.now())
	require.NoError(t, err)
	return tok
}

func TestGenerateTokens_Validation(t *testing.T) {
	s, _ := newServiceWithMock(t)
	ctx := context.Background()

	cases := []GenerateInput{
		{UserID: "  ", UserType: contracts.UserTypeCustomer, DeviceInfo: "ua"},
		{UserID: "u", UserType: "admin", DeviceInfo: "ua"},
		{UserID: "u", UserType: contracts.UserTypeRestaurant, DeviceInfo: "   "},
	}
	for _, in := range cases {
		_, err := s.GenerateTokens(ctx, in)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestGenerateTokens_NewSession(t *testing.T) {
	s, ms := newServiceWithMock(t)

	var saved string
	ms.EXPECT().UpsertSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in storage.UpsertInput) (*storage.UpsertResult, error) {
			require.Equal(t, key, in.Key)
			require.Equal(t, "ua-1", in.DeviceInfo)
			require.Equal(t, "10.0.0.1", in.IPAddress)
			require.NotEmpty(t, in.Token)
			saved = in.Token

			return &storage.UpsertResult{
				Created: true,
				Session: &models.Session{UserID: key.UserID, UserType: key.UserType, Token: in.Token, DeviceInfo: []string{"ua-1"}},
			}, nil
		})

	pair, err := s.GenerateTokens(context.Background(), genInput(" ua-1 "))
	require.NoError(t, err)
	require.False(t, pair.NewDeviceLogin)
	require.Equal(t, saved, pair.RefreshToken)

	claims, err := s.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, key.UserID, claims.UserID)
	require.Equal(t, string(key.UserType), claims.UserType)
}

func TestGenerateTokens_KnownDevice_ReusesRefresh(t *testing.T) {
	s, ms := newServiceWithMock(t)

	ms.EXPECT().UpsertSession(gomock.Any(), gomock.Any()).Return(&storage.UpsertResult{
		Session: &models.Session{Token: "stored-refresh", DeviceInfo: []string{"ua-1"}},
	}, nil)

	pair, err := s.GenerateTokens(context.Background(), genInput("ua-1"))
	require.NoError(t, err)
	require.False(t, pair.NewDeviceLogin)
	require.Equal(t, "stored-refresh", pair.RefreshToken)
	require.NotEmpty(t, pair.AccessToken)
}

func TestGenerateTokens_NewDevice(t *testing.T) {
	s, ms := newServiceWithMock(t)

	ms.EXPECT().UpsertSession(gomock.Any(), gomock.Any()).Return(&storage.UpsertResult{
		NewDevice: true,
		Session:   &models.Session{Token: "stored-refresh", DeviceInfo: []string{"ua-1", "ua-2"}},
	}, nil)

	pair, err := s.GenerateTokens(context.Background(), genInput("ua-2"))
	require.NoError(t, err)
	require.True(t, pair.NewDeviceLogin)
	require.Equal(t, "stored-refresh", pair.RefreshToken)
}

func TestGenerateTokens_RevokedSession(t *testing.T) {
	s, ms := newServiceWithMock(t)

	ms.EXPECT().UpsertSession(gomock.Any(), gomock.Any()).Return(nil, storage.ErrRevoked)

	_, err := s.GenerateTokens(context.Background(), genInput("ua-1"))
	require.ErrorIs(t, err, ErrSessionRevoked)
}

func TestGenerateTokens_StorageFailure(t *testing.T) {
	s, ms := newServiceWithMock(t)

	boom := errors.New("mongo down")
	ms.EXPECT().UpsertSession(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := s.GenerateTokens(context.Background(), genInput("ua-1"))
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrSessionRevoked)
}

func TestRefreshTokens_Rotates(t *testing.T) {
	s, ms := newServiceWithMock(t)
	old := mustRefresh(t, s, key)

	ms.EXPECT().SessionByUser(gomock.Any(), key).Return(&models.Session{Token: old}, nil)

	var rotated string
	ms.EXPECT().RotateRefreshToken(gomock.Any(), key, old, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.SessionKey, _ string, newToken string) error {
			rotated = newToken
			return nil
		})

	pair, err := s.RefreshTokens(context.Background(), key.UserID, key.UserType)
	require.NoError(t, err)
	require.False(t, pair.NewDeviceLogin)
	require.NotEqual(t, old, pair.RefreshToken)
	require.Equal(t, rotated, pair.RefreshToken)

	_, err = s.parseToken(kindRefresh, pair.RefreshToken)
	require.NoError(t, err)
	_, err = s.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
}

// Подделанный токен: отказ, RotateRefreshToken не вызывается (мок строгий).
func TestRefreshTokens_Tampered_NoRotation(t *testing.T) {
	s, ms := newServiceWithMock(t)

	forged := New(nil, config.AuthConfig{
		AccessSecret: "x", RefreshSecret: "attacker-secret",
		AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, Issuer: "token-service",
	})
	tok := mustRefresh(t, forged, key)

	ms.EXPECT().SessionByUser(gomock.Any(), key).Return(&models.Session{Token: tok}, nil)

	_, err := s.RefreshTokens(context.Background(), key.UserID, key.UserType)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens_Garbage_NoRotation(t *testing.T) {
	s, ms := newServiceWithMock(t)

	ms.EXPECT().SessionByUser(gomock.Any(), key).Return(&models.Session{Token: "not-a-jwt"}, nil)

	_, err := s.RefreshTokens(context.Background(), key.UserID, key.UserType)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens_AccessTokenStored_Rejected(t *testing.T) {
	s, ms := newServiceWithMock(t)

	access, err := s.signToken(kindAccess, key, s.now())
	require.NoError(t, err)
	ms.EXPECT().SessionByUser(gomock.Any(), key).Return(&models.Session{Token: access}, nil)

	_, err = s.RefreshTokens(context.Background(), key.UserID, key.UserType)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens_Expired(t *testing.T) {
	s, ms := newServiceWithMock(t)

	past := New(nil, testAuthCfg())
	past.now = func() time.Time { return time.Now().UTC().Add(-48 * time.Hour) }
	tok := mustRefresh(t, past, key)

	ms.EXPECT().SessionByUser(gomock.Any(), key).Return(&models.Session{Token: tok}, nil)

	_, err := s.RefreshTokens(context.Background(), key.UserID, key.UserType)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokens_SubjectMismatch(t *testing.T) {
	s, ms := newServiceWithMock(t)

	other := mustRefresh(t, s, models.SessionKey{UserID: "u-2", UserType: contracts.UserTypeCustomer})
	ms.EXPECT().SessionByUser(gomock.Any(), key).Return(&models.Session{Token: other}, nil)

	_, err := s.RefreshTokens(context.Background(), key.UserID, key.UserType)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens_Revoked(t *testing.T) {
	s, ms := newServiceWithMock(t)

	ms.EXPECT().SessionByUser(gomock.Any(), key).Return(&models.Session{Token: mustRefresh(t, s, key), IsRevoked: true}, nil)

	_, err := s.RefreshTokens(context.Background(), key.UserID, key.UserType)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshTokens_NotFound(t *testing.T) {
	s, ms := newServiceWithMock(t)

	ms.EXPECT().SessionByUser(gomock.Any(), key).Return(nil, storage.ErrNotFound)

	_, err := s.RefreshTokens(context.Background(), key.UserID, key.UserType)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRefreshTokens_RotationErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"conflict", storage.ErrConflict, ErrTokenRotated},
		{"revoked", storage.ErrRevoked, ErrTokenRevoked},
		{"not found", storage.ErrNotFound, ErrSessionNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, ms := newServiceWithMock(t)
			old := mustRefresh(t, s, key)

			ms.EXPECT().SessionByUser(gomock.Any(), key).Return(&models.Session{Token: old}, nil)
			ms.EXPECT().RotateRefreshToken(gomock.Any(), key, old, gomock.Any()).Return(tc.err)

			_, err := s.RefreshTokens(context.Background(), key.UserID, key.UserType)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRevokeRestore(t *testing.T) {
	s, ms := newServiceWithMock(t)
	ctx := context.Background()

	ms.EXPECT().SetRevoked(gomock.Any(), key, true).Return(storage.ErrNotFound)
	require.ErrorIs(t, s.RevokeToken(ctx, key.UserID, key.UserType), ErrSessionNotFound)

	gomock.InOrder(
		ms.EXPECT().SetRevoked(gomock.Any(), key, true).Return(nil),
		ms.EXPECT().SetRevoked(gomock.Any(), key, false).Return(nil),
	)
	require.NoError(t, s.RevokeToken(ctx, key.UserID, key.UserType))
	require.NoError(t, s.RestoreToken(ctx, key.UserID, key.UserType))

	require.ErrorIs(t, s.RestoreToken(ctx, "", key.UserType), ErrInvalidArgument)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	s, _ := newServiceWithMock(t)

	_, err := s.ValidateAccessToken(mustRefresh(t, s, key))
	require.ErrorIs(t, err, ErrInvalidToken)
}
