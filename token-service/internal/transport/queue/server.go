// transport/queue подключает token-service к очередям generate_tokens,
// refresh_tokens, revoke_token, restore_token и validate_token.
// Здесь выполняется только разбор сообщений и маппинг ошибок сервиса в коды ответа.
//
// Маппинг ошибок:
//   - ErrInvalidArgument -> codes.InvalidArgument;
//   - ErrSessionNotFound -> codes.NotFound;
//   - ErrSessionRevoked -> codes.PermissionDenied;
//   - ErrInvalidToken/ErrTokenExpired/ErrTokenRevoked -> codes.Unauthenticated;
//   - ErrTokenRotated -> codes.Aborted;
//   - иные ошибки возвращаются как есть: rpc.Server считает их временными
//     (requeue, затем Internal без деталей).
package queue

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/models"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/service"
)

// TokenService - операции сервиса, доступные через очереди.
type TokenService interface {
	GenerateTokens(ctx context.Context, in service.GenerateInput) (*models.TokenPair, error)
	RefreshTokens(ctx context.Context, userID string, userType contracts.UserType) (*models.TokenPair, error)
	RevokeToken(ctx context.Context, userID string, userType contracts.UserType) error
	RestoreToken(ctx context.Context, userID string, userType contracts.UserType) error
	ValidateAccessToken(tokenStr string) (*models.Claims, error)
}

// TokenServer - обработчики очередей token-service.
type TokenServer struct {
	service TokenService
}

// NewTokenServer создаёт обработчики поверх сервисного слоя.
func NewTokenServer(service TokenService) *TokenServer {
	return &TokenServer{service: service}
}

// Register подписывает обработчики на очереди сервера.
func (s *TokenServer) Register(srv *rpc.Server) {
	srv.Handle(contracts.QueueGenerateTokens, s.GenerateTokens)
	srv.Handle(contracts.QueueRefreshTokens, s.RefreshTokens)
	srv.Handle(contracts.QueueRevokeToken, s.RevokeToken)
	srv.Handle(contracts.QueueRestoreToken, s.RestoreToken)
	srv.Handle(contracts.QueueValidateToken, s.ValidateToken)
}

// GenerateTokens обрабатывает generate_tokens.
func (s *TokenServer) GenerateTokens(ctx context.Context, req *rpc.Request) (any, error) {
	const op = "transport/queue/GenerateTokens"

	var in contracts.GenerateTokensRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}

	pair, err := s.service.GenerateTokens(ctx, service.GenerateInput{
		UserID:     in.UserID,
		UserType:   in.UserType,
		DeviceInfo: in.DeviceInfo,
		IPAddress:  in.IPAddress,
	})
	if err != nil {
		return nil, mapError(op, err)
	}

	return toReply(pair), nil
}

// RefreshTokens обрабатывает refresh_tokens. newDeviceLogin всегда false.
func (s *TokenServer) RefreshTokens(ctx context.Context, req *rpc.Request) (any, error) {
	const op = "transport/queue/RefreshTokens"

	var in contracts.UserRef
	if err := req.Decode(&in); err != nil {
		return nil, err
	}

	pair, err := s.service.RefreshTokens(ctx, in.UserID, in.UserType)
	if err != nil {
		return nil, mapError(op, err)
	}

	return toReply(pair), nil
}

// RevokeToken обрабатывает revoke_token.
func (s *TokenServer) RevokeToken(ctx context.Context, req *rpc.Request) (any, error) {
	const op = "transport/queue/RevokeToken"

	var in contracts.UserRef
	if err := req.Decode(&in); err != nil {
		return nil, err
	}

	if err := s.service.RevokeToken(ctx, in.UserID, in.UserType); err != nil {
		return nil, mapError(op, err)
	}

	return contracts.SuccessReply{Success: true}, nil
}

// RestoreToken обрабатывает restore_token.
func (s *TokenServer) RestoreToken(ctx context.Context, req *rpc.Request) (any, error) {
	const op = "transport/queue/RestoreToken"

	var in contracts.UserRef
	if err := req.Decode(&in); err != nil {
		return nil, err
	}

	if err := s.service.RestoreToken(ctx, in.UserID, in.UserType); err != nil {
		return nil, mapError(op, err)
	}

	return contracts.SuccessReply{Success: true}, nil
}

// ValidateToken обрабатывает validate_token: проверяет подпись, тип и срок access-токена.
func (s *TokenServer) ValidateToken(_ context.Context, req *rpc.Request) (any, error) {
	const op = "transport/queue/ValidateToken"

	var in contracts.ValidateTokenRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}

	claims, err := s.service.ValidateAccessToken(in.AccessToken)
	if err != nil {
		return nil, mapError(op, err)
	}

	return contracts.ValidateTokenReply{UserID: claims.UserID, UserType: contracts.UserType(claims.UserType)}, nil
}

func toReply(p *models.TokenPair) contracts.TokensReply {
	return contracts.TokensReply{
		AccessToken:    p.AccessToken,
		RefreshToken:   p.RefreshToken,
		NewDeviceLogin: p.NewDeviceLogin,
	}
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return rpc.Errorf(codes.InvalidArgument, "%s: %v", op, service.ErrInvalidArgument)
	case errors.Is(err, service.ErrSessionNotFound):
		return rpc.Errorf(codes.NotFound, "%s: %v", op, service.ErrSessionNotFound)
	case errors.Is(err, service.ErrSessionRevoked):
		return rpc.Errorf(codes.PermissionDenied, "%s: %v", op, service.ErrSessionRevoked)
	case errors.Is(err, service.ErrTokenRevoked):
		return rpc.Errorf(codes.Unauthenticated, "%s: %v", op, service.ErrTokenRevoked)
	case errors.Is(err, service.ErrTokenExpired):
		return rpc.Errorf(codes.Unauthenticated, "%s: %v", op, service.ErrTokenExpired)
	case errors.Is(err, service.ErrInvalidToken):
		return rpc.Errorf(codes.Unauthenticated, "%s: %v", op, service.ErrInvalidToken)
	case errors.Is(err, service.ErrTokenRotated):
		return rpc.Errorf(codes.Aborted, "%s: %v", op, service.ErrTokenRotated)
	default:
		return err
	}
}
