package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
)

// Tokens - клиент token-service.
type Tokens struct {
	rpc     *rpc.Client
	timeout time.Duration
}

// Generate выпускает пару токенов (generate_tokens).
func (t *Tokens) Generate(ctx context.Context, in contracts.GenerateTokensRequest) (*contracts.TokensReply, error) {
	const op = "clients/Tokens.Generate"

	var out contracts.TokensReply
	if err := t.rpc.Call(ctx, contracts.QueueGenerateTokens, in, &out, t.timeout); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Refresh ротирует пару токенов (refresh_tokens).
func (t *Tokens) Refresh(ctx context.Context, ref contracts.UserRef) (*contracts.TokensReply, error) {
	const op = "clients/Tokens.Refresh"

	var out contracts.TokensReply
	if err := t.rpc.Call(ctx, contracts.QueueRefreshTokens, ref, &out, t.timeout); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Revoke отзывает сессию (revoke_token).
func (t *Tokens) Revoke(ctx context.Context, ref contracts.UserRef) (*contracts.SuccessReply, error) {
	return t.flip(ctx, "clients/Tokens.Revoke", contracts.QueueRevokeToken, ref)
}

// Restore снимает отзыв сессии (restore_token).
func (t *Tokens) Restore(ctx context.Context, ref contracts.UserRef) (*contracts.SuccessReply, error) {
	return t.flip(ctx, "clients/Tokens.Restore", contracts.QueueRestoreToken, ref)
}

// Validate проверяет access-токен и возвращает его субъекта (validate_token).
func (t *Tokens) Validate(ctx context.Context, accessToken string) (*contracts.ValidateTokenReply, error) {
	const op = "clients/Tokens.Validate"

	var out contracts.ValidateTokenReply
	in := contracts.ValidateTokenRequest{AccessToken: accessToken}
	if err := t.rpc.Call(ctx, contracts.QueueValidateToken, in, &out, t.timeout); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (t *Tokens) flip(ctx context.Context, op, queue string, ref contracts.UserRef) (*contracts.SuccessReply, error) {
	var out contracts.SuccessReply
	if err := t.rpc.Call(ctx, queue, ref, &out, t.timeout); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}
