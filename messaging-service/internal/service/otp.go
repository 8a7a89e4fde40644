package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/mail"
	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/models"
	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/storage"
	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/log"
	"github.com/pribylovaa/go-food-delivery/pkg/redact"
)

// VerifyResult - итог проверки кода.
type VerifyResult struct {
	Success bool
	Message string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SendOTP выпускает новый код для email (старый становится недействительным)
// и отправляет его письмом.
func (s *Service) SendOTP(ctx context.Context, email string, userType contracts.UserType) error {
	const op = "service/otp/SendOTP"

	email = normalizeEmail(email)
	if email == "" || !userType.Valid() {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	code, err := s.code()
	if err != nil {
		return fmt.Errorf("%s: generate code: %w", op, err)
	}

	otp := models.OTP{Email: email, UserType: userType, Code: code}
	if s.cfg.TTL > 0 {
		otp.ExpiresAt = s.now().Add(s.cfg.TTL)
	}

	if err := s.storage.UpsertOTP(ctx, otp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.send(ctx, op, mail.Mail{
		To:      email,
		Subject: "Your OTP for Verification",
		Text:    fmt.Sprintf("Hello, your OTP for %s verification is: %d", userType, code),
	})

	return nil
}

// VerifyOTP сверяет код. Совпадение удаляет запись; неверный код запись не трогает.
func (s *Service) VerifyOTP(ctx context.Context, email string, code int) (*VerifyResult, error) {
	const op = "service/otp/VerifyOTP"

	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := s.check(ctx, email, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res != nil {
		return res, nil
	}

	err = s.storage.DeleteOTP(ctx, email, code)
	switch {
	case err == nil:
		log.From(ctx).Info("otp_verified", slog.String("op", op), slog.String("email", redact.Email(email)))
		return &VerifyResult{Success: true, Message: MsgOTPVerified}, nil

	case errors.Is(err, storage.ErrNotFound):
		// Между чтением и удалением код перезаписали или уже погасили.
		res, err = s.check(ctx, email, code)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if res == nil {
			res = &VerifyResult{Success: false, Message: MsgOTPInvalid}
		}
		return res, nil

	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
}

// check возвращает готовый отрицательный ответ или nil, если код совпал.
func (s *Service) check(ctx context.Context, email string, code int) (*VerifyResult, error) {
	otp, err := s.storage.OTPByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &VerifyResult{Success: false, Message: MsgOTPNotFound}, nil
		}
		return nil, err
	}

	// TTL-индекс удаляет записи с задержкой.
	if otp.Expired(s.now()) {
		return &VerifyResult{Success: false, Message: MsgOTPNotFound}, nil
	}

	if otp.Code != code {
		return &VerifyResult{Success: false, Message: MsgOTPInvalid}, nil
	}

	return nil, nil
}

func (s *Service) send(ctx context.Context, op string, m mail.Mail) {
	l := log.From(ctx).With(slog.String("op", op), slog.String("email", redact.Email(m.To)))

	if err := s.mailer.Send(ctx, m); err != nil {
		l.Error("mail_send_failed", slog.String("error", err.Error()))
		return
	}

	l.Info("mail_sent", slog.String("subject", m.Subject))
}
