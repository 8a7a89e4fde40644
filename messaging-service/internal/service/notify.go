package service

import (
	"context"
	"fmt"

	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/mail"
)

// SendNewDeviceMail уведомляет пользователя о входе с нового устройства.
func (s *Service) SendNewDeviceMail(ctx context.Context, email, name, deviceInfo string) error {
	const op = "service/notify/SendNewDeviceMail"

	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	s.send(ctx, op, mail.Mail{
		To:      email,
		Subject: "New Device Login",
		Text:    fmt.Sprintf("Hello %s, a new Device logged in to your account. Device info: %s", name, deviceInfo),
	})

	return nil
}
