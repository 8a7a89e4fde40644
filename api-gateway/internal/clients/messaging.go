package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
)

// Messaging - клиент messaging-service.
type Messaging struct {
	rpc     *rpc.Client
	timeout time.Duration
}

// SendOTP публикует send_otp без ожидания ответа.
func (m *Messaging) SendOTP(ctx context.Context, in contracts.SendOTPRequest) error {
	const op = "clients/Messaging.SendOTP"

	if err := m.rpc.Notify(ctx, contracts.QueueSendOTP, in); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// VerifyOTP сверяет код (verify_otp).
func (m *Messaging) VerifyOTP(ctx context.Context, in contracts.VerifyOTPRequest) (*contracts.VerifyOTPReply, error) {
	const op = "clients/Messaging.VerifyOTP"

	var out contracts.VerifyOTPReply
	if err := m.rpc.Call(ctx, contracts.QueueVerifyOTP, in, &out, m.timeout); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// NotifyNewDevice публикует send_new_device_mail без ожидания ответа.
func (m *Messaging) NotifyNewDevice(ctx context.Context, in contracts.NewDeviceMail) error {
	const op = "clients/Messaging.NotifyNewDevice"

	if err := m.rpc.Notify(ctx, contracts.QueueSendNewDeviceMail, in); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
