// transport/queue подключает messaging-service к очередям send_otp, verify_otp
// и send_new_device_mail.
//
// send_otp и send_new_device_mail приходят без replyTo: ответ не отправляется,
// ErrInvalidArgument подтверждает сообщение без повторной доставки.
// verify_otp - RPC с ответом {success, message}.
package queue

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"

	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/service"
	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
)

// MessagingService - операции сервиса, доступные через очереди.
type MessagingService interface {
	SendOTP(ctx context.Context, email string, userType contracts.UserType) error
	VerifyOTP(ctx context.Context, email string, code int) (*service.VerifyResult, error)
	SendNewDeviceMail(ctx context.Context, email, name, deviceInfo string) error
}

// MessagingServer - обработчики очередей messaging-service.
type MessagingServer struct {
	service MessagingService
}

// NewMessagingServer создаёт обработчики поверх сервисного слоя.
func NewMessagingServer(service MessagingService) *MessagingServer {
	return &MessagingServer{service: service}
}

// Register подписывает обработчики на очереди сервера.
func (s *MessagingServer) Register(srv *rpc.Server) {
	srv.Handle(contracts.QueueSendOTP, s.SendOTP)
	srv.Handle(contracts.QueueVerifyOTP, s.VerifyOTP)
	srv.Handle(contracts.QueueSendNewDeviceMail, s.SendNewDeviceMail)
}

// SendOTP обрабатывает send_otp.
func (s *MessagingServer) SendOTP(ctx context.Context, req *rpc.Request) (any, error) {
	const op = "transport/queue/SendOTP"

	var in contracts.SendOTPRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}

	if err := s.service.SendOTP(ctx, in.Email, in.UserType); err != nil {
		return nil, mapError(op, err)
	}

	return nil, nil
}

// VerifyOTP обрабатывает verify_otp.
func (s *MessagingServer) VerifyOTP(ctx context.Context, req *rpc.Request) (any, error) {
	const op = "transport/queue/VerifyOTP"

	var in contracts.VerifyOTPRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}

	res, err := s.service.VerifyOTP(ctx, in.Email, in.OTP)
	if err != nil {
		return nil, mapError(op, err)
	}

	return contracts.VerifyOTPReply{Success: res.Success, Message: res.Message}, nil
}

// SendNewDeviceMail обрабатывает send_new_device_mail.
func (s *MessagingServer) SendNewDeviceMail(ctx context.Context, req *rpc.Request) (any, error) {
	const op = "transport/queue/SendNewDeviceMail"

	var in contracts.NewDeviceMail
	if err := req.Decode(&in); err != nil {
		return nil, err
	}

	if err := s.service.SendNewDeviceMail(ctx, in.Email, in.Name, in.DeviceInfo); err != nil {
		return nil, mapError(op, err)
	}

	return nil, nil
}

func mapError(op string, err error) error {
	if errors.Is(err, service.ErrInvalidArgument) {
		return rpc.Errorf(codes.InvalidArgument, "%s: %v", op, service.ErrInvalidArgument)
	}

	return err
}
