// service содержит бизнес-логику messaging-service: выпуск и проверку OTP,
// уведомления о входе с нового устройства.
//
// Отправка писем - побочный эффект: её ошибки логируются и не возвращаются,
// чтобы сообщение из очереди не переотправлялось из-за недоступного SMTP.
package service

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/mail"
	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/storage"
)

// ErrInvalidArgument - пустой email или неизвестный userType. Транспорт: codes.InvalidArgument.
var ErrInvalidArgument = errors.New("invalid argument")

// Сообщения ответа verify_otp.
const (
	MsgOTPNotFound = "OTP doesn't exist"
	MsgOTPInvalid  = "Invalid OTP"
	MsgOTPVerified = "Otp verified successfully"
)

// Диапазон кода [otpMin, otpMax): четыре цифры, верхняя граница не включается.
const (
	otpMin = 1000
	otpMax = 9999
)

// Service описывает бизнес-логику messaging-service.
type Service struct {
	storage storage.Storage
	mailer  mail.Mailer
	cfg     config.OTPConfig
	now     func() time.Time
	code    func() (int, error)
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, mailer mail.Mailer, cfg config.OTPConfig) *Service {
	return &Service{
		storage: storage,
		mailer:  mailer,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
		code:    randomCode,
	}
}

// randomCode возвращает равномерно распределённый код из [otpMin, otpMax).
func randomCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin))
	if err != nil {
		return 0, err
	}

	return otpMin + int(n.Int64()), nil
}
