package models

import (
	"fmt"
	"strings"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
)

type SendOTPRequest struct {
	Email    string             `json:"email"`
	UserType contracts.UserType `json:"user_type"`
}

func (r SendOTPRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid email")
	}

	if !r.UserType.Valid() {
		return fmt.Errorf("unknown user_type %q", r.UserType)
	}

	return nil
}

func (r SendOTPRequest) ToContract() contracts.SendOTPRequest {
	return contracts.SendOTPRequest{Email: r.Email, UserType: r.UserType}
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   int    `json:"otp"`
}

func (r VerifyOTPRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid email")
	}

	return nil
}

func (r VerifyOTPRequest) ToContract() contracts.VerifyOTPRequest {
	return contracts.VerifyOTPRequest{Email: r.Email, OTP: r.OTP}
}

// VerifyOTPResponse - результат сверки. Неверный или отсутствующий код -
// штатный ответ со success=false, а не ошибка.
type VerifyOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func VerifyOTPFromContract(in *contracts.VerifyOTPReply) VerifyOTPResponse {
	return VerifyOTPResponse{Success: in.Success, Message: in.Message}
}
