// Входные/выходные модели REST. Поля snake_case; на стороне очередей
// используются контракты из pkg/contracts.
package models

import (
	"fmt"
	"strings"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
)

// TokensRequest - вход POST /auth/tokens.
// Email и Name нужны только для письма о входе с нового устройства.
// DeviceInfo и IPAddress по умолчанию берутся из запроса.
type TokensRequest struct {
	UserID     string             `json:"user_id"`
	UserType   contracts.UserType `json:"user_type"`
	Email      string             `json:"email,omitempty"`
	Name       string             `json:"name,omitempty"`
	DeviceInfo string             `json:"device_info,omitempty"`
	IPAddress  string             `json:"ip_address,omitempty"`
}

func (r TokensRequest) Validate() error {
	return validateUser(r.UserID, r.UserType)
}

func (r TokensRequest) ToContract() contracts.GenerateTokensRequest {
	return contracts.GenerateTokensRequest{
		UserID:     r.UserID,
		UserType:   r.UserType,
		DeviceInfo: r.DeviceInfo,
		IPAddress:  r.IPAddress,
	}
}

// TokensResponse - пара токенов.
type TokensResponse struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	NewDeviceLogin bool   `json:"new_device_login"`
}

func TokensFromContract(in *contracts.TokensReply) TokensResponse {
	return TokensResponse{
		AccessToken:    in.AccessToken,
		RefreshToken:   in.RefreshToken,
		NewDeviceLogin: in.NewDeviceLogin,
	}
}

// SessionRequest - вход refresh/revoke/restore.
type SessionRequest struct {
	UserID   string             `json:"user_id"`
	UserType contracts.UserType `json:"user_type"`
}

func (r SessionRequest) Validate() error {
	return validateUser(r.UserID, r.UserType)
}

func (r SessionRequest) ToContract() contracts.UserRef {
	return contracts.UserRef{UserID: r.UserID, UserType: r.UserType}
}

// SubjectResponse - субъект действующего access-токена.
type SubjectResponse struct {
	UserID   string             `json:"user_id"`
	UserType contracts.UserType `json:"user_type"`
}

func SubjectFromContract(in *contracts.ValidateTokenReply) SubjectResponse {
	return SubjectResponse{UserID: in.UserID, UserType: in.UserType}
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// AcceptedResponse - ответ на fire-and-forget операции.
type AcceptedResponse struct {
	Status string `json:"status"`
}

func Accepted() AcceptedResponse { return AcceptedResponse{Status: "accepted"} }

func validateUser(id string, t contracts.UserType) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("user_id is required")
	}

	if !t.Valid() {
		return fmt.Errorf("unknown user_type %q", t)
	}

	return nil
}
