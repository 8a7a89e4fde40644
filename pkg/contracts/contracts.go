// contracts описывает межсервисные сообщения, которые ходят через брокер:
// имена очередей и JSON-полезную нагрузку запросов/ответов.
//
// Формат полей (camelCase) совпадает с тем, что уже публикуют сервисы
// customer/restaurant/delivery-agent, поэтому теги json менять нельзя.
package contracts

import (
	"fmt"
	"strings"
)

// Очереди запрос/ответ (RPC): публикуются с correlationId и replyTo.
const (
	QueueGenerateTokens = "generate_tokens"
	QueueRefreshTokens  = "refresh_tokens"
	QueueRevokeToken    = "revoke_token"
	QueueRestoreToken   = "restore_token"
	QueueValidateToken  = "validate_token"
	QueueVerifyOTP      = "verify_otp"
)

// Очереди fire-and-forget: ответа не ждём.
const (
	QueueSendOTP           = "send_otp"
	QueueSendNewDeviceMail = "send_new_device_mail"
)

// UserType - тип субъекта токена/OTP. Закрытое множество.
type UserType string

const (
	UserTypeCustomer      UserType = "customer"
	UserTypeRestaurant    UserType = "restaurant"
	UserTypeDeliveryAgent UserType = "delivery-agent"
)

// Valid сообщает, входит ли значение в закрытое множество.
func (u UserType) Valid() bool {
	switch u {
	case UserTypeCustomer, UserTypeRestaurant, UserTypeDeliveryAgent:
		return true
	default:
		return false
	}
}

// RatingEntity - сущность, рейтинг которой пересчитывает review-сервис.
type RatingEntity string

const (
	RatingRestaurant    RatingEntity = "restaurant"
	RatingDeliveryAgent RatingEntity = "delivery_agent"
	RatingDish          RatingEntity = "dish"
)

// RatingEntities - все сущности с рейтингом (порядок стабилен).
var RatingEntities = []RatingEntity{RatingRestaurant, RatingDeliveryAgent, RatingDish}

// ParseRatingEntity нормализует и проверяет имя сущности.
func ParseRatingEntity(s string) (RatingEntity, error) {
	e := RatingEntity(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range RatingEntities {
		if e == known {
			return e, nil
		}
	}

	return "", fmt.Errorf("unknown rating entity %q", s)
}

// RatingQueue возвращает имя очереди update_<entity>_rating.
func RatingQueue(e RatingEntity) string {
	return "update_" + string(e) + "_rating"
}

// GenerateTokensRequest - запрос generate_tokens.
type GenerateTokensRequest struct {
	UserID     string   `json:"userId"`
	UserType   UserType `json:"userType"`
	DeviceInfo string   `json:"deviceInfo"`
	IPAddress  string   `json:"ipAddress"`
}

// UserRef - запрос refresh_tokens / revoke_token / restore_token.
type UserRef struct {
	UserID   string   `json:"userId"`
	UserType UserType `json:"userType"`
}

// TokensReply - ответ generate_tokens / refresh_tokens.
type TokensReply struct {
	AccessToken    string `json:"accessToken"`
	RefreshToken   string `json:"refreshToken"`
	NewDeviceLogin bool   `json:"newDeviceLogin"`
}

// ValidateTokenRequest - запрос validate_token.
type ValidateTokenRequest struct {
	AccessToken string `json:"accessToken"`
}

// ValidateTokenReply - субъект действующего access-токена.
type ValidateTokenReply struct {
	UserID   string   `json:"userId"`
	UserType UserType `json:"userType"`
}

// SuccessReply - ответ revoke_token / restore_token.
type SuccessReply struct {
	Success bool `json:"success"`
}

// SendOTPRequest - сообщение send_otp.
type SendOTPRequest struct {
	Email    string   `json:"email"`
	UserType UserType `json:"userType"`
}

// VerifyOTPRequest - запрос verify_otp. Код передаётся числом.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   int    `json:"otp"`
}

// VerifyOTPReply - ответ verify_otp.
type VerifyOTPReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewDeviceMail - сообщение send_new_device_mail.
type NewDeviceMail struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	DeviceInfo string `json:"deviceInfo"`
}

// RatingUpdate - сообщение update_<entity>_rating.
type RatingUpdate struct {
	EntityID string  `json:"entityId"`
	Rating   float64 `json:"rating"`
}
