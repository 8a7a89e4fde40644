package models

import (
	"time"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
)

// OTP - одноразовый код подтверждения email. На один email хранится
// не более одной записи: новый код перезаписывает старый.
type OTP struct {
	Email    string
	UserType contracts.UserType
	Code     int
	// ExpiresAt нулевой, если срок жизни не задан.
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired сообщает, истёк ли код к моменту now.
func (o *OTP) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}
