package models

import (
	"slices"
	"time"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
)

// Session - refresh-сессия пары (UserID, UserType).
// В каждый момент существует не более одной сессии на пару.
type Session struct {
	UserID   string
	UserType contracts.UserType
	// Token - действующий refresh-токен; старые после ротации недействительны.
	Token string
	// DeviceInfo - отпечатки устройств, с которых выполнялся вход (без повторов).
	DeviceInfo []string
	// IPAddress - последний известный адрес, только для информации.
	IPAddress string
	IsRevoked bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasDevice сообщает, видели ли уже это устройство.
func (s *Session) HasDevice(device string) bool {
	return slices.Contains(s.DeviceInfo, device)
}

// SessionKey - естественный ключ сессии.
type SessionKey struct {
	UserID   string
	UserType contracts.UserType
}
