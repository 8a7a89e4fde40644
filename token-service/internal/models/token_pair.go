package models

// TokenPair - результат выпуска токенов.
//
// Описание:
//   - AccessToken - короткоживущий JWT, подписанный access-секретом;
//   - RefreshToken - долгоживущий JWT (refresh-секрет), хранится в сессии;
//   - NewDeviceLogin - вход с ранее не встречавшегося устройства;
//     всегда false для первой сессии и для refresh.
type TokenPair struct {
	AccessToken    string
	RefreshToken   string
	NewDeviceLogin bool
}

// Claims - содержимое проверенного токена.
type Claims struct {
	UserID   string
	UserType string
}
