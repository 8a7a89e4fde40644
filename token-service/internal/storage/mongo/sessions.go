package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/models"
	"github.com/pribylovaa/go-food-delivery/token-service/internal/storage"
)

// upsertAttempts - сколько раз повторять upsert после ошибки дубликата
// (параллельный первый вход той же пары).
const upsertAttempts = 3

type sessionDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	UserType   string             `bson:"user_type"`
	Token      string             `bson:"token"`
	DeviceInfo []string           `bson:"device_info"`
	IPAddress  string             `bson:"ip_address"`
	IsRevoked  bool               `bson:"is_revoked"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d *sessionDoc) model() *models.Session {
	return &models.Session{
		UserID:     d.UserID,
		UserType:   contracts.UserType(d.UserType),
		Token:      d.Token,
		DeviceInfo: d.DeviceInfo,
		IPAddress:  d.IPAddress,
		IsRevoked:  d.IsRevoked,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func keyFilter(key models.SessionKey) bson.D {
	return bson.D{{Key: "user_id", Value: key.UserID}, {Key: "user_type", Value: string(key.UserType)}}
}

// now - MongoDB DateTime хранит миллисекунды.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// UpsertSession - один атомарный findOneAndUpdate по активной сессии пары:
//   - $addToSet device_info - без потерь при параллельных входах;
//   - $setOnInsert token/created_at - только при создании;
//   - документ "до" изменения показывает, было ли устройство известно.
//
// Если у пары есть отозванная сессия, фильтр по is_revoked=false не совпадает,
// upsert пытается вставить вторую и получает ошибку уникального индекса.
func (m *Mongo) UpsertSession(ctx context.Context, in storage.UpsertInput) (*storage.UpsertResult, error) {
	const op = "storage/mongo/UpsertSession"

	for attempt := 0; attempt < upsertAttempts; attempt++ {
		res, err := m.upsertOnce(ctx, in)
		if err == nil {
			return res, nil
		}

		if !mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		// Дубликат: либо сессия отозвана, либо параллельный вызов только что её создал.
		existing, ferr := m.SessionByUser(ctx, in.Key)
		if ferr != nil {
			if errors.Is(ferr, storage.ErrNotFound) {
				continue
			}

			return nil, fmt.Errorf("%s: %w", op, ferr)
		}

		if existing.IsRevoked {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrRevoked)
		}
	}

	return nil, fmt.Errorf("%s: upsert retries exhausted", op)
}

func (m *Mongo) upsertOnce(ctx context.Context, in storage.UpsertInput) (*storage.UpsertResult, error) {
	ts := now()

	filter := append(keyFilter(in.Key), bson.E{Key: "is_revoked", Value: false})
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "device_info", Value: in.DeviceInfo}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "token", Value: in.Token},
			{Key: "created_at", Value: ts},
		}},
		{Key: "$set", Value: bson.D{
			{Key: "ip_address", Value: in.IPAddress},
			{Key: "updated_at", Value: ts},
		}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var before sessionDoc
	err := m.sessions.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return &storage.UpsertResult{
			Created: true,
			Session: &models.Session{
				UserID:     in.Key.UserID,
				UserType:   in.Key.UserType,
				Token:      in.Token,
				DeviceInfo: []string{in.DeviceInfo},
				IPAddress:  in.IPAddress,
				CreatedAt:  ts,
				UpdatedAt:  ts,
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	s := before.model()
	known := s.HasDevice(in.DeviceInfo)
	if !known {
		s.DeviceInfo = append(s.DeviceInfo, in.DeviceInfo)
	}
	s.IPAddress = in.IPAddress
	s.UpdatedAt = ts

	return &storage.UpsertResult{Session: s, NewDevice: !known}, nil
}

// SessionByUser находит сессию пары (в т.ч. отозванную).
func (m *Mongo) SessionByUser(ctx context.Context, key models.SessionKey) (*models.Session, error) {
	const op = "storage/mongo/SessionByUser"

	var doc sessionDoc
	if err := m.sessions.FindOne(ctx, keyFilter(key)).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.model(), nil
}

// RotateRefreshToken - compare-and-set по старому токену.
func (m *Mongo) RotateRefreshToken(ctx context.Context, key models.SessionKey, oldToken, newToken string) error {
	const op = "storage/mongo/RotateRefreshToken"

	filter := append(keyFilter(key),
		bson.E{Key: "token", Value: oldToken},
		bson.E{Key: "is_revoked", Value: false},
	)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "token", Value: newToken},
		{Key: "updated_at", Value: now()},
	}}}

	res, err := m.sessions.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 1 {
		return nil
	}

	// Не совпало: выясняем причину.
	s, err := m.SessionByUser(ctx, key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.IsRevoked {
		return fmt.Errorf("%s: %w", op, storage.ErrRevoked)
	}

	return fmt.Errorf("%s: %w", op, storage.ErrConflict)
}

// SetRevoked выставляет is_revoked; повторный вызов с тем же значением не ошибка.
func (m *Mongo) SetRevoked(ctx context.Context, key models.SessionKey, revoked bool) error {
	const op = "storage/mongo/SetRevoked"

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_revoked", Value: revoked},
		{Key: "updated_at", Value: now()},
	}}}

	res, err := m.sessions.UpdateOne(ctx, keyFilter(key), update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
