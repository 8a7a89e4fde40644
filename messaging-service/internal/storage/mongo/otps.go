package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/models"
	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/storage"
	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
)

type otpDoc struct {
	Email     string     `bson:"email"`
	UserType  string     `bson:"user_type"`
	Code      int        `bson:"code"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func (d *otpDoc) model() *models.OTP {
	o := &models.OTP{
		Email:     d.Email,
		UserType:  contracts.UserType(d.UserType),
		Code:      d.Code,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.ExpiresAt != nil {
		o.ExpiresAt = d.ExpiresAt.UTC()
	}

	return o
}

// UpsertOTP перезаписывает код для email одним updateOne с upsert.
// Без срока жизни поле expires_at снимается, чтобы TTL-индекс не удалил запись.
func (m *Mongo) UpsertOTP(ctx context.Context, otp models.OTP) error {
	const op = "storage/mongo/UpsertOTP"

	now := time.Now().UTC().Truncate(time.Millisecond)

	set := bson.D{
		{Key: "user_type", Value: string(otp.UserType)},
		{Key: "code", Value: otp.Code},
		{Key: "updated_at", Value: now},
	}

	update := bson.D{
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: now}}},
	}

	if otp.ExpiresAt.IsZero() {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "expires_at", Value: ""}}})
	} else {
		set = append(set, bson.E{Key: "expires_at", Value: otp.ExpiresAt.UTC()})
	}
	update = append(update, bson.E{Key: "$set", Value: set})

	filter := bson.D{{Key: "email", Value: otp.Email}}
	opts := options.Update().SetUpsert(true)

	_, err := m.otps.UpdateOne(ctx, filter, update, opts)
	if mongodriver.IsDuplicateKeyError(err) {
		// Параллельный upsert того же email вставил документ первым - теперь это обновление.
		_, err = m.otps.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// OTPByEmail возвращает запись email или storage.ErrNotFound.
func (m *Mongo) OTPByEmail(ctx context.Context, email string) (*models.OTP, error) {
	const op = "storage/mongo/OTPByEmail"

	var doc otpDoc
	err := m.otps.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.model(), nil
}

// DeleteOTP удаляет запись (email, code). Код, перезаписанный новым, не удаляется.
func (m *Mongo) DeleteOTP(ctx context.Context, email string, code int) error {
	const op = "storage/mongo/DeleteOTP"

	res, err := m.otps.DeleteOne(ctx, bson.D{{Key: "email", Value: email}, {Key: "code", Value: code}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
