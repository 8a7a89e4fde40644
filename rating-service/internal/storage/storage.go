package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
)

// ErrNotFound - документа сущности с таким id нет.
var ErrNotFound = errors.New("not found")

// RatingStorage обновляет рейтинг сущностей.
type RatingStorage interface {
	// SetRating выставляет рейтинг сущности entity с идентификатором id.
	SetRating(ctx context.Context, entity contracts.RatingEntity, id string, rating float64) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	RatingStorage
	Close(ctx context.Context) error
}
