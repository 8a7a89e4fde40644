// service проверяет и применяет обновления рейтинга, пересчитанного review-сервисом.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/log"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/storage"
)

var (
	// ErrInvalidArgument - пустой id или рейтинг вне диапазона.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEntityNotFound - сущности с таким id нет.
	ErrEntityNotFound = errors.New("entity not found")
)

// Service описывает бизнес-логику rating-service.
type Service struct {
	storage storage.Storage
	cfg     config.RatingConfig
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.RatingConfig) *Service {
	return &Service{storage: storage, cfg: cfg}
}

// UpdateRating выставляет рейтинг сущности.
func (s *Service) UpdateRating(ctx context.Context, entity contracts.RatingEntity, id string, rating float64) error {
	const op = "service/rating/UpdateRating"

	id = strings.TrimSpace(id)
	if id == "" || math.IsNaN(rating) || rating < s.cfg.Min || rating > s.cfg.Max {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.storage.SetRating(ctx, entity, id, rating); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEntityNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("rating_updated",
		slog.String("op", op),
		slog.String("entity", string(entity)),
		slog.String("entity_id", id),
		slog.Float64("rating", rating),
	)

	return nil
}
