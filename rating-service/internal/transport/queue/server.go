// transport/queue подписывает rating-service на очереди update_<entity>_rating.
//
// Сообщения приходят без replyTo. Политика подтверждения:
//   - успех и неизвестная сущность - Ack (неизвестная только логируется);
//   - невалидный рейтинг - Ack без повторной доставки;
//   - битый JSON - Nack без requeue;
//   - сбой БД - повторная доставка (решение принимает rpc.Server).
package queue

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/log"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/service"
)

// RatingService - операция сервиса, доступная через очереди.
type RatingService interface {
	UpdateRating(ctx context.Context, entity contracts.RatingEntity, id string, rating float64) error
}

// RatingServer - обработчики очередей rating-service.
type RatingServer struct {
	service RatingService
}

// NewRatingServer создаёт обработчики поверх сервисного слоя.
func NewRatingServer(service RatingService) *RatingServer {
	return &RatingServer{service: service}
}

// Register подписывает обработчик на очередь каждой сущности.
func (s *RatingServer) Register(srv *rpc.Server) {
	for _, e := range contracts.RatingEntities {
		srv.Handle(contracts.RatingQueue(e), s.UpdateRating(e))
	}
}

// UpdateRating возвращает обработчик очереди сущности entity.
func (s *RatingServer) UpdateRating(entity contracts.RatingEntity) rpc.HandlerFunc {
	const op = "transport/queue/UpdateRating"

	return func(ctx context.Context, req *rpc.Request) (any, error) {
		var in contracts.RatingUpdate
		if err := req.Decode(&in); err != nil {
			return nil, err
		}

		err := s.service.UpdateRating(ctx, entity, in.EntityID, in.Rating)
		switch {
		case err == nil:
			return nil, nil
		case errors.Is(err, service.ErrEntityNotFound):
			log.From(ctx).Warn("rating_entity_not_found",
				slog.String("op", op),
				slog.String("entity", string(entity)),
				slog.String("entity_id", in.EntityID),
			)
			return nil, nil
		case errors.Is(err, service.ErrInvalidArgument):
			return nil, rpc.Errorf(codes.InvalidArgument, "%s: %v", op, service.ErrInvalidArgument)
		default:
			return nil, err
		}
	}
}
