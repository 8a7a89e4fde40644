package clients

import (
	"context"
	"fmt"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
)

// Ratings публикует обновления рейтинга.
type Ratings struct {
	rpc *rpc.Client
}

// Update публикует update_<entity>_rating без ожидания ответа.
func (r *Ratings) Update(ctx context.Context, entity contracts.RatingEntity, in contracts.RatingUpdate) error {
	const op = "clients/Ratings.Update"

	if err := r.rpc.Notify(ctx, contracts.RatingQueue(entity), in); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
