package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/pkg/log"
	"github.com/pribylovaa/go-food-delivery/pkg/queue"
	"github.com/pribylovaa/go-food-delivery/pkg/queue/memory"
	"github.com/pribylovaa/go-food-delivery/pkg/rpc"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/service"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/storage"
	"github.com/pribylovaa/go-food-delivery/rating-service/mocks"
)

func setup(t *testing.T) (*memory.Broker, *mocks.MockStorage) {
	t.Helper()

	st := mocks.NewMockStorage(gomock.NewController(t))
	b := memory.New()

	srv := rpc.NewServer(b, rpc.WithServerLogger(log.Discard()), rpc.WithRetryDelay(10*time.Millisecond))
	NewRatingServer(service.New(st, config.RatingConfig{Min: 0, Max: 5})).Register(srv)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() {
		cancel()
		srv.Wait()
		_ = b.Close()
	})

	return b, st
}

func publish(t *testing.T, b queue.Broker, q string, body string) {
	t.Helper()
	require.NoError(t, queue.Publish(context.Background(), b, q, queue.Message{Body: []byte(body)}))
}

func waitCall(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("storage was not called")
	}
}

func TestRegister_AllEntities(t *testing.T) {
	srv := rpc.NewServer(memory.New())
	NewRatingServer(nil).Register(srv)

	require.ElementsMatch(t, []string{
		"update_restaurant_rating",
		"update_delivery_agent_rating",
		"update_dish_rating",
	}, srv.Queues())
}

func TestUpdateRating_AppliedPerEntity(t *testing.T) {
	b, st := setup(t)
	called := make(chan struct{}, 1)

	st.EXPECT().
		SetRating(gomock.Any(), contracts.RatingDeliveryAgent, "agent-7", 4.75).
		DoAndReturn(func(context.Context, contracts.RatingEntity, string, float64) error {
			called <- struct{}{}
			return nil
		})

	publish(t, b, contracts.RatingQueue(contracts.RatingDeliveryAgent), `{"entityId":"agent-7","rating":4.75}`)
	waitCall(t, called)
}

func TestUpdateRating_UnknownEntityAcked(t *testing.T) {
	b, st := setup(t)
	called := make(chan struct{}, 2)

	st.EXPECT().
		SetRating(gomock.Any(), contracts.RatingRestaurant, "ghost", 3.0).
		DoAndReturn(func(context.Context, contracts.RatingEntity, string, float64) error {
			called <- struct{}{}
			return storage.ErrNotFound
		}).
		Times(1)

	publish(t, b, contracts.RatingQueue(contracts.RatingRestaurant), `{"entityId":"ghost","rating":3}`)
	waitCall(t, called)

	// Повторной доставки нет.
	time.Sleep(100 * time.Millisecond)
	require.Zero(t, b.Depth(contracts.RatingQueue(contracts.RatingRestaurant)))
	require.Empty(t, called)
}

func TestUpdateRating_TransientRetriedOnce(t *testing.T) {
	b, st := setup(t)
	called := make(chan struct{}, 2)

	st.EXPECT().
		SetRating(gomock.Any(), contracts.RatingDish, "d-1", 2.5).
		DoAndReturn(func(context.Context, contracts.RatingEntity, string, float64) error {
			called <- struct{}{}
			return errors.New("mongo: server selection timeout")
		}).
		Times(2)

	publish(t, b, contracts.RatingQueue(contracts.RatingDish), `{"entityId":"d-1","rating":2.5}`)
	waitCall(t, called)
	waitCall(t, called)

	require.Eventually(t, func() bool {
		return b.Depth(contracts.RatingQueue(contracts.RatingDish)) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestUpdateRating_BadPayloadDropped(t *testing.T) {
	b, _ := setup(t)

	// Ни битый JSON, ни рейтинг вне диапазона не доходят до хранилища.
	publish(t, b, contracts.RatingQueue(contracts.RatingDish), `{"entityId":`)
	publish(t, b, contracts.RatingQueue(contracts.RatingDish), `{"entityId":"d-1","rating":11}`)

	require.Eventually(t, func() bool {
		return b.Depth(contracts.RatingQueue(contracts.RatingDish)) == 0
	}, time.Second, 10*time.Millisecond)

	// Неожиданный вызов мока провалит тест, если обработка ещё идёт.
	time.Sleep(50 * time.Millisecond)
}
