package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/rating-service/internal/storage"
	"github.com/pribylovaa/go-food-delivery/rating-service/mocks"
)

func newService(t *testing.T) (*Service, *mocks.MockStorage) {
	t.Helper()
	st := mocks.NewMockStorage(gomock.NewController(t))
	return New(st, config.RatingConfig{Min: 0, Max: 5}), st
}

func TestUpdateRating_OK(t *testing.T) {
	s, st := newService(t)
	st.EXPECT().SetRating(gomock.Any(), contracts.RatingDish, "d-1", 4.2).Return(nil)

	require.NoError(t, s.UpdateRating(context.Background(), contracts.RatingDish, " d-1 ", 4.2))
}

func TestUpdateRating_Invalid(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	for _, r := range []float64{-0.1, 5.01, math.NaN()} {
		require.ErrorIs(t, s.UpdateRating(ctx, contracts.RatingRestaurant, "r-1", r), ErrInvalidArgument)
	}
	require.ErrorIs(t, s.UpdateRating(ctx, contracts.RatingRestaurant, "  ", 3), ErrInvalidArgument)
}

func TestUpdateRating_StorageErrors(t *testing.T) {
	s, st := newService(t)
	ctx := context.Background()
	boom := errors.New("mongo down")

	gomock.InOrder(
		st.EXPECT().SetRating(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(storage.ErrNotFound),
		st.EXPECT().SetRating(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(boom),
	)

	require.ErrorIs(t, s.UpdateRating(ctx, contracts.RatingDeliveryAgent, "a-1", 1), ErrEntityNotFound)

	err := s.UpdateRating(ctx, contracts.RatingDeliveryAgent, "a-1", 1)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrEntityNotFound)
}
