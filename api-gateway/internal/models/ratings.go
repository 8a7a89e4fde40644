package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/pribylovaa/go-food-delivery/pkg/contracts"
)

// RatingRequest - вход POST /ratings. Диапазон рейтинга проверяет rating-service.
type RatingRequest struct {
	Entity   string  `json:"entity"`
	EntityID string  `json:"entity_id"`
	Rating   float64 `json:"rating"`
}

// Parse проверяет запрос и возвращает сущность и полезную нагрузку для очереди.
func (r RatingRequest) Parse() (contracts.RatingEntity, contracts.RatingUpdate, error) {
	entity, err := contracts.ParseRatingEntity(r.Entity)
	if err != nil {
		return "", contracts.RatingUpdate{}, err
	}

	if strings.TrimSpace(r.EntityID) == "" {
		return "", contracts.RatingUpdate{}, fmt.Errorf("entity_id is required")
	}

	if math.IsNaN(r.Rating) || math.IsInf(r.Rating, 0) {
		return "", contracts.RatingUpdate{}, fmt.Errorf("rating must be a finite number")
	}

	return entity, contracts.RatingUpdate{EntityID: r.EntityID, Rating: r.Rating}, nil
}
