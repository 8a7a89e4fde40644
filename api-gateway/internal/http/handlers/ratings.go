package handlers

import (
	"fmt"
	"net/http"

	apierrors "github.com/pribylovaa/go-food-delivery/api-gateway/internal/errors"
	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/models"
)

// UpdateRating - POST /ratings. Обновление публикуется в update_<entity>_rating, ответ 202.
func (h *Handlers) UpdateRating(w http.ResponseWriter, r *http.Request) {
	var in models.RatingRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	entity, upd, err := in.Parse()
	if err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err))
		return
	}

	if err := h.ratings.Update(r.Context(), entity, upd); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, models.Accepted())
}
