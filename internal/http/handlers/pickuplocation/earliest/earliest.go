// Package earliest отдаёт первую выдачу, с которой может действовать новый пункт выдачи.
package earliest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csa-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csa-backend/internal/http/response"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	EarliestPickupLocationChange(ctx context.Context, memberID int) (time.Time, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Ближайшая смена пункта выдачи
// @Tags PickupLocations
// @Produce  json
// @Success 200 {object} response.Response "Дата в формате YYYY-MM-DD"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /pickup-location/earliest-change [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pickuplocation.earliest"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberID, ok := middlewarectx.MemberIDFromContext(r.Context())
	if !ok {
		log.Error("member id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	date, err := h.service.EarliestPickupLocationChange(r.Context(), memberID)
	if err != nil {
		log.Error("failed to compute earliest pickup location change", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not compute earliest change date"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"earliest_change_date": date.Format(time.DateOnly),
	}))
}
