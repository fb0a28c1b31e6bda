package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csa-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csa-backend/internal/http/response"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/services/joker"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Cancel(ctx context.Context, memberID, jokerID int) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отменить джокер
// @Tags Jokers
// @Produce  json
// @Param id path int true "ID джокера"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Джокер не найден"
// @Failure 409 {object} response.ErrorResponse "Срок изменения истёк"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /jokers/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.joker.cancel"
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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if err := h.service.Cancel(r.Context(), memberID, id); err != nil {
		log.Error("failed to cancel joker", slog.Int("joker_id", id), sl.Err(err))
		switch {
		case errors.Is(err, storage.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("joker not found"))
		case errors.Is(err, joker.ErrJokerChangeTooLate):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(joker.ErrJokerChangeTooLate.Error()))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel joker"))
		}
		return
	}

	log.Info("joker cancelled", slog.Int("joker_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"cancelled_id": id,
	}))
}
