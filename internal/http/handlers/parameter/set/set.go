package set

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/csa-backend/internal/http/response"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/services/parameter"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Set(ctx context.Context, key, value string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Изменить параметр
// @Tags Parameters
// @Accept  json
// @Produce  json
// @Param key path string true "Ключ параметра"
// @Param parameter body models.DummyParameter true "Новое значение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 404 {object} response.ErrorResponse "Неизвестный параметр"
// @Failure 422 {object} response.ErrorResponse "Недопустимое значение"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/parameters/{key} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.parameter.set"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := chi.URLParam(r, "key")
	var req models.DummyParameter
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.Set(r.Context(), key, req.Value); err != nil {
		log.Error("failed to set parameter", slog.String("key", key), sl.Err(err))
		switch {
		case errors.Is(err, parameter.ErrUnknownParameter):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown parameter"))
		case errors.Is(err, parameter.ErrInvalidValue):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not set parameter"))
		}
		return
	}

	log.Info("parameter set", slog.String("key", key))
	render.JSON(w, r, response.StatusOKWithData(models.Parameter{Key: key, Value: req.Value}))
}
