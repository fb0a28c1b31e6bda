package use

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/csa-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csa-backend/internal/http/request"
	"github.com/magabrotheeeer/csa-backend/internal/http/response"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/models"
	"github.com/magabrotheeeer/csa-backend/internal/services/joker"
	"github.com/magabrotheeeer/csa-backend/internal/storage"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Use(ctx context.Context, memberID int, date time.Time) (models.Joker, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: request.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Использовать джокер
// @Description Отказ от выдачи на неделю указанной даты.
// @Tags Jokers
// @Accept  json
// @Produce  json
// @Param joker body models.DummyJoker true "Дата выдачи"
// @Success 200 {object} response.Response "Созданный джокер"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Джокеры выключены"
// @Failure 409 {object} response.ErrorResponse "Джокер на эту неделю уже есть"
// @Failure 422 {object} response.ErrorResponse "Джокер на эту неделю взять нельзя"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /jokers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.joker.use"
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

	var req models.DummyJoker
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		log.Error("failed to parse date", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid date"))
		return
	}

	created, err := h.service.Use(r.Context(), memberID, date)
	if err != nil {
		log.Error("failed to use joker", slog.String("date", req.Date), sl.Err(err))
		switch {
		case errors.Is(err, joker.ErrJokersDisabled):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, joker.ErrJokerAlreadyUsed), errors.Is(err, storage.ErrAlreadyExists):
			w.WriteHeader(http.StatusConflict)
		case errors.Is(err, joker.ErrJokerNotAllowed):
			w.WriteHeader(http.StatusUnprocessableEntity)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not use joker"))
			return
		}
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("joker used", slog.Int("joker_id", created.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"joker": created,
	}))
}
