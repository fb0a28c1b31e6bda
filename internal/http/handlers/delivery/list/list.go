// Package list реализует HTTP-обработчик прогноза выдач участника.
//
// Handler читает диапазон дат из строки запроса и возвращает выдачи
// с пунктом выдачи, подписками и состоянием джокера по каждой неделе.
package list

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
)

// Handler обрабатывает запросы прогноза выдач.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс прогноза выдач.
type Service interface {
	ListDeliveries(ctx context.Context, memberID int, from, to time.Time) ([]models.Delivery, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: request.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Прогноз выдач
// @Description Возвращает выдачи участника в диапазоне дат с состоянием джокеров.
// @Tags Deliveries
// @Produce  json
// @Param date_from query string true "Начало диапазона, YYYY-MM-DD"
// @Param date_to query string true "Конец диапазона, YYYY-MM-DD"
// @Success 200 {object} response.Response "Список выдач"
// @Failure 400 {object} response.ErrorResponse "Некорректный диапазон"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /deliveries [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.delivery.list"
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

	from, to, err := request.DateRange(r, h.validate)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		log.Error("invalid date range", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	deliveries, err := h.service.ListDeliveries(r.Context(), memberID, from, to)
	if err != nil {
		log.Error("failed to list deliveries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list deliveries"))
		return
	}

	log.Info("deliveries listed", slog.Int("count", len(deliveries)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deliveries": deliveries,
	}))
}
