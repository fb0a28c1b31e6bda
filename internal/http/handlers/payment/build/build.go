// Package build отдаёт администратору платежи за месяц.
//
// Без флага save платежи только рассчитываются. С флагом save они сохраняются
// так же, как при плановом запуске, и участники получают уведомления.
package build

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/csa-backend/internal/http/request"
	"github.com/magabrotheeeer/csa-backend/internal/http/response"
	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/models"
)

type Handler struct {
	log      *slog.Logger
	builder  Builder
	creator  Creator
	validate *validator.Validate
}

// Builder рассчитывает платежи без сохранения.
type Builder interface {
	BuildPaymentsForMonth(ctx context.Context, reference time.Time) ([]models.Payment, error)
}

// Creator рассчитывает, сохраняет и рассылает платежи.
type Creator interface {
	CreatePayments(ctx context.Context, reference time.Time) ([]models.Payment, error)
}

func New(log *slog.Logger, builder Builder, creator Creator) *Handler {
	return &Handler{
		log:      log,
		builder:  builder,
		creator:  creator,
		validate: request.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Платежи за месяц
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyBuildPayments true "Месяц MM-YYYY и флаг сохранения"
// @Success 200 {object} response.Response "Платежи"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/payments/build [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.build"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBuildPayments
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
	reference, err := time.Parse("01-2006", req.Month)
	if err != nil {
		log.Error("failed to parse date", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid date"))
		return
	}

	var payments []models.Payment
	if req.Save {
		payments, err = h.creator.CreatePayments(r.Context(), reference)
	} else {
		payments, err = h.builder.BuildPaymentsForMonth(r.Context(), reference)
	}
	if err != nil {
		log.Error("failed to build payments", slog.String("month", req.Month), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build payments"))
		return
	}

	log.Info("payments built", slog.String("month", req.Month), slog.Bool("saved", req.Save), slog.Int("count", len(payments)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payments": payments,
		"saved":    req.Save,
	}))
}
