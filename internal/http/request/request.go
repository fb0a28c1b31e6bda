// Package request разбирает общие параметры HTTP-запросов.
package request

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/csa-backend/internal/models"
)

// ErrInvalidRange дата начала позже даты окончания.
var ErrInvalidRange = errors.New("date_from must not be after date_to")

// NewValidator возвращает валидатор с тегом datetime=<layout>.
// В validator v9 такого тега нет, поэтому все обработчики берут валидатор отсюда.
func NewValidator() *validator.Validate {
	v := validator.New()
	// ошибка возможна только при пустом имени тега
	_ = v.RegisterValidation("datetime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(fl.Param(), fl.Field().String())
		return err == nil
	})
	return v
}

// DateRange читает date_from и date_to из строки запроса.
// Ошибки формата возвращаются как validator.ValidationErrors.
func DateRange(r *http.Request, validate *validator.Validate) (time.Time, time.Time, error) {
	q := models.DummyDateRange{
		DateFrom: r.URL.Query().Get("date_from"),
		DateTo:   r.URL.Query().Get("date_to"),
	}
	if err := validate.Struct(q); err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, err := time.Parse(time.DateOnly, q.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(time.DateOnly, q.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return from, to, nil
}
