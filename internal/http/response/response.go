// Package response задаёт конверт JSON-ответов API: статус, текст ошибки и данные.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Значения поля status.
const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// Response конверт ответа. Error заполняется при неуспехе, Data при успехе.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse ответ с ошибкой, отдельный тип нужен для @Failure в swagger.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// StatusOKWithData успешный ответ с данными.
func StatusOKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error ответ с ошибкой msg.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: msg}
}

// ValidationError собирает нарушения валидации в одну строку через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return Response{Status: StatusError, Error: strings.Join(msgs, ", ")}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is a required field", field)
	case "numeric":
		return fmt.Sprintf("field %s can contain only numbers", field)
	case "datetime":
		return fmt.Sprintf("field %s must be a date in format %s", field, fe.Param())
	}
	return fmt.Sprintf("field %s is not a valid", field)
}
