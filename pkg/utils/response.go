package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "task-system/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

// errorList сопоставляет доменные ошибки HTTP-статусам.
var errorList = map[error]int{
	apperrors.ErrNotFound:              http.StatusNotFound,
	apperrors.ErrBadRequest:            http.StatusBadRequest,
	apperrors.ErrUnauthorized:          http.StatusUnauthorized,
	apperrors.ErrForbidden:             http.StatusForbidden,
	apperrors.ErrEmptyAuthHeader:       http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader:     http.StatusUnauthorized,
	apperrors.ErrInvalidToken:          http.StatusUnauthorized,
	apperrors.ErrTokenExpired:          http.StatusUnauthorized,
	apperrors.ErrMissingPhoto:          http.StatusBadRequest,
	apperrors.ErrPhotoUpload:           http.StatusBadGateway,
	apperrors.ErrPenaltyNotEligible:    http.StatusConflict,
	apperrors.ErrPenaltyAlreadyApplied: http.StatusConflict,
	apperrors.ErrPenaltyAmountMismatch: http.StatusBadRequest,
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// ErrorResponse переводит ошибку в JSON-ответ. Ошибки хранилища наружу не
// уходят: клиент видит общее сообщение, детали остаются в логах.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	message := "Внутренняя ошибка сервера"
	code := http.StatusInternalServerError

	var httpErr *apperrors.HttpError
	var inputErr *apperrors.InvalidInputError

	switch {
	case errors.As(err, &httpErr):
		message = httpErr.Message
		code = httpErr.Code
	case errors.As(err, &inputErr):
		message = inputErr.Message
		code = http.StatusBadRequest
	default:
		for known, statusCode := range errorList {
			if errors.Is(err, known) {
				message = known.Error()
				code = statusCode
				break
			}
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("ошибка обработки запроса",
			zap.String("uri", ctx.Request().RequestURI),
			zap.Error(err),
		)
	}

	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    struct{}{},
		Message: message,
	})
}
