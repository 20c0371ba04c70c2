// Package handler contains the HTTP handlers: request binding and
// validation, delegation to the service layer, and translation of the error
// taxonomy into HTTP responses in one place.
package handler

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eventra/event-ticketing/internal/apperr"
)

var validate = validator.New()

// fail renders an error from the service layer. Every error response
// carries a short message; validation errors additionally carry the
// offending field and capacity errors the remaining ticket count. Internal
// causes are logged, never exposed.
func fail(c echo.Context, logger *slog.Logger, err error) error {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal && logger != nil {
		logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", ae.Err,
		)
	}
	body := echo.Map{"error": ae.Message}
	if ae.Field != "" {
		body["field"] = ae.Field
	}
	if ae.Kind == apperr.KindCapacity {
		body["remaining"] = ae.Remaining
	}
	return c.JSON(ae.HTTPStatus(), body)
}

// bindAndValidate decodes the JSON body into req and runs struct
// validation, converting the first failing field into a ValidationError.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("body", "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperr.Validation(fe.Field(), validationMessage(fe))
		}
		return apperr.Validation("body", "invalid request body")
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}
