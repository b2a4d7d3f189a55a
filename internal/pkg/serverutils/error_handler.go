package serverutils

import (
	"errors"

	"relatescore-be/pkg/assessment"
	"relatescore-be/pkg/flow"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope. Client mistakes map to 4xx, everything else to 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, res := classify(err)
		return ctx.Status(code).JSON(res)
	}
}

func classify(err error) (int, BaseResponse[any]) {
	var validation *ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validation):
		res := ErrorResponse(fiber.StatusBadRequest, "Invalid request")
		res.Errors = validation.Fields
		return fiber.StatusBadRequest, res
	case errors.Is(err, flow.ErrInvalidAction),
		errors.Is(err, assessment.ErrUnknownQuestion),
		errors.Is(err, assessment.ErrMalformedQuestion),
		errors.Is(err, assessment.ErrRatingOutOfRange):
		return fiber.StatusBadRequest, ErrorResponse(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	}
	return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, "Internal server error")
}
