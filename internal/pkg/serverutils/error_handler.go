package serverutils

import (
	"encoding/json"
	"errors"

	"beaglemind-be/pkg/conversation"
	"beaglemind-be/pkg/llm"
	"beaglemind-be/pkg/wizard"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts handler errors into the standard envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}

// ErrorHandler maps an error to a status code and writes the envelope. It also serves as
// fiber.Config.ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code, message, data := Classify(err)
	return ctx.Status(code).JSON(ErrorResponseWithData(code, message, data))
}

// Classify maps an error to the status code, message and data of its envelope.
func Classify(err error) (int, string, interface{}) {
	var (
		validationErrs validator.ValidationErrors
		wizardInvalid  *wizard.ValidationError
		parseErr       *wizard.ParseError
		dispatchErr    *llm.DispatchError
		upstreamErr    *conversation.UpstreamError
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		fiberErr       *fiber.Error
	)

	switch {
	case errors.As(err, &validationErrs):
		return fiber.StatusBadRequest, "Validation failed", FieldErrors(validationErrs)
	case errors.As(err, &wizardInvalid):
		return fiber.StatusBadRequest, wizardInvalid.Error(), nil
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return fiber.StatusBadRequest, "Invalid request body", nil
	case errors.As(err, &parseErr):
		return fiber.StatusBadGateway, "Model output not parseable", nil
	case errors.As(err, &dispatchErr):
		return fiber.StatusBadGateway, "Model request failed", fiber.Map{
			"provider": dispatchErr.Provider,
			"model":    dispatchErr.Model,
		}
	case errors.As(err, &upstreamErr):
		if len(upstreamErr.Body) == 0 {
			return upstreamErr.StatusCode, upstreamErr.Message, nil
		}
		return upstreamErr.StatusCode, upstreamErr.Message, upstreamErr.Body
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message, nil
	default:
		return fiber.StatusInternalServerError, err.Error(), nil
	}
}
