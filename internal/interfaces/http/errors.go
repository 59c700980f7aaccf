package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
)

// errorStatus traduce un error de dominio a status HTTP y código estable.
// El orden importa: ErrInactiveProduct viaja envuelto junto a ErrValidation.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInactiveProduct):
		return fiber.StatusConflict, "INACTIVE_PRODUCT"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrEmptyCart):
		return fiber.StatusUnprocessableEntity, "EMPTY_CART"
	case errors.Is(err, domain.ErrNoOp):
		return fiber.StatusUnprocessableEntity, "NO_OP"
	case errors.Is(err, domain.ErrStorage):
		return fiber.StatusServiceUnavailable, "STORAGE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// writeError responde con dto.ErrorResponse. Los errores 5xx se registran y no exponen la causa.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error procesando la petición")
		msg = "error interno, intente más tarde"
		if status == fiber.StatusServiceUnavailable {
			msg = "almacenamiento no disponible, intente más tarde"
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_BODY", "cuerpo inválido")
}

// ErrorHandler manejador global de Fiber: errores de ruteo de Fiber conservan su status,
// el resto se traduce como error de dominio.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := strings.ToUpper(strings.ReplaceAll(fiberStatusText(fe.Code), " ", "_"))
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}

func fiberStatusText(code int) string {
	if s := utils.StatusMessage(code); s != "" {
		return s
	}
	return "error"
}
