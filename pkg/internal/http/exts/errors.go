package exts

import (
	"errors"

	"git.solsynth.dev/hypernet/polls/pkg/internal/identity"
	"git.solsynth.dev/hypernet/polls/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorHandler renders every failure as {"error": {"kind", "message"}}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, kind := classifyError(c, err)
	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed with server error...")
		if kind == "internal" {
			message = "internal server error"
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"error": ErrorBody{
			Kind:    kind,
			Message: message,
		},
	})
}

func classifyError(c *fiber.Ctx, err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest, "validation"
	case errors.Is(err, services.ErrAuth):
		if GetCurrentUser(c) == nil {
			return fiber.StatusUnauthorized, "auth"
		}
		return fiber.StatusForbidden, "auth"
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrStore), errors.Is(err, identity.ErrUnavailable):
		return fiber.StatusInternalServerError, "store"
	case errors.Is(err, identity.ErrInvalidAccount):
		return fiber.StatusBadRequest, "validation"
	case errors.Is(err, identity.ErrEmailTaken):
		return fiber.StatusConflict, "validation"
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrInvalidSession):
		return fiber.StatusUnauthorized, "auth"
	case errors.As(err, &fe):
		switch {
		case fe.Code == fiber.StatusUnauthorized || fe.Code == fiber.StatusForbidden:
			return fe.Code, "auth"
		case fe.Code == fiber.StatusNotFound:
			return fe.Code, "not_found"
		case fe.Code < fiber.StatusInternalServerError:
			return fe.Code, "validation"
		default:
			return fe.Code, "internal"
		}
	default:
		return fiber.StatusInternalServerError, "internal"
	}
}
