package exts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var validation = newValidation()

func newValidation() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by the names clients send.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func BindAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		log.Debug().Err(err).Msg("Unable to parse request body...")
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	} else if err := validation.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return "invalid request body"
	}

	return strings.Join(lo.Map(fields, func(item validator.FieldError, _ int) string {
		switch item.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", item.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email", item.Field())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", item.Field(), item.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", item.Field(), item.Param())
		default:
			return fmt.Sprintf("%s failed %s validation", item.Field(), item.Tag())
		}
	}), "; ")
}
