package api

import (
	"git.solsynth.dev/hypernet/polls/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/polls/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func flagPoll(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetCurrentUser(c)

	flag, err := services.NewFlag(c.UserContext(), user, c.Params("pollId"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(flag)
}
