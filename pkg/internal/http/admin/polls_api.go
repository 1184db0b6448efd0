package admin

import (
	"git.solsynth.dev/hypernet/polls/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/polls/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func adminListFlaggedPoll(c *fiber.Ctx) error {
	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)
	if take <= 0 || take > 100 {
		take = 20
	}

	polls, err := services.ListFlaggedPolls(c.UserContext(), take, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": len(polls),
		"data":  polls,
	})
}

func adminDeletePoll(c *fiber.Ctx) error {
	user := exts.GetCurrentUser(c)

	if err := services.DeletePollAsAdmin(c.UserContext(), user, c.Params("pollId")); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusOK)
}
