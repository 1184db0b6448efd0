package api

import (
	"git.solsynth.dev/hypernet/polls/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/polls/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func votePoll(c *fiber.Ctx) error {
	user := exts.GetCurrentUser(c)

	var data struct {
		OptionIndex *int `json:"option_index" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	vote, err := services.SubmitVote(c.UserContext(), user, c.Params("pollId"), *data.OptionIndex)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(vote)
}

func listMyVote(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetCurrentUser(c)

	votes, err := services.ListMyVotes(c.UserContext(), user, c.Params("pollId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": len(votes),
		"data":  votes,
	})
}
