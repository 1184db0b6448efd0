package api

import (
	"git.solsynth.dev/hypernet/polls/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/polls/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

type pollRequest struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"required"`
}

func listOwnedPoll(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetCurrentUser(c)

	polls, err := services.ListPollsByOwner(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": len(polls),
		"data":  polls,
	})
}

func getPoll(c *fiber.Ctx) error {
	poll, err := services.GetPoll(c.UserContext(), c.Params("pollId"))
	if err != nil {
		return err
	}

	metric, err := services.GetPollMetric(c.UserContext(), poll)
	if err != nil {
		return err
	}
	poll.Metric = &metric

	return c.JSON(poll)
}

func createPoll(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetCurrentUser(c)

	var data pollRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll, err := services.NewPoll(c.UserContext(), user, data.Question, data.Options)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(poll)
}

func updatePoll(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetCurrentUser(c)

	var data pollRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll, err := services.UpdatePoll(c.UserContext(), user, c.Params("pollId"), data.Question, data.Options)
	if err != nil {
		return err
	}

	return c.JSON(poll)
}

func deletePoll(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetCurrentUser(c)

	if err := services.DeletePoll(c.UserContext(), user, c.Params("pollId")); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusOK)
}
