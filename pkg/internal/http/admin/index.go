package admin

import (
	"git.solsynth.dev/hypernet/polls/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
)

func MapControllers(app *fiber.App, baseURL string) {
	admin := app.Group(baseURL, verifyAdmin)
	{
		admin.Get("/polls/flagged", adminListFlaggedPoll)
		admin.Delete("/polls/:pollId", adminDeletePoll)
		admin.Post("/events", adminReceiveEvent)
		admin.Get("/system", adminGetServerInfo)
	}
}

func verifyAdmin(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	return c.Next()
}
