package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/spf13/viper"
)

func MapControllers(app *fiber.App, baseURL string) {
	voteLimit := viper.GetInt("polls.vote_rate_limit")
	if voteLimit <= 0 {
		voteLimit = 60
	}

	api := app.Group(baseURL)
	{
		auth := api.Group("/auth")
		{
			auth.Post("/sign-up", signUp)
			auth.Post("/sign-in", signIn)
			auth.Post("/sign-out", signOut)
		}

		api.Get("/users/me", getUserinfo)

		polls := api.Group("/polls")
		{
			polls.Get("/me", listOwnedPoll)
			polls.Post("/", createPoll)
			polls.Get("/:pollId", getPoll)
			polls.Put("/:pollId", updatePoll)
			polls.Delete("/:pollId", deletePoll)

			polls.Post("/:pollId/votes", limiter.New(limiter.Config{
				Max:        voteLimit,
				Expiration: time.Minute,
			}), votePoll)
			polls.Get("/:pollId/votes/me", listMyVote)
			polls.Post("/:pollId/flags", flagPoll)
		}
	}
}
