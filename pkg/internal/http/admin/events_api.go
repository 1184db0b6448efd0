package admin

import (
	"git.solsynth.dev/hypernet/polls/pkg/internal/identity"
	"git.solsynth.dev/hypernet/polls/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

type eventInfo struct {
	Event string              `json:"event"`
	Data  jsoniter.RawMessage `json:"data"`
}

// adminReceiveEvent handles events pushed by the identity side,
// for now only the removal of an account.
func adminReceiveEvent(c *fiber.Ctx) error {
	var in eventInfo
	if err := jsoniter.Unmarshal(c.Body(), &in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed event payload")
	}

	switch in.Event {
	case "deletion":
		var data struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		}
		if err := jsoniter.Unmarshal(in.Data, &data); err != nil || len(data.ID) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "malformed deletion event")
		}
		switch data.Type {
		case "account":
			if err := services.DeleteAccountPolls(c.UserContext(), data.ID); err != nil {
				return err
			}
			if deleter, ok := identity.P.(identity.AccountDeleter); ok {
				if err := deleter.DeleteAccount(c.UserContext(), data.ID); err != nil {
					log.Error().Err(err).Str("account", data.ID).Msg("An error occurred when deleting account...")
					return fiber.NewError(fiber.StatusInternalServerError, "unable to delete account")
				}
			}
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unsupported deletion type")
		}
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unsupported event")
	}

	return c.SendStatus(fiber.StatusOK)
}
