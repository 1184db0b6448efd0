package exts

import (
	"errors"
	"strings"

	"git.solsynth.dev/hypernet/polls/pkg/internal/identity"
	"git.solsynth.dev/hypernet/polls/pkg/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const CookieAccessToken = "polls_access_tk"

func ExtractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); len(header) > 0 {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return c.Cookies(CookieAccessToken)
}

// ContextMiddleware resolves the acting user once per request.
// Requests with a missing or bad token continue as anonymous.
func ContextMiddleware(c *fiber.Ctx) error {
	token := ExtractToken(c)
	if len(token) == 0 || identity.P == nil {
		return c.Next()
	}

	user, err := identity.P.GetCurrentUser(c.UserContext(), token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidSession) {
			log.Warn().Err(err).Msg("Unable to resolve the current user...")
		}
		return c.Next()
	}

	c.Locals("user", user)
	c.Locals("token", token)

	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.Account {
	if user, ok := c.Locals("user").(models.Account); ok {
		return &user
	}
	return nil
}

func EnsureAuthenticated(c *fiber.Ctx) error {
	if _, ok := c.Locals("user").(models.Account); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "you need sign in before continue")
	}
	return nil
}

func EnsureAdmin(c *fiber.Ctx) error {
	if err := EnsureAuthenticated(c); err != nil {
		return err
	}
	if user := c.Locals("user").(models.Account); !user.IsAdmin {
		return fiber.NewError(fiber.StatusForbidden, "administrator privilege required")
	}
	return nil
}
