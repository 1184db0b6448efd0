package api

import (
	"git.solsynth.dev/hypernet/polls/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/polls/pkg/internal/identity"
	"github.com/gofiber/fiber/v2"
)

func setSessionCookie(c *fiber.Ctx, session identity.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     exts.CookieAccessToken,
		Value:    session.Token,
		Expires:  session.ExpiredAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func signUp(c *fiber.Ctx) error {
	var data struct {
		Name     string `json:"name" validate:"required,max=64"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	session, err := identity.P.SignUp(c.UserContext(), data.Name, data.Email, data.Password)
	if err != nil {
		return err
	}

	setSessionCookie(c, session)
	return c.Status(fiber.StatusCreated).JSON(session)
}

func signIn(c *fiber.Ctx) error {
	var data struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	session, err := identity.P.SignIn(c.UserContext(), data.Email, data.Password)
	if err != nil {
		return err
	}

	setSessionCookie(c, session)
	return c.JSON(session)
}

func signOut(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}

	if err := identity.P.SignOut(c.UserContext(), c.Locals("token").(string)); err != nil {
		return err
	}

	c.ClearCookie(exts.CookieAccessToken)
	return c.SendStatus(fiber.StatusOK)
}
