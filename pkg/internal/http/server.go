package http

import (
	"strings"

	"git.solsynth.dev/hypernet/polls/pkg/internal/http/admin"
	"git.solsynth.dev/hypernet/polls/pkg/internal/http/api"
	"git.solsynth.dev/hypernet/polls/pkg/internal/http/exts"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/valyala/fasthttp/reuseport"
)

type App struct {
	app *fiber.App
}

func NewServer() *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		EnableIPValidation:      true,
		ServerHeader:            "Hypernet.Polls",
		AppName:                 "Hypernet.Polls",
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          viper.GetStringSlice("trusted_proxies"),
		JSONEncoder:             json.Marshal,
		JSONDecoder:             json.Unmarshal,
		BodyLimit:               512 * 1024,
		EnablePrintRoutes:       viper.GetBool("debug.print_routes"),
		ErrorHandler:            exts.ErrorHandler,
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowCredentials: false,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodHead,
			fiber.MethodOptions,
			fiber.MethodPut,
			fiber.MethodDelete,
		}, ","),
		AllowHeaders: "authorization, content-type, origin, x-request-id",
		MaxAge:       864000,
	}))

	app.Use(fiberzerolog.New(fiberzerolog.Config{
		Logger: &log.Logger,
	}))

	app.Use(exts.ContextMiddleware)

	admin.MapControllers(app, "/api/admin")
	api.MapControllers(app, "/api")

	return &App{app}
}

// Fiber exposes the underlying app, mostly for tests.
func (v *App) Fiber() *fiber.App {
	return v.app
}

func (v *App) Listen() {
	bind := viper.GetString("bind")
	if !viper.GetBool("reuse_port") {
		if err := v.app.Listen(bind); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when starting server...")
		}
		return
	}

	ln, err := reuseport.Listen("tcp4", bind)
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when binding reuse port...")
	}
	if err := v.app.Listener(ln); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}

func (v *App) Shutdown() error {
	return v.app.Shutdown()
}
