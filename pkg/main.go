package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	pkg "git.solsynth.dev/hypernet/polls/pkg/internal"
	"git.solsynth.dev/hypernet/polls/pkg/internal/cache"
	"git.solsynth.dev/hypernet/polls/pkg/internal/database"
	"git.solsynth.dev/hypernet/polls/pkg/internal/grpc"
	"git.solsynth.dev/hypernet/polls/pkg/internal/http"
	"git.solsynth.dev/hypernet/polls/pkg/internal/identity"
	"git.solsynth.dev/hypernet/polls/pkg/internal/logger"
	"git.solsynth.dev/hypernet/polls/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ____       _ _     \n|  _ \\ ___ | | |___ \n| |_) / _ \\| | / __|\n|  __/ (_) | | \\__ \\\n|_|   \\___/|_|_|___/"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Hypernet.Polls"), pkg.AppVersion)
	fmt.Printf("The polling service in Hypernet\n")
	color.HiBlack("=====================================================\n")

	// Environment overrides
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("An error occurred when loading .env file.")
	}

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("POLLS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	logger.Configure(logger.ParseLevel(viper.GetString("log.level")), viper.GetString("log.file"))

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Initialize cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Identity provider
	if provider, err := identity.NewLocalProvider(
		database.C,
		viper.GetString("security.token_secret"),
		viper.GetDuration("security.session_ttl"),
		viper.GetStringSlice("security.admins"),
	); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when configuring identity provider.")
	} else {
		identity.P = provider
		log.Info().Msg("Identity provider configured.")
	}

	// Server
	server := http.NewServer()
	go server.Listen()

	grpcServer := grpc.NewGrpc()
	grpcServer.CheckHealth()
	go grpcServer.Listen()

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.AddFunc("@every 1m", grpcServer.CheckHealth)
	quartz.Start()

	// Messages
	log.Info().Str("http", viper.GetString("bind")).Str("grpc", viper.GetString("grpc_bind")).Msg("Hypernet.Polls is running.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
	grpcServer.Stop()
	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("An error occurred when shutting down server...")
	}
}
