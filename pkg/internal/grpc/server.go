package grpc

import (
	"net"

	"git.solsynth.dev/hypernet/polls/pkg/internal/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "hypernet.polls"

type App struct {
	srv    *grpc.Server
	health *health.Server
}

func NewGrpc() *App {
	server := &App{
		srv:    grpc.NewServer(),
		health: health.NewServer(),
	}

	healthpb.RegisterHealthServer(server.srv, server.health)
	reflection.Register(server.srv)

	server.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return server
}

// CheckHealth reports the service as serving while the database answers pings.
func (v *App) CheckHealth() {
	status := healthpb.HealthCheckResponse_SERVING
	if err := database.Ping(); err != nil {
		log.Warn().Err(err).Msg("Database ping failed, marking service as not serving...")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	v.health.SetServingStatus("", status)
	v.health.SetServingStatus(ServiceName, status)
}

func (v *App) Serve(listener net.Listener) error {
	return v.srv.Serve(listener)
}

func (v *App) Listen() {
	listener, err := net.Listen("tcp", viper.GetString("grpc_bind"))
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when binding grpc...")
	}

	if err := v.Serve(listener); err != nil {
		log.Error().Err(err).Msg("Grpc server stopped...")
	}
}

func (v *App) Stop() {
	v.health.Shutdown()
	v.srv.GracefulStop()
}
