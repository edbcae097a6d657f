package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gradeflow/session-gateway/auth"
	"github.com/gradeflow/session-gateway/backendapi"
	"github.com/gradeflow/session-gateway/internal/config"
	"github.com/gradeflow/session-gateway/server"
	"github.com/gradeflow/session-gateway/server/flowstate"
	"github.com/gradeflow/session-gateway/session"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	for {
		if err := run(log); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run(log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	// Local development reads its environment from a .env file; in
	// deployment the variables arrive through the platform.
	godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New: %w", err)
	}
	displayAppname(cfg.GetAppName())

	backend := backendapi.NewClient(cfg.GetBackendURL(), nil, log)

	orchestrator, err := auth.NewOrchestrator(backend, cfg, cfg.GetBaseURL(), log)
	if err != nil {
		return fmt.Errorf("auth.NewOrchestrator: %w", err)
	}

	sessions := session.NewTTLRepo(cfg.GetSessionTTL())
	defer sessions.Stop()
	flowStates := flowstate.NewTTLRepo(cfg.GetFlowStateTTL())
	defer flowStates.Stop()

	gateway, err := server.New(cfg, backend, orchestrator, sessions, flowStates, log)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: gateway}
	go listenAndServe(httpServer, log)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(httpServer *http.Server, log zerolog.Logger) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
