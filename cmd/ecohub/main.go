package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/ecohub/internal/config"
	"codeberg.org/mutker/ecohub/internal/errors"
	"codeberg.org/mutker/ecohub/internal/hub"
	"codeberg.org/mutker/ecohub/internal/logger"
	"codeberg.org/mutker/ecohub/internal/pid"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.LogLevel,
		File:      cfg.LogFile,
		IsService: logger.IsService(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Close()
	log.Debug().Msg("Config loaded")

	pidFile := pid.New(cfg.PIDFile)
	if err := pidFile.Write(); err != nil {
		logError(log, err, "Failed to write PID file")
		return 1
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			logError(log, err, "Failed to remove PID file")
		}
	}()

	h, err := hub.New(cfg, log)
	if err != nil {
		logError(log, err, "Failed to initialize hub")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel, log)

	if err := h.Run(ctx); err != nil {
		logError(log, err, "Error in main loop")
		return 1
	}

	log.Info().Msg("Exiting...")
	return 0
}

var (
	notifySignals = signal.Notify
	stopSignals   = signal.Stop
)

// handleSignals cancels on the first SIGINT or SIGTERM and then restores the
// default handlers, so a second signal terminates a slow shutdown.
func handleSignals(cancel context.CancelFunc, log logger.Logger) {
	sigs := make(chan os.Signal, 1)
	notifySignals(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	stopSignals(sigs)
	log.Info().Msg("Received termination signal.")
	cancel()
}

func logError(log logger.Logger, err error, msg string) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		log.ErrorWithCode(appErr).Msg(msg)
		return
	}
	log.Error().Err(err).Msg(msg)
}
