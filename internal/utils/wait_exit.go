package utils

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maskserve/maskserve/internal/logging"
	"github.com/maskserve/maskserve/internal/task"
)

func WaitExit(shutdownTimeout time.Duration) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT)
	signal.Notify(sig, syscall.SIGTERM)
	signal.Notify(sig, syscall.SIGHUP)

	// wait for signal
	<-sig

	// gracefully shutdown
	logging.Info().Msg("shutting down")
	_ = task.GracefulShutdown(shutdownTimeout)
}
