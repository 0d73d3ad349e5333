package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CreateGracefulShutdownChannel returns a channel that receives SIGINT and
// SIGTERM.
func CreateGracefulShutdownChannel() chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// ListenForShutdown blocks until a signal arrives, runs the shutdown
// callback, then waits for done or the grace period before returning.
func ListenForShutdown(
	signalChan chan os.Signal,
	done chan bool,
	shutdownFunc func(),
	gracePeriod time.Duration,
	logger *zap.Logger,
) {
	sig := <-signalChan
	logger.Sugar().Infow("Received shutdown signal", "signal", sig.String())

	go func() {
		shutdownFunc()
		done <- true
	}()

	select {
	case <-done:
		logger.Sugar().Infow("Shutdown complete")
	case <-time.After(gracePeriod):
		logger.Sugar().Warnw("Shutdown grace period elapsed, exiting")
	}
}
