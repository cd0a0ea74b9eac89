package signalhandler

import (
	"context"
	"os/signal"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// SetupHandler returns a context that is cancelled on SIGINT or SIGTERM.
// In-flight work sees ctx.Done and stops picking up new items. A non-zero
// timeout additionally bounds the whole run.
func SetupHandler(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, unix.SIGINT, unix.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}

	timed, cancel := context.WithTimeout(ctx, timeout)
	return timed, func() {
		cancel()
		stop()
	}
}

// GetOptimalProcs returns the default number of worker goroutines for the system
func GetOptimalProcs() int {
	// Get the number of CPUs available
	numCPU := runtime.NumCPU()

	// Leave headroom for the decoder libraries and the progress renderer
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}

// ResolveWorkers returns requested when positive, otherwise GetOptimalProcs
func ResolveWorkers(requested int) int {
	if requested > 0 {
		return requested
	}
	return GetOptimalProcs()
}
