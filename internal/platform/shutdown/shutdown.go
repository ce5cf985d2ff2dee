package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

// Signals end the process gracefully. A second one while shutting down exits at once.
var Signals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

var exit = os.Exit

// NotifyContext returns a context cancelled by the first of Signals. The returned stop
// func releases the signal handler.
func NotifyContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, Signals...)
	ctx, stop := watch(parent, log, ch)
	return ctx, func() {
		signal.Stop(ch)
		stop()
	}
}

func watch(parent context.Context, log *logger.Logger, signals <-chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stopped := make(chan struct{})
	var once sync.Once
	// stopped closes before cancel so the watcher never mistakes stop for a parent cancel.
	stop := func() {
		once.Do(func() { close(stopped) })
		cancel()
	}

	go func() {
		select {
		case sig := <-signals:
			log.Info("Shutdown signal received; draining", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			select {
			case <-stopped:
				return
			default:
			}
		case <-stopped:
			return
		}
		select {
		case sig := <-signals:
			log.Warn("Second shutdown signal; exiting immediately", "signal", sig.String())
			log.Sync()
			exit(1)
		case <-stopped:
		}
	}()
	return ctx, stop
}
