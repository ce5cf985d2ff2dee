package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

func TestWatchCancelsOnFirstSignal(t *testing.T) {
	signals := make(chan os.Signal, 2)
	ctx, stop := watch(context.Background(), logger.Nop(), signals)
	defer stop()

	signals <- syscall.SIGTERM
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("context not cancelled after signal")
	}
}

func TestWatchSecondSignalExits(t *testing.T) {
	codes := make(chan int, 1)
	orig := exit
	exit = func(code int) { codes <- code }
	t.Cleanup(func() { exit = orig })

	signals := make(chan os.Signal, 2)
	ctx, stop := watch(context.Background(), logger.Nop(), signals)
	defer stop()

	signals <- os.Interrupt
	<-ctx.Done()
	signals <- os.Interrupt
	select {
	case code := <-codes:
		if code != 1 {
			t.Fatalf("exit code: want=1 got=%d", code)
		}
	case <-time.After(time.Second):
		t.Fatalf("second signal did not exit")
	}
}

func TestWatchStopWithoutSignalDoesNotExit(t *testing.T) {
	orig := exit
	exit = func(code int) { t.Errorf("unexpected exit(%d)", code) }
	t.Cleanup(func() { exit = orig })

	signals := make(chan os.Signal, 2)
	ctx, stop := watch(context.Background(), logger.Nop(), signals)
	stop()
	<-ctx.Done()
	signals <- syscall.SIGHUP
	time.Sleep(20 * time.Millisecond)
}
