package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"

	"github.com/fataldecomp/roller-installer/pkg/utils/async"
)

// safeBuffer is a thread-safe buffer for concurrent logging
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

func TestDispatch(t *testing.T) {
	t.Run("executes handler asynchronously", func(t *testing.T) {
		ctx := context.Background()
		var wg sync.WaitGroup
		executed := false

		wg.Add(1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer wg.Done()
			executed = true
			return nil
		})

		wg.Wait()
		gt.True(t, executed)
	})

	t.Run("handles errors without crashing", func(t *testing.T) {
		ctx := context.Background()
		var wg sync.WaitGroup

		wg.Add(1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer wg.Done()
			return errors.New("test error")
		})

		wg.Wait()
	})

	t.Run("recovers from panic and logs it", func(t *testing.T) {
		logBuf := &safeBuffer{}
		logger := slog.New(slog.NewTextHandler(logBuf, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		ctx := ctxlog.With(context.Background(), logger)

		done := make(chan bool, 1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer func() {
				done <- true
			}()
			panic("download ticker blew up")
		})

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.Fatal("handler did not complete within timeout")
		}

		// The log write races with the handler's deferred send, so poll
		// briefly instead of asserting immediately.
		deadline := time.Now().Add(1 * time.Second)
		for {
			out := logBuf.String()
			if strings.Contains(out, "panic in async handler") {
				gt.True(t, strings.Contains(out, "download ticker blew up"))
				gt.True(t, strings.Contains(out, "goroutine"))
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("panic was not logged within timeout")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("detaches from caller cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup
		wg.Add(1)
		async.Dispatch(ctx, func(newCtx context.Context) error {
			defer wg.Done()
			cancel()

			select {
			case <-newCtx.Done():
				t.Error("new context was cancelled")
			default:
			}
			return nil
		})

		wg.Wait()
	})
}
