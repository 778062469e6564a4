package shellsession

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"

	"github.com/aishell/cli/cmd/aish/cli/logging"
)

// WatchResize propagates terminal geometry to the PTY. One synthetic resize
// fires immediately to establish the initial size; after that, every
// SIGWINCH copies the current geometry onto the PTY master so the child's
// line discipline and full-screen programs re-flow. Propagation failures
// are logged and ignored; they never abort the session.
//
// The returned stop function detaches the signal handler.
func (s *Session) WatchResize(ctx context.Context) func() {
	logCtx := logging.WithComponent(ctx, "resize")

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	go func() {
		for range ch {
			if err := pty.InheritSize(s.tty, s.ptmx); err != nil {
				logging.Warn(logCtx, "resize propagation failed", slog.Any("error", err))
			}
		}
	}()
	ch <- syscall.SIGWINCH

	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
