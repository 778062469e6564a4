package mux

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aishell/cli/cmd/aish/cli/logging"
)

// Run drives the two read loops until either side of the session ends:
// the PTY master reaching end-of-stream (child exited) or terminal input
// closing. PTY output is copied to the terminal verbatim and immediately;
// terminal input is consumed one byte at a time so backspace echo and
// dialog keys stay responsive.
func Run(ctx context.Context, input io.Reader, output io.Writer, ptyOut io.Reader, eng *Engine) error {
	logCtx := logging.WithComponent(ctx, "mux")
	done := make(chan error, 2)

	go func() {
		// A read error here (EIO on Linux once the child exits) means the
		// session is over, not a fault.
		if _, err := io.Copy(output, ptyOut); err != nil {
			logging.Debug(logCtx, "pty output stream closed", slog.Any("error", err))
		}
		done <- nil
	}()

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := input.Read(buf)
			if n > 0 {
				if herr := eng.HandleKey(ctx, buf[0]); herr != nil {
					done <- herr
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					logging.Debug(logCtx, "terminal input closed", slog.Any("error", err))
				}
				done <- nil
				return
			}
		}
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
