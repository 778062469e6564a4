// Package shellsession owns the wrapped shell: the PTY pair, the child
// process, and the controlling terminal's mode.
//
// The single invariant the whole wrapper protects lives here: every code
// path that enters raw mode restores the saved terminal mode exactly once
// on every exit, including error paths. Restore failure is fatal to the
// process because it leaves the user's terminal unusable.
package shellsession

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"golang.org/x/term"
)

// ErrNoShell is returned when no usable shell can be resolved. Raised
// before any terminal-mode change, so nothing needs restoring.
var ErrNoShell = errors.New("no usable shell found")

// fallbackShells are tried, in order, when $SHELL is unset.
var fallbackShells = []string{"bash", "zsh", "sh"}

// Session is the single live instance of a wrapped shell.
type Session struct {
	// ID correlates log records from this wrapper run.
	ID string

	cmd      *exec.Cmd
	ptmx     *os.File
	tty      *os.File
	oldState *term.State

	restoreOnce sync.Once
	restoreErr  error
}

// ResolveShell picks the shell to wrap: the override if given, else $SHELL,
// else the first of bash/zsh/sh found on PATH.
func ResolveShell(override string) (string, error) {
	if override != "" {
		path, err := exec.LookPath(override)
		if err != nil {
			return "", fmt.Errorf("%w: %q not found", ErrNoShell, override)
		}
		return path, nil
	}
	if env := os.Getenv("SHELL"); env != "" {
		if path, err := exec.LookPath(env); err == nil {
			return path, nil
		}
	}
	for _, name := range fallbackShells {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrNoShell
}

// Start allocates a PTY, execs the shell with the PTY slave as its
// controlling terminal, and switches the invoking terminal to raw mode.
// On any error the terminal is left exactly as it was.
func Start(shellPath string) (*Session, error) {
	cmd := exec.Command(shellPath) //nolint:gosec // resolved via ResolveShell
	cmd.Env = append(os.Environ(), "AISH_SESSION=1")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("allocate pty: %w", err)
	}

	tty := os.Stdin
	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		_ = ptmx.Close()
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
		return nil, fmt.Errorf("set raw mode (is stdin a terminal?): %w", err)
	}

	return &Session{
		ID:       uuid.NewString(),
		cmd:      cmd,
		ptmx:     ptmx,
		tty:      tty,
		oldState: oldState,
	}, nil
}

// PTY returns the master side of the PTY pair.
func (s *Session) PTY() *os.File {
	return s.ptmx
}

// Restore puts the controlling terminal back into its saved mode. Idempotent;
// subsequent calls return the first outcome. A non-nil error here is
// Fatal-runtime: the caller must abort the process.
func (s *Session) Restore() error {
	s.restoreOnce.Do(func() {
		if err := term.Restore(int(s.tty.Fd()), s.oldState); err != nil {
			s.restoreErr = fmt.Errorf("restore terminal mode: %w", err)
		}
	})
	return s.restoreErr
}

// Shutdown restores the terminal mode, closes the PTY, and reaps the child.
// It returns the child's exit code where obtainable and the restore error,
// if any. Safe to call on every exit path.
func (s *Session) Shutdown() (int, error) {
	restoreErr := s.Restore()
	_ = s.ptmx.Close()
	code := exitCode(s.cmd.Wait())
	return code, restoreErr
}

// exitCode maps a Wait error to a process exit code. A child that exited
// normally mirrors its status; anything unobtainable becomes 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if c := exitErr.ExitCode(); c >= 0 {
			return c
		}
	}
	return 1
}
