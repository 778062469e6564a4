// Package mux is the scheduling core of the wrapper: it assembles terminal
// input into command lines, streams PTY output through untouched, and owns
// which component currently consumes keystrokes.
//
// Exactly one flow owns line submission at any time: ordinary assembly, an
// open confirmation dialog, or an open categorization dialog. The engine
// enforces that invariant, which also guarantees a single logical PTY
// writer per submitted line.
package mux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aishell/cli/cmd/aish/cli/category"
	"github.com/aishell/cli/cmd/aish/cli/dialog"
	"github.com/aishell/cli/cmd/aish/cli/intercept"
	"github.com/aishell/cli/cmd/aish/cli/lineedit"
	"github.com/aishell/cli/cmd/aish/cli/logging"
	"github.com/aishell/cli/cmd/aish/cli/router"
)

// ErrDialogActive is returned when a second dialog would be started while
// one is open. This is a programming-contract violation, never queued.
var ErrDialogActive = errors.New("a dialog is already active")

// Dispatcher is the isolated-session collaborator boundary: it executes
// semi_interactive and interactive_tui commands outside the wrapped shell.
type Dispatcher interface {
	RunIsolated(ctx context.Context, command string, kind category.Kind) error
}

// Config wires the engine's collaborators.
type Config struct {
	// Terminal receives echo, dialog prompts, and directive output.
	Terminal io.Writer

	// PTY receives completed command lines and forwarded control bytes.
	PTY io.Writer

	// Interceptor classifies submitted lines.
	Interceptor *intercept.Interceptor

	// Categories is the persistence collaborator for category assignments.
	Categories category.Store

	// DefaultCategory is used for run-once dispatch.
	DefaultCategory category.Kind

	// Dispatcher runs isolated-session commands. Nil degrades to inline
	// PTY execution with a logged warning.
	Dispatcher Dispatcher

	// Routes streams directive output. May be nil.
	Routes router.Router

	// Explainer backs the confirmation dialog's explain option. May be nil.
	Explainer dialog.Explainer
}

// escState tracks progress through a multi-byte escape sequence: escIntro
// after a bare ESC, escCSI inside "ESC [" until a final byte in 0x40-0x7e,
// escSS3 after "ESC O" where exactly one byte follows.
type escState int

const (
	escNone escState = iota
	escIntro
	escCSI
	escSS3
)

// Engine interprets terminal input one byte at a time.
type Engine struct {
	cfg Config

	mu         sync.Mutex
	buf        lineedit.Buffer
	esc        escState
	confirm    *dialog.Confirm
	categorize *dialog.Categorize

	// original raw input for the command currently moving through the
	// confirmation/categorization flow
	pendingOriginal string
}

// NewEngine creates an Engine. Config.Terminal, Config.PTY, and
// Config.Interceptor are required.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// DialogActive reports whether a confirmation or categorization dialog
// currently owns the input stream.
func (e *Engine) DialogActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirm != nil || e.categorize != nil
}

// Interrupt resolves the active dialog as cancelled, if one is open.
// Reports whether an interrupt was consumed; false means the caller owns
// the session-exit path.
func (e *Engine) Interrupt() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.confirm != nil:
		res := e.confirm.Cancel()
		e.confirm = nil
		e.finishConfirmLocked(context.Background(), res)
		return true
	case e.categorize != nil:
		res := e.categorize.Cancel()
		e.categorize = nil
		e.finishCategorizeLocked(context.Background(), res)
		return true
	}
	return false
}

// HandleKey consumes one byte of terminal input.
func (e *Engine) HandleKey(ctx context.Context, key byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// An open dialog owns every keystroke until it resolves; nothing typed
	// here can leak into the next ordinary command line.
	if e.confirm != nil {
		res := e.confirm.HandleKey(ctx, key)
		if res.Done {
			e.confirm = nil
			return e.finishConfirmLocked(ctx, res)
		}
		return nil
	}
	if e.categorize != nil {
		res := e.categorize.HandleKey(key)
		if res.Done {
			e.categorize = nil
			return e.finishCategorizeLocked(ctx, res)
		}
		return nil
	}

	return e.handleLineKeyLocked(ctx, key)
}

func (e *Engine) handleLineKeyLocked(ctx context.Context, key byte) error {
	// Arrow keys and friends arrive as multi-byte escape sequences; consume
	// them whole so their printable tail never lands in the line buffer.
	switch e.esc {
	case escIntro:
		switch key {
		case '[':
			e.esc = escCSI
		case 'O':
			e.esc = escSS3
		default:
			e.esc = escNone
		}
		return nil
	case escCSI:
		if key >= 0x40 && key <= 0x7e {
			e.esc = escNone
		}
		return nil
	case escSS3:
		e.esc = escNone
		return nil
	}

	switch {
	case key == 0x1b: // ESC
		e.esc = escIntro
		return nil

	case key == '\r' || key == '\n':
		fmt.Fprintf(e.cfg.Terminal, "\r\n")
		line := strings.TrimSpace(e.buf.Take())
		return e.submitLocked(ctx, line)

	case key == 0x7f || key == 0x08: // backspace / delete
		if e.buf.Backspace() {
			fmt.Fprintf(e.cfg.Terminal, "\b \b")
		}
		return nil

	case key == 0x03: // Ctrl-C: hand to the child, drop the local line
		e.buf.Take()
		fmt.Fprintf(e.cfg.Terminal, "^C\r\n")
		_, err := e.cfg.PTY.Write([]byte{0x03})
		return err

	case key == 0x04 && e.buf.Len() == 0: // Ctrl-D on empty line: shell EOF
		_, err := e.cfg.PTY.Write([]byte{0x04})
		return err

	case key >= 0x20 && key != 0x7f: // printable
		e.buf.Append(key)
		_, err := e.cfg.Terminal.Write([]byte{key})
		return err
	}

	// Remaining control bytes are dropped: the line is assembled locally,
	// so forwarding them would desynchronize the child's input state.
	return nil
}

// submitLocked routes a completed, trimmed line.
func (e *Engine) submitLocked(ctx context.Context, line string) error {
	if line == "" {
		// Bare newline re-displays the child's prompt; no interception.
		_, err := e.cfg.PTY.Write([]byte("\n"))
		return err
	}

	out := e.cfg.Interceptor.Intercept(ctx, line)
	switch out.Kind {
	case intercept.OutcomeForward:
		return e.dispatchCommandLocked(ctx, out.Command, out.Original)

	case intercept.OutcomeConfirm:
		return e.startConfirmLocked(out.Command, out.Original)

	case intercept.OutcomeDirective:
		return e.runDirectiveLocked(ctx, out.Name, out.Args)

	case intercept.OutcomeNotice:
		// Like directives, notices never reach the child shell.
		e.notice(out.Message, out.IsErr)
		return nil
	}
	return nil
}

func (e *Engine) notice(msg string, isErr bool) {
	if isErr {
		fmt.Fprintf(e.cfg.Terminal, "aish: %s\r\n", msg)
		return
	}
	fmt.Fprintf(e.cfg.Terminal, "%s\r\n", msg)
}

func (e *Engine) startConfirmLocked(candidate, original string) error {
	if e.confirm != nil || e.categorize != nil {
		return ErrDialogActive
	}
	e.pendingOriginal = original
	e.confirm = dialog.NewConfirm(e.cfg.Terminal, candidate, original, e.cfg.Explainer)
	return nil
}

func (e *Engine) startCategorizeLocked(executed, original string) error {
	if e.confirm != nil || e.categorize != nil {
		return ErrDialogActive
	}
	e.pendingOriginal = original
	e.categorize = dialog.NewCategorize(e.cfg.Terminal, executed, original, e.cfg.DefaultCategory)
	return nil
}

func (e *Engine) finishConfirmLocked(ctx context.Context, res dialog.ConfirmResult) error {
	logging.Debug(logging.WithComponent(ctx, "mux"), "confirmation resolved",
		slog.Int("action", int(res.Action)),
	)

	switch res.Action {
	case dialog.ConfirmExecute:
		return e.dispatchCommandLocked(ctx, res.Command, e.pendingOriginal)

	case dialog.ConfirmModify:
		// Load the candidate for editing; it resubmits through the
		// ordinary path, so it may be re-categorized.
		e.buf.Load(res.Command)
		fmt.Fprintf(e.cfg.Terminal, "%s", res.Command)
		return nil

	case dialog.ConfirmCancel:
		// Nothing executes; a bare newline refreshes the prompt.
		_, err := e.cfg.PTY.Write([]byte("\n"))
		return err
	}
	return nil
}

func (e *Engine) finishCategorizeLocked(ctx context.Context, res dialog.CategorizeResult) error {
	logCtx := logging.WithComponent(ctx, "mux")

	switch res.Action {
	case dialog.CategorizePersist:
		sig := category.Signature(res.Command)
		if err := e.cfg.Categories.Store(sig, res.Category); err != nil {
			// Persistence trouble must not block the command itself.
			logging.Error(logCtx, "failed to store category assignment",
				slog.String("signature", sig),
				slog.Any("error", err),
			)
			e.notice("could not save category: "+err.Error(), true)
		}
		return e.executeLocked(ctx, res.Command, res.Category)

	case dialog.CategorizeRunOnce:
		return e.executeLocked(ctx, res.Command, res.Category)

	case dialog.CategorizeCancel:
		_, err := e.cfg.PTY.Write([]byte("\n"))
		return err
	}
	return nil
}

// dispatchCommandLocked executes command under its stored category, or
// opens the categorization dialog for an unseen signature.
func (e *Engine) dispatchCommandLocked(ctx context.Context, command, original string) error {
	sig := category.Signature(command)
	if e.cfg.Categories == nil {
		return e.executeLocked(ctx, command, category.Simple)
	}
	if kind, ok := e.cfg.Categories.Lookup(sig); ok {
		return e.executeLocked(ctx, command, kind)
	}
	return e.startCategorizeLocked(command, original)
}

// executeLocked performs the final dispatch for an approved command.
func (e *Engine) executeLocked(ctx context.Context, command string, kind category.Kind) error {
	logCtx := logging.WithComponent(ctx, "mux")

	if kind != category.Simple {
		if e.cfg.Dispatcher != nil {
			if err := e.cfg.Dispatcher.RunIsolated(ctx, command, kind); err != nil {
				logging.Error(logCtx, "isolated dispatch failed",
					slog.String("category", string(kind)),
					slog.Any("error", err),
				)
				e.notice("isolated run failed: "+err.Error(), true)
				_, werr := e.cfg.PTY.Write([]byte("\n"))
				return werr
			}
			// The isolated run replaces inline execution; refresh the prompt.
			_, err := e.cfg.PTY.Write([]byte("\n"))
			return err
		}
		logging.Warn(logCtx, "no isolated dispatcher configured, running inline",
			slog.String("category", string(kind)),
		)
		e.notice("no isolated runner configured; running "+string(kind)+" command inline", false)
	}

	logging.Info(logCtx, "command dispatched",
		slog.String("signature", category.Signature(command)),
		slog.String("category", string(kind)),
	)
	_, err := e.cfg.PTY.Write([]byte(command + "\n"))
	return err
}

// runDirectiveLocked streams directive output to the terminal. It blocks
// the input path until the directive completes, like an open dialog, and
// sends nothing to the child shell for the line.
func (e *Engine) runDirectiveLocked(ctx context.Context, name string, args []string) error {
	if e.cfg.Routes == nil {
		e.notice("unknown directive: /"+name, true)
		return nil
	}

	lines, err := e.cfg.Routes.Dispatch(ctx, name, args)
	if err != nil {
		e.notice(err.Error(), true)
		return nil
	}
	for l := range lines {
		e.notice(l.Text, l.IsErr)
	}
	return nil
}
