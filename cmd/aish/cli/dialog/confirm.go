// Package dialog implements the interactive confirmation and
// categorization state machines.
//
// Both machines are synchronous: they are fed one keystroke at a time from
// the terminal-input read loop and render their prompts to the raw-mode
// terminal (hence the explicit \r\n line endings). They never write to the
// PTY themselves; terminal outcomes are returned to the caller, which owns
// dispatch. While a machine is pending, the caller must route every
// keystroke to it, so no input typed during a dialog can leak into the
// next command line.
package dialog

import (
	"context"
	"fmt"
	"io"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ConfirmPhase identifies the confirmation machine's current step.
type ConfirmPhase string

const (
	// ConfirmAskMain is the initial step; explain is still available.
	ConfirmAskMain ConfirmPhase = "ask_main"
	// ConfirmAskMainExplained is AskMain after the one allowed explanation.
	ConfirmAskMainExplained ConfirmPhase = "ask_main_explained"
)

// ConfirmAction is the resolution of a confirmation dialog.
type ConfirmAction int

const (
	// ConfirmPending means the dialog is still waiting for input.
	ConfirmPending ConfirmAction = iota
	// ConfirmExecute runs Result.Command (candidate or original).
	ConfirmExecute
	// ConfirmModify loads the candidate into the line buffer for editing.
	ConfirmModify
	// ConfirmCancel discards the suggestion; nothing executes.
	ConfirmCancel
)

// ConfirmResult is returned from every keystroke handed to the machine.
// Done is false while the dialog is still open.
type ConfirmResult struct {
	Done    bool
	Action  ConfirmAction
	Command string
}

// Explainer produces a plain-language description of a command. It is the
// translation collaborator's explain operation, injected so the dialog
// stays testable.
type Explainer func(ctx context.Context, command string) (string, error)

// Confirm drives the accept/explain/modify/cancel dialog for a suggestion
// that differs from what the user typed.
type Confirm struct {
	candidate string
	original  string
	phase     ConfirmPhase
	out       io.Writer
	explain   Explainer
}

// NewConfirm creates the dialog and renders its opening prompt.
func NewConfirm(out io.Writer, candidate, original string, explain Explainer) *Confirm {
	c := &Confirm{
		candidate: candidate,
		original:  original,
		phase:     ConfirmAskMain,
		out:       out,
		explain:   explain,
	}
	fmt.Fprintf(out, "\r\naish suggestion:\r\n")
	fmt.Fprintf(out, "  you typed: %s\r\n", original)
	fmt.Fprintf(out, "  suggested: %s\r\n", renderDiff(original, candidate))
	c.prompt()
	return c
}

// Phase returns the current step, for logging.
func (c *Confirm) Phase() ConfirmPhase {
	return c.phase
}

func (c *Confirm) prompt() {
	if c.phase == ConfirmAskMain && c.explain != nil {
		fmt.Fprintf(c.out, "[y]es run it  [o] run original  [e]xplain  [m]odify  [n]o cancel: ")
		return
	}
	fmt.Fprintf(c.out, "[y]es run it  [o] run original  [m]odify  [n]o cancel: ")
}

// HandleKey advances the machine with one keystroke. Unrecognized input
// re-displays the prompt without a state change; it is never treated as a
// cancellation.
func (c *Confirm) HandleKey(ctx context.Context, key byte) ConfirmResult {
	switch key {
	case 'y', 'Y':
		fmt.Fprintf(c.out, "y\r\n")
		return ConfirmResult{Done: true, Action: ConfirmExecute, Command: c.candidate}

	case 'o', 'O':
		fmt.Fprintf(c.out, "o\r\n")
		return ConfirmResult{Done: true, Action: ConfirmExecute, Command: c.original}

	case 'm', 'M':
		fmt.Fprintf(c.out, "m\r\n")
		return ConfirmResult{Done: true, Action: ConfirmModify, Command: c.candidate}

	case 'n', 'N', 'c', 'C', ctrlC:
		fmt.Fprintf(c.out, "\r\n")
		return ConfirmResult{Done: true, Action: ConfirmCancel}

	case 'e', 'E':
		if c.phase != ConfirmAskMain || c.explain == nil {
			break // explanation already shown (or unavailable): invalid input
		}
		fmt.Fprintf(c.out, "e\r\n")
		c.phase = ConfirmAskMainExplained
		explanation, err := c.explain(ctx, c.candidate)
		if err != nil {
			fmt.Fprintf(c.out, "explanation unavailable: %v\r\n", err)
		} else {
			fmt.Fprintf(c.out, "%s\r\n", explanation)
		}
		c.prompt()
		return ConfirmResult{Action: ConfirmPending}
	}

	fmt.Fprintf(c.out, "\r\n")
	c.prompt()
	return ConfirmResult{Action: ConfirmPending}
}

// Cancel resolves the dialog as cancelled. Used when an interrupt arrives
// while the dialog is open so teardown never leaves it dangling.
func (c *Confirm) Cancel() ConfirmResult {
	fmt.Fprintf(c.out, "\r\n")
	return ConfirmResult{Done: true, Action: ConfirmCancel}
}

const ctrlC = 0x03

// renderDiff highlights how the candidate differs from the original using
// ANSI colors: deletions dim red, insertions green.
func renderDiff(original, candidate string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, candidate, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b []byte
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b = append(b, d.Text...)
		case diffmatchpatch.DiffInsert:
			b = append(b, "\x1b[32m"...)
			b = append(b, d.Text...)
			b = append(b, "\x1b[0m"...)
		case diffmatchpatch.DiffDelete:
			// Deleted text is noise in the suggested line; skip it.
		}
	}
	return string(b)
}
