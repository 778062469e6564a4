// Package intercept classifies submitted command lines and decides what
// reaches the wrapped shell.
//
// Dispatch is single-owner and ordered: directive syntax is checked before
// translation, so a directive name can never be claimed by both the router
// and the translation path. Translation failures always degrade to literal
// passthrough; user input is never dropped because a backend is down.
package intercept

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aishell/cli/cmd/aish/cli/logging"
	"github.com/aishell/cli/cmd/aish/cli/router"
)

// DirectivePrefix marks a line as an internal directive.
const DirectivePrefix = "/"

// Translator is the translation collaborator boundary. Suggest returns an
// empty string when the service has no suggestion.
type Translator interface {
	Suggest(ctx context.Context, input string) (string, error)
	Explain(ctx context.Context, command string) (string, error)
}

// DecisionKind tags a Decision.
type DecisionKind int

const (
	// Passthrough forwards the original line unchanged.
	Passthrough DecisionKind = iota
	// TranslateRequest submits the line for translation.
	TranslateRequest
	// Directive routes the line to an internal handler.
	Directive
)

// Decision describes what happens to one submitted line. Produced once per
// line, never persisted.
type Decision struct {
	Kind     DecisionKind
	Original string   // the submitted line (or literal payload for /cmd)
	Text     string   // translation input for TranslateRequest
	Name     string   // directive name
	Args     []string // directive arguments
}

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	// OutcomeForward writes Command followed by newline to the PTY.
	OutcomeForward OutcomeKind = iota
	// OutcomeConfirm opens the confirmation dialog for Command vs Original.
	OutcomeConfirm
	// OutcomeDirective streams directive output to the terminal.
	OutcomeDirective
	// OutcomeNotice prints Message to the terminal; nothing reaches the shell.
	OutcomeNotice
)

// Outcome is the interceptor's verdict for one submitted line.
type Outcome struct {
	Kind     OutcomeKind
	Command  string // candidate for OutcomeConfirm, line for OutcomeForward
	Original string
	Name     string
	Args     []string
	Message  string
	IsErr    bool
}

// Interceptor owns line classification and the translation call.
type Interceptor struct {
	translator Translator
	routes     router.Router
	enabled    bool
	timeout    time.Duration
}

// New creates an Interceptor. translator may be nil (translation disabled);
// routes may be nil (no directives beyond the built-in decision ones).
func New(translator Translator, routes router.Router, enabled bool, timeout time.Duration) *Interceptor {
	return &Interceptor{
		translator: translator,
		routes:     routes,
		enabled:    enabled,
		timeout:    timeout,
	}
}

// Classify maps a non-empty submitted line to a Decision. Ordered dispatch:
// directive syntax wins over translation.
func (ic *Interceptor) Classify(line string) Decision {
	if strings.HasPrefix(line, DirectivePrefix) {
		fields := strings.Fields(line)
		name := strings.TrimPrefix(fields[0], DirectivePrefix)
		args := fields[1:]

		switch name {
		case "cmd":
			// Literal escape hatch: /cmd <line> bypasses translation.
			return Decision{Kind: Passthrough, Original: strings.TrimSpace(strings.TrimPrefix(line, fields[0]))}
		case "ai":
			// Forced translation even when heuristics would pass through.
			return Decision{Kind: TranslateRequest, Original: line, Text: strings.TrimSpace(strings.TrimPrefix(line, fields[0]))}
		}
		// Path-like first tokens (/usr/bin/ls) are commands, not directives.
		if !strings.Contains(name, "/") {
			return Decision{Kind: Directive, Original: line, Name: name, Args: args}
		}
	}

	if ic.enabled && ic.translator != nil {
		return Decision{Kind: TranslateRequest, Original: line, Text: line}
	}
	return Decision{Kind: Passthrough, Original: line}
}

// Intercept classifies line and, for translation requests, performs the
// bounded translation call. It never blocks longer than the configured
// timeout on the collaborator.
func (ic *Interceptor) Intercept(ctx context.Context, line string) Outcome {
	d := ic.Classify(line)

	switch d.Kind {
	case Passthrough:
		if d.Original == "" {
			// Only reachable via /cmd with no payload.
			return Outcome{Kind: OutcomeNotice, Message: "usage: /cmd <command>", IsErr: true}
		}
		return Outcome{Kind: OutcomeForward, Command: d.Original, Original: d.Original}

	case Directive:
		if ic.routes != nil && ic.routes.Known(d.Name) {
			return Outcome{Kind: OutcomeDirective, Name: d.Name, Args: d.Args, Original: d.Original}
		}
		return Outcome{Kind: OutcomeNotice, Message: "unknown directive: /" + d.Name, IsErr: true}

	case TranslateRequest:
		return ic.translate(ctx, d)
	}

	// Unreachable; forward rather than drop.
	return Outcome{Kind: OutcomeForward, Command: line, Original: line}
}

func (ic *Interceptor) translate(ctx context.Context, d Decision) Outcome {
	forced := d.Text != d.Original // set by /ai

	if forced && strings.TrimSpace(d.Text) == "" {
		return Outcome{Kind: OutcomeNotice, Message: "usage: /ai <text>", IsErr: true}
	}
	if ic.translator == nil {
		if forced {
			return Outcome{Kind: OutcomeNotice, Message: "translation is not configured", IsErr: true}
		}
		return Outcome{Kind: OutcomeForward, Command: d.Original, Original: d.Original}
	}

	logCtx := logging.WithComponent(ctx, "intercept")
	callCtx := ctx
	if ic.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, ic.timeout)
		defer cancel()
	}

	start := time.Now()
	suggestion, err := ic.translator.Suggest(callCtx, d.Text)
	if err != nil {
		// Collaborator failure: fail open to literal execution.
		logging.Warn(logCtx, "translation unavailable, passing through",
			slog.Any("error", err),
		)
		if forced {
			return Outcome{Kind: OutcomeNotice, Message: "translation unavailable: " + err.Error(), IsErr: true}
		}
		return Outcome{Kind: OutcomeForward, Command: d.Original, Original: d.Original}
	}
	logging.LogDuration(logCtx, slog.LevelDebug, "translation call completed", start,
		slog.Bool("suggested", suggestion != ""),
	)

	suggestion = strings.TrimSpace(suggestion)
	trimmed := strings.TrimSpace(d.Text)

	switch {
	case suggestion == "" && forced:
		return Outcome{Kind: OutcomeNotice, Message: "no suggestion"}
	case suggestion == "" || suggestion == trimmed:
		return Outcome{Kind: OutcomeForward, Command: trimmed, Original: d.Original}
	default:
		return Outcome{Kind: OutcomeConfirm, Command: suggestion, Original: trimmed}
	}
}
