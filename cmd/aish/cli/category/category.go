// Package category maps command signatures to execution categories.
//
// The signature is the command verb: the first word of the command line,
// extracted with a real shell-word parser so quoting and redirections do
// not leak into it. A signature is asked for categorization at most once;
// stored assignments decide how future invocations dispatch.
package category

import (
	"fmt"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Kind is an execution category.
type Kind string

const (
	// Simple commands run inline on the wrapped shell.
	Simple Kind = "simple"
	// SemiInteractive commands run in an isolated session; output is
	// collected after completion.
	SemiInteractive Kind = "semi_interactive"
	// InteractiveTUI commands run in an isolated session with full
	// interactive control.
	InteractiveTUI Kind = "interactive_tui"
)

// Valid reports whether k is a known category.
func (k Kind) Valid() bool {
	switch k {
	case Simple, SemiInteractive, InteractiveTUI:
		return true
	}
	return false
}

// Parse converts a settings string to a Kind.
func Parse(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown category %q (want %s, %s or %s)",
			s, Simple, SemiInteractive, InteractiveTUI)
	}
	return k, nil
}

// Store is the persistence collaborator boundary. The core proposes and
// consumes entries; the backing format belongs to the implementation.
type Store interface {
	// Lookup returns the stored category for a signature.
	Lookup(signature string) (Kind, bool)

	// Store records an assignment for a signature.
	Store(signature string, k Kind) error
}

// Signature extracts the normalized command signature from a command line:
// the basename of the first shell word of the first call. Lines the parser
// rejects fall back to the first whitespace-separated field.
func Signature(command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}

	parser := syntax.NewParser()
	f, err := parser.Parse(strings.NewReader(command), "")
	if err == nil {
		var sig string
		syntax.Walk(f, func(node syntax.Node) bool {
			if sig != "" {
				return false
			}
			ce, ok := node.(*syntax.CallExpr)
			if !ok || len(ce.Args) == 0 {
				return true
			}
			if lit := ce.Args[0].Lit(); lit != "" {
				sig = lit
			}
			return false
		})
		if sig != "" {
			return filepath.Base(sig)
		}
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return filepath.Base(fields[0])
}
