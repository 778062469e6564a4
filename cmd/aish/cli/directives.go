package cli

import (
	"context"
	"fmt"

	"github.com/aishell/cli/cmd/aish/cli/category"
	"github.com/aishell/cli/cmd/aish/cli/router"
)

// registerDirectives installs the built-in /-directives. The decision
// directives /ai and /cmd are resolved inside the interceptor and never
// reach the router.
func registerDirectives(r *router.LocalRouter, store *category.FileStore) {
	r.Register("help", "list available directives",
		func(_ context.Context, _ []string, emit func(router.Line)) error {
			emit(router.Line{Text: "directives:"})
			emit(router.Line{Text: "  /ai <text>        translate text to a command"})
			emit(router.Line{Text: "  /cmd <line>       run a line literally, no translation"})
			for _, name := range r.Names() {
				emit(router.Line{Text: fmt.Sprintf("  /%-17s %s", name, r.Help(name))})
			}
			return nil
		})

	r.Register("list", "show stored command categories",
		func(_ context.Context, _ []string, emit func(router.Line)) error {
			assignments := store.List()
			if len(assignments) == 0 {
				emit(router.Line{Text: "no stored categories"})
				return nil
			}
			for _, a := range assignments {
				emit(router.Line{Text: fmt.Sprintf("%-20s %s", a.Signature, a.Category)})
			}
			return nil
		})

	r.Register("forget", "drop a stored category: /forget <command>",
		func(_ context.Context, args []string, emit func(router.Line)) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: /forget <command>")
			}
			removed, err := store.Forget(args[0])
			if err != nil {
				return err
			}
			if !removed {
				emit(router.Line{Text: fmt.Sprintf("no category stored for %q", args[0])})
				return nil
			}
			emit(router.Line{Text: fmt.Sprintf("forgot %q; it will be asked again next run", args[0])})
			return nil
		})
}
