// Package cli implements the aish command tree.
package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/aishell/cli/cmd/aish/cli/versioninfo"
)

// Execute runs the root command and returns the process exit code. When
// the wrapper ran a shell, the code mirrors the child shell's exit status.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aish: %v\n", err)
		return 1
	}
	return wrapExitCode
}

// wrapExitCode is set by the wrap run so Execute can mirror the child
// shell's exit status through cobra's error-free return path.
var wrapExitCode int

// NewRootCmd builds the aish command tree.
func NewRootCmd() *cobra.Command {
	opts := &wrapOptions{}

	root := &cobra.Command{
		Use:   "aish",
		Short: "Wrap your shell with natural-language command translation",
		Long: `aish runs your login shell inside a pseudo-terminal and watches what you
type. Plain commands pass straight through. Lines that look like natural
language are sent to a translation service; when the suggestion differs
from what you typed, aish asks before anything executes.`,
		Version:       versioninfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, err := runWrap(cmd.Context(), opts)
			wrapExitCode = code
			return err
		},
	}

	root.Flags().StringVar(&opts.shell, "shell", "", "shell to wrap (default: $SHELL)")
	root.Flags().StringVar(&opts.endpoint, "endpoint", "", "translation service base URL")
	root.Flags().BoolVar(&opts.noTranslate, "no-translate", false, "disable natural-language translation")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.SetVersionTemplate(versionString())

	root.AddCommand(newVersionCmd())
	root.AddCommand(newSetupCmd())
	root.AddCommand(newCategoriesCmd())
	return root
}

func versionString() string {
	return fmt.Sprintf("aish %s (%s) %s %s/%s\n",
		versioninfo.Version, versioninfo.Commit,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(versionString())
		},
	}
}
