package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/aishell/cli/cmd/aish/cli/category"
	"github.com/aishell/cli/cmd/aish/cli/settings"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively configure aish",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup()
		},
	}
}

func runSetup() error {
	cfg, err := settings.Load()
	if err != nil {
		return err
	}

	enabled := cfg.TranslationEnabled()
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Shell").
				Description("Command to wrap; leave empty to use $SHELL").
				Value(&cfg.Shell),
			huh.NewInput().
				Title("Translation endpoint").
				Description("Base URL of the translation service; empty disables translation").
				Value(&cfg.Endpoint),
			huh.NewConfirm().
				Title("Enable translation").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Default category").
				Description("Used when running a command once without saving a category").
				Options(
					huh.NewOption(string(category.Simple), string(category.Simple)),
					huh.NewOption(string(category.SemiInteractive), string(category.SemiInteractive)),
					huh.NewOption(string(category.InteractiveTUI), string(category.InteractiveTUI)),
				).
				Value(&cfg.DefaultCategory),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("setup aborted: %w", err)
	}

	cfg.TranslateEnabled = &enabled
	if err := settings.Save(cfg); err != nil {
		return err
	}

	path, err := settings.Path()
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
