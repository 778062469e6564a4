package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show stored command categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCategoryStore()
			if err != nil {
				return err
			}
			assignments := store.List()
			if len(assignments) == 0 {
				cmd.Println("no stored categories")
				return nil
			}
			for _, a := range assignments {
				cmd.Printf("%-20s %s\n", a.Signature, a.Category)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "forget <command>",
		Short: "Drop a stored category so the command is asked again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCategoryStore()
			if err != nil {
				return err
			}
			removed, err := store.Forget(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no category stored for %q", args[0])
			}
			cmd.Printf("forgot %q\n", args[0])
			return nil
		},
	})
	return cmd
}
