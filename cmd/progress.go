package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/upscprep/internal/ui/render"
)

var progressCmd = &cobra.Command{
	Use:   "progress <item-id>",
	Short: "Show progress for an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		it, err := a.catalog.Get(args[0])
		if err != nil {
			return fmt.Errorf("%q: %w", args[0], err)
		}
		r, err := a.engine.ProgressOf(cmd.Context(), it.ID)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, r.ToData())
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Progress(it, r, a.catalog.Dependents(it.ID), a.loc))
		return nil
	},
}

var accessCmd = &cobra.Command{
	Use:   "access <item-id>",
	Short: "Record that an item was opened",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		it, err := a.catalog.Get(args[0])
		if err != nil {
			return fmt.Errorf("%q: %w", args[0], err)
		}
		r, err := a.engine.RecordAccess(cmd.Context(), it.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: access #%d recorded\n", it.DisplayName(), r.Analytics.AccessCount)
		return nil
	},
}

func init() {
	progressCmd.Flags().Bool("json", false, "Print the record as JSON")
}
