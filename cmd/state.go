package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/upscprep/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export progress and session history as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		state, err := a.store.Export(cmd.Context())
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		if err := store.WriteState(w, state); err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d items and %d sessions to %s\n", len(state.Items), len(state.Sessions), out)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all progress and session history from an export file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		state, err := store.ReadState(f)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		for id := range state.Items {
			if !a.catalog.Has(id) {
				a.logger.Warn().Str("item_id", id).Msg("imported progress for item outside the catalog")
			}
		}
		if err := a.store.Import(cmd.Context(), state); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items and %d sessions\n", len(state.Items), len(state.Sessions))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "Write to file instead of stdout")
}
