package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/upscprep/internal/recommend"
	"github.com/abhisek/upscprep/internal/ui/render"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.engine.AnalyticsSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, snap)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Stats(snap))
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest what to study next",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var entries []recommend.Entry
		if deliver, _ := cmd.Flags().GetBool("notify"); deliver {
			entries, err = a.engine.DeliverRecommendations(cmd.Context())
		} else {
			entries, err = a.engine.Recommendations(cmd.Context())
		}
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, entries)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Recommendations(entries, a.catalog))
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the snapshot as JSON")
	recommendCmd.Flags().Bool("json", false, "Print recommendations as JSON")
	recommendCmd.Flags().Bool("notify", false, "Also deliver recommendations to the notification log")
}
