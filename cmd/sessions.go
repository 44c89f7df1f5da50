package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/upscprep/internal/store"
	"github.com/abhisek/upscprep/internal/ui/render"
)

const dateLayout = "2006-01-02"

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List study sessions (optionally filtered by item or date range)",
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, _ := cmd.Flags().GetString("item")
		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := store.QueryOpts{ItemID: itemID, Limit: limit}
		if since != "" {
			if opts.From, err = time.ParseInLocation(dateLayout, since, a.loc); err != nil {
				return fmt.Errorf("--since: want YYYY-MM-DD: %w", err)
			}
		}
		if until != "" {
			day, err := time.ParseInLocation(dateLayout, until, a.loc)
			if err != nil {
				return fmt.Errorf("--until: want YYYY-MM-DD: %w", err)
			}
			// Inclusive of the whole day.
			opts.To = day.AddDate(0, 0, 1)
		}
		if !opts.From.IsZero() && !opts.To.IsZero() && !opts.From.Before(opts.To) {
			return fmt.Errorf("--since %s is after --until %s", since, until)
		}

		records, err := a.engine.Sessions(cmd.Context(), opts)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			rows := make([]store.SessionData, len(records))
			for i, r := range records {
				rows[i] = r.ToData()
			}
			return printJSON(cmd, rows)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.SessionLog(records, a.catalog, a.loc))
		return nil
	},
}

func init() {
	sessionsCmd.Flags().String("item", "", "Only sessions on this item ID")
	sessionsCmd.Flags().String("since", "", "Only sessions started on or after this date (YYYY-MM-DD)")
	sessionsCmd.Flags().String("until", "", "Only sessions started on or before this date (YYYY-MM-DD)")
	sessionsCmd.Flags().Int("limit", 0, "Show at most N sessions, oldest first (0 = all)")
	sessionsCmd.Flags().Bool("json", false, "Print sessions as JSON")
}
