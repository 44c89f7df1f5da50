package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/upscprep/internal/session"
	"github.com/abhisek/upscprep/internal/ui/render"
)

var startCmd = &cobra.Command{
	Use:   "start <item-id>",
	Short: "Start a study session on an item",
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

		rec, err := a.engine.StartSession(cmd.Context(), it.ID)
		if err != nil {
			return sessionError(err)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Session(rec, it.DisplayName(), 0, a.loc))
		return nil
	},
}

var endCmd = &cobra.Command{
	Use:   "end",
	Short: "End the active study session",
	RunE: func(cmd *cobra.Command, args []string) error {
		pct, _ := cmd.Flags().GetFloat64("progress")
		notes, _ := cmd.Flags().GetString("notes")

		var score *float64
		if cmd.Flags().Changed("score") {
			s, _ := cmd.Flags().GetFloat64("score")
			score = &s
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.engine.EndSession(cmd.Context(), pct, score, notes)
		if err != nil {
			return sessionError(err)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Session(rec, a.title(rec.ItemID), 0, a.loc))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		rec := a.engine.ActiveSession()
		if rec == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No active session.")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Session(*rec, a.title(rec.ItemID), a.engine.Elapsed(), a.loc))
		return nil
	},
}

func init() {
	endCmd.Flags().Float64("progress", 0, "Completion percent reached in this session (0-100)")
	endCmd.Flags().Float64("score", 0, "Score for this session (0-100), if assessed")
	endCmd.Flags().String("notes", "", "Free-form session notes")
	_ = endCmd.MarkFlagRequired("progress")
}

// sessionError adds a hint to state errors.
func sessionError(err error) error {
	var ise *session.InvalidStateError
	if errors.As(err, &ise) {
		switch ise.State {
		case session.StateActive:
			return fmt.Errorf("%w; run 'upscprep status' to see it or 'upscprep end' to close it", err)
		case session.StateIdle:
			return fmt.Errorf("%w; run 'upscprep start <item-id>' first", err)
		}
	}
	return err
}

// title returns the item's display name, or the ID for items outside the
// catalog.
func (a *app) title(id string) string {
	if it, err := a.catalog.Get(id); err == nil {
		return it.DisplayName()
	}
	return id
}
