package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/upscprep/internal/screens/study"
)

var studyCmd = &cobra.Command{
	Use:   "study <item-id>",
	Short: "Run an interactive timed study session on an item",
	Long: "study starts a session on the item (or resumes one already open on it),\n" +
		"shows a running timer, then asks for progress and an optional score and\n" +
		"ends the session. Press q to leave the session running and end it later.",
	Args: cobra.ExactArgs(1),
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

		p := tea.NewProgram(study.New(cmd.Context(), a.engine, it, a.loc))
		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("run study session: %w", err)
		}

		m, ok := final.(study.Model)
		if !ok {
			return nil
		}
		if err := m.Err(); err != nil {
			return sessionError(err)
		}
		if m.Detached() {
			fmt.Fprintln(cmd.OutOrStdout(), "Session left running. Resume with 'upscprep study "+it.ID+"' or close it with 'upscprep end'.")
		}
		return nil
	},
}
