package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abhisek/upscprep/internal/catalog"
	"github.com/abhisek/upscprep/internal/progress"
	"github.com/abhisek/upscprep/internal/ui/render"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse and validate the learning catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items with their status (optionally filtered by subject or tag)",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		tag, _ := cmd.Flags().GetString("tag")
		order, _ := cmd.Flags().GetString("order")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.catalog.Ordered(catalog.Order(order))
		if err != nil {
			return err
		}
		if subject != "" {
			if a.catalog.SubjectSize(subject) == 0 {
				return fmt.Errorf("no items found for subject %q (subjects: %v)", subject, a.catalog.Subjects())
			}
			items = slices.DeleteFunc(items, func(it catalog.Item) bool { return it.Subject != subject })
		}
		if tag != "" {
			items = catalog.WithTag(items, tag)
			if len(items) == 0 {
				return fmt.Errorf("no items found with tag %q", tag)
			}
		}

		records, err := a.engine.ProgressAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.ItemTable(items, progress.Index(records)))
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a catalog file (default: the configured or built-in catalog)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cat *catalog.Catalog
			err error
		)
		if len(args) == 1 {
			cat, err = catalog.Load(args[0])
		} else {
			cfg, cfgErr := loadConfig(cmd)
			if cfgErr != nil {
				return cfgErr
			}
			cat, err = resolveCatalog(cmd, cfg)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d items across %d subjects, %d with no prerequisites\n",
			cat.Len(), len(cat.Subjects()), len(cat.RootItems()))
		return nil
	},
}

func init() {
	catalogListCmd.Flags().String("subject", "", "Filter by subject (e.g. polity)")
	catalogListCmd.Flags().String("tag", "", "Filter by tag (e.g. prelims, gs2)")
	catalogListCmd.Flags().String("order", string(catalog.OrderCatalog), fmt.Sprintf("Listing order: %v", catalog.Orders()))

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
