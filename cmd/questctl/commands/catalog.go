package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benvon/questlog/internal/gamification"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the built-in achievement and title catalogs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "achievements",
		Short: "List achievements and their unlock criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := gamification.LoadCatalog()
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCRITERIA\tTARGET\tREWARD\tRARITY")
			for _, a := range catalog.Achievements {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					a.ID, a.Title, a.Criteria.Type, a.Criteria.Target, a.Reward, a.Rarity)
			}
			return tw.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "themes",
		Short: "List title themes and their level thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := gamification.LoadCatalog()
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, th := range catalog.Themes() {
				marker := ""
				if th.Name == catalog.DefaultTheme() {
					marker = " (default)"
				}
				fmt.Fprintf(out, "%s%s\n", th.Name, marker)
				for _, t := range th.Titles {
					fmt.Fprintf(out, "  level %-3d %s\n", t.Level, t.Title)
				}
			}
			return nil
		},
	})
	return cmd
}
