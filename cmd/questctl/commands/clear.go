package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benvon/questlog/internal/storage"
)

func newClearCmd(open StoreOpener) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clear <collection>",
		Short: "Delete every record in a collection",
		Long:  "Delete every record in one of: tasks, categories, profile, daily_missions, preferences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := storage.ParseCollection(args[0])
			if err != nil {
				return err
			}
			if !force {
				return errors.New("refusing to clear without --force")
			}
			store, _, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := store.Clear(cmd.Context(), collection); err != nil {
				return fmt.Errorf("failed to clear %s: %w", collection, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", collection)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm the deletion")
	return cmd
}
