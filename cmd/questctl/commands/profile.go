package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd(open StoreOpener) *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show level, experience and streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := loadManager(cmd.Context(), open)
			if err != nil {
				return err
			}
			defer release()

			view, err := m.ProfileView(theme)
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Level:      %d (%s)\n", view.Level, view.Title)
			fmt.Fprintf(out, "Experience: %d (next level at %d, %d%%)\n",
				view.TotalExperience, view.NextLevelThreshold, view.LevelProgressPercent)
			fmt.Fprintf(out, "Points:     %d\n", view.TotalPoints)
			fmt.Fprintf(out, "Completed:  %d\n", view.TasksCompleted)
			fmt.Fprintf(out, "Streak:     %d days (longest %d)\n", view.CurrentStreakDays, view.LongestStreakDays)
			fmt.Fprintf(out, "Unlocked:   %d achievements\n", len(view.UnlockedAchievements))
			return nil
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "title theme (defaults to the stored preference)")
	return cmd
}

func newMissionsCmd(open StoreOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "missions",
		Short: "Show today's missions, generating them if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := loadManager(cmd.Context(), open)
			if err != nil {
				return err
			}
			defer release()

			set, err := m.TodayMissions(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load daily missions: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Missions for %s (bonus %d)\n", set.Date, set.Bonus)
			if len(set.Missions) == 0 {
				fmt.Fprintln(out, "  no eligible tasks")
			}
			for _, ms := range set.Missions {
				check := " "
				if ms.Completed {
					check = "x"
				}
				fmt.Fprintf(out, "  [%s] %s (%d pts)\n", check, ms.Title, ms.Points)
			}
			return nil
		},
	}
}
