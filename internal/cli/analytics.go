package cli

import (
	"fmt"

	"github.com/raphaelgruber/deptrack/internal/stats"
	"github.com/spf13/cobra"
)

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Summarize version drift, overdue and recent updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.svc.HealthOverview(cmd.Context())
			if err != nil {
				return fmt.Errorf("health overview: %w", err)
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			a.printHealth(cmd, summary)
			return nil
		},
	}
}

func (a *app) printHealth(cmd *cobra.Command, s stats.HealthSummary) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, a.theme.titleStyle().Render(fmt.Sprintf("Dependency health (%d tracked)", s.TotalCount)))

	sections := []struct {
		title string
		count int
		names []string
		warn  bool
	}{
		{"Version drift", s.VersionDriftCount, s.VersionDriftDependencies, true},
		{"Overdue updates", s.OverdueUpdatesCount, s.OverdueUpdatesDependencies, true},
		{"Test only", s.TestOnlyCount, s.TestOnlyDependencies, false},
		{"Updated in the last 30 days", s.RecentlyUpdatedCount, s.RecentlyUpdatedDependencies, false},
	}
	for _, sec := range sections {
		heading := fmt.Sprintf("\n%s: %d", sec.title, sec.count)
		if sec.warn && sec.count > 0 {
			heading = a.theme.warningStyle().Render(heading)
		}
		fmt.Fprintln(w, heading)
		fmt.Fprint(w, a.theme.nameList(sec.names))
	}
}

func (a *app) staleCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "List dependencies not updated within a number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.svc.StaleDependencies(cmd.Context(), &days)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), summary)
			}

			w := cmd.OutOrStdout()
			title := fmt.Sprintf("Stale dependencies (threshold %d days): %d", summary.DaysThreshold, summary.StaleCount)
			fmt.Fprintln(w, a.theme.titleStyle().Render(title))
			fmt.Fprint(w, a.theme.nameList(summary.StaleDependencies))
			if summary.OldestDependency != nil {
				fmt.Fprintf(w, "\nOldest: %s (%d days)\n",
					a.theme.errorStyle().Render(*summary.OldestDependency), summary.OldestDependencyDays)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", stats.DefaultStaleDays, "days without update before a dependency is stale")
	return cmd
}

func (a *app) updatedCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "updated",
		Short: "List dependencies updated in a date range",
		Long: `List dependencies whose test or production environment was updated
between --start and --end, both inclusive.

Example:
  deptrack updated --start 2025-01-01 --end 2025-01-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.svc.FindUpdatedBetween(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return a.printDependencies(cmd, fmt.Sprintf("Updated %s to %s", start, end), deps)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "range start (ISO-8601)")
	cmd.Flags().StringVar(&end, "end", "", "range end (ISO-8601)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (a *app) plannedCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "planned",
		Short: "List dependencies with an update planned in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.svc.FindPlannedUpdates(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return a.printDependencies(cmd, fmt.Sprintf("Planned %s to %s", start, end), deps)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "range start (ISO-8601)")
	cmd.Flags().StringVar(&end, "end", "", "range end (ISO-8601)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
