package cli

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/service"
	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.svc.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list dependencies: %w", err)
			}
			return a.printDependencies(cmd, "Dependencies", deps)
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	var byName bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one dependency by id or name",
		Long: `Show one dependency.

Examples:
  deptrack get 3f2b1c9e-6d1a-4a8e-9a57-8d0f0c1e2b3a
  deptrack get --name spring-boot-starter-web`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				dep *models.Dependency
				err error
			)
			if byName {
				dep, err = a.svc.GetByName(cmd.Context(), args[0])
			} else {
				dep, err = a.svc.GetByID(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), dep)
			}
			a.theme.printDependency(cmd.OutOrStdout(), *dep)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&byName, "name", "n", false, "look up by exact name instead of id")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find dependencies whose name contains query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.svc.Search(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("search dependencies: %w", err)
			}
			return a.printDependencies(cmd, fmt.Sprintf("Matches for %q", args[0]), deps)
		},
	}
}

func (a *app) existsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Check whether a dependency name is taken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, err := a.svc.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"name": args[0], "exists": exists})
			}
			if exists {
				fmt.Fprintln(cmd.OutOrStdout(), a.theme.successStyle().Render("✓ "+args[0]+" exists"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), a.theme.hintStyle().Render(args[0]+" is not tracked"))
			}
			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var (
		req                         service.CreateRequest
		prod, source, changelog, hp string
	)
	cmd := &cobra.Command{
		Use:   "add <name> <test-version>",
		Short: "Track a new dependency",
		Long: `Track a new dependency. Timestamps are ISO-8601, e.g. 2025-01-15 or
2025-01-15T10:30:00Z; naive values are taken as UTC.

Examples:
  deptrack add jackson-databind 2.16.1 --prod 2.15.3
  deptrack add junit-jupiter 5.10.2 --test-updated 2025-02-01`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			req.TestVersion = args[1]
			req.ProdVersion = flagValue(cmd, "prod", prod)
			req.SourceURL = flagValue(cmd, "source-url", source)
			req.ChangelogURL = flagValue(cmd, "changelog-url", changelog)
			req.HomepageURL = flagValue(cmd, "homepage-url", hp)

			dep, err := a.svc.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), dep)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n",
				a.theme.successStyle().Render("✓ Created"), dep.Name, dep.ID)
			if a.verbose {
				a.theme.printDependency(cmd.OutOrStdout(), *dep)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prod, "prod", "", "version running in production")
	cmd.Flags().StringVar(&source, "source-url", "", "source repository URL")
	cmd.Flags().StringVar(&changelog, "changelog-url", "", "changelog URL")
	cmd.Flags().StringVar(&hp, "homepage-url", "", "homepage URL")
	cmd.Flags().StringVar(&req.TestLastUpdated, "test-updated", "", "when test was last updated")
	cmd.Flags().StringVar(&req.ProductionLastUpdated, "prod-updated", "", "when production was last updated")
	cmd.Flags().StringVar(&req.TestNextUpdate, "test-next", "", "next planned test update")
	cmd.Flags().StringVar(&req.ProductionNextUpdate, "prod-next", "", "next planned production update")
	return cmd
}

// flagValue returns nil for flags the user did not set or left blank.
func flagValue(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) || strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func (a *app) printDependencies(cmd *cobra.Command, title string, deps []models.Dependency) error {
	w := cmd.OutOrStdout()
	if a.jsonOutput {
		return printJSON(w, deps)
	}
	if len(deps) == 0 {
		fmt.Fprintln(w, a.theme.hintStyle().Render("No dependencies found."))
		return nil
	}
	fmt.Fprintln(w, a.theme.titleStyle().Render(fmt.Sprintf("%s (%d):", title, len(deps))))
	fmt.Fprintln(w, a.theme.dependencyTable(deps))
	return nil
}
