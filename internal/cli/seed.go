package cli

import (
	"fmt"

	"github.com/raphaelgruber/deptrack/internal/service"
	"github.com/spf13/cobra"
)

func (a *app) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample dependencies into an empty store",
		Long: `Load sample dependencies into an empty store. A store that already
holds dependencies is left untouched.

The built-in samples are used unless --file names a YAML seed file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.SeedFile
			}
			var (
				entries []service.SeedEntry
				err     error
			)
			if file != "" {
				entries, err = service.LoadSeedFile(file)
			} else {
				entries, err = service.DefaultSeed()
			}
			if err != nil {
				return err
			}

			n, err := a.svc.Seed(cmd.Context(), entries)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]int{"created": n})
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.theme.hintStyle().Render("Store already has dependencies, nothing seeded."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d sample dependencies\n", a.theme.successStyle().Render("✓ Seeded"), n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file")
	return cmd
}
