package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/murphy/pkg/cli/internal/output"
	"github.com/getmockd/murphy/pkg/config"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in scenario profiles",
	Long: `List the built-in scenario profiles.

A profile is a ready-made scenario usable anywhere a scenario file is, via
--profile NAME. 'murphy profiles show NAME' prints it as a scenario document
that can be saved and edited.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := config.ListProfiles()
		return printResult(cmd, profiles, func(w io.Writer) {
			tw := output.Table(w)
			fmt.Fprintln(tw, "NAME\tDESCRIPTION")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Description)
			}
			_ = tw.Flush()
		})
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a profile as a scenario document",
	Args:  cobra.ExactArgs(1),
	ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.ProfileNames(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := config.GetProfile(args[0])
		if !ok {
			return fmt.Errorf("%w: %s (available: %s)", config.ErrUnknownProfile, args[0],
				strings.Join(config.ProfileNames(), ", "))
		}
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), p)
		}

		data, err := yaml.Marshal(p.Document)
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "# %s: %s\n", displayName(p.Name), p.Description)
		_, err = w.Write(data)
		return err
	},
}

// displayName turns "slow-api" into "Slow Api".
func displayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}

func init() {
	profilesCmd.AddCommand(profilesShowCmd)
	rootCmd.AddCommand(profilesCmd)
}
