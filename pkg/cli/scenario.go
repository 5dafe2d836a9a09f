package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/murphy/pkg/config"
	"github.com/getmockd/murphy/pkg/murphy"
)

// scenarioFlags are shared by commands that load a scenario.
type scenarioFlags struct {
	files   []string
	profile string
	seed    uint64
}

func (f *scenarioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "Scenario file or glob (repeatable)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Use a built-in profile instead of files (see 'murphy profiles')")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for reproducible random effects")
}

// load builds the scenario selected by the flags and returns it with its name.
func (f *scenarioFlags) load(cmd *cobra.Command) (string, *murphy.Scenario, error) {
	var seed *uint64
	if cmd.Flags().Changed("seed") {
		s := f.seed
		seed = &s
	}

	switch {
	case f.profile != "" && len(f.files) > 0:
		return "", nil, ErrTooManySources
	case f.profile != "":
		s, err := config.ProfileScenario(f.profile, seed)
		if err != nil {
			return "", nil, err
		}
		return f.profile, s, nil
	case len(f.files) > 0:
		doc, err := config.LoadPaths(f.files...)
		if err != nil {
			return "", nil, err
		}
		if seed != nil {
			doc.Seed = seed
		}
		s, err := config.Build(doc)
		if err != nil {
			return "", nil, err
		}
		return doc.Name, s, nil
	default:
		return "", nil, ErrNoScenario
	}
}
