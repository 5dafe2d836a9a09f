package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/murphy/pkg/config"
)

// ValidateResult is the outcome for one scenario file.
type ValidateResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Name   string   `json:"name,omitempty"`
	Rules  int      `json:"rules"`
	Errors []string `json:"errors,omitempty"`
}

var validateFiles []string

var validateCmd = &cobra.Command{
	Use:   "validate [-f FILE]... [FILE]...",
	Short: "Validate scenario files without running them",
	Long: `Validate scenario files without running them.

Each file is checked against the scenario schema and then built, so unknown
keys, bad durations, out-of-range probabilities and empty rules are all
reported. Arguments containing glob metacharacters are expanded; ** crosses
directories.

Examples:
  murphy validate -f scenario.yaml
  murphy validate 'scenarios/**/*.yaml'
  murphy validate -f base.yaml -f outage.json --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := append(append([]string(nil), validateFiles...), args...)
		if len(paths) == 0 {
			return fmt.Errorf("no files given: %w", ErrNoScenario)
		}
		files, err := config.ExpandPaths(paths...)
		if err != nil {
			return err
		}

		results := make([]ValidateResult, 0, len(files))
		failed := 0
		for _, file := range files {
			res := validateFile(file)
			if !res.Valid {
				failed++
			}
			results = append(results, res)
		}

		if err := printResult(cmd, results, func(w io.Writer) {
			for _, r := range results {
				if r.Valid {
					fmt.Fprintf(w, "OK    %s (%d rules)\n", r.File, r.Rules)
					continue
				}
				fmt.Fprintf(w, "FAIL  %s\n", r.File)
				for _, e := range r.Errors {
					fmt.Fprintf(w, "      %s\n", e)
				}
			}
		}); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d failed", ErrValidationFailed, failed, len(files))
		}
		return nil
	},
}

func validateFile(file string) ValidateResult {
	res := ValidateResult{File: file}
	doc, err := config.LoadFile(file)
	if err == nil {
		_, err = config.Build(doc)
	}
	if err != nil {
		res.Errors = describeError(err)
		return res
	}
	res.Valid = true
	res.Name = doc.Name
	res.Rules = len(doc.Rules)
	return res
}

// describeError flattens schema violations into one line each.
func describeError(err error) []string {
	var schemaErr *config.SchemaError
	if errors.As(err, &schemaErr) && len(schemaErr.Violations) > 0 {
		out := make([]string, 0, len(schemaErr.Violations))
		for _, v := range schemaErr.Violations {
			out = append(out, v.String())
		}
		return out
	}
	return []string{err.Error()}
}

func init() {
	validateCmd.Flags().StringArrayVarP(&validateFiles, "file", "f", nil, "Scenario file or glob (repeatable)")
	rootCmd.AddCommand(validateCmd)
}
