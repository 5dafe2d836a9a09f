package cli

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/murphy/pkg/transport"
)

// CheckResult describes which rule a request would hit.
type CheckResult struct {
	Method  string   `json:"method"`
	URL     string   `json:"url"`
	Matched bool     `json:"matched"`
	Index   int      `json:"index"`
	Rule    string   `json:"rule,omitempty"`
	Matcher string   `json:"matcher,omitempty"`
	Effects []string `json:"effects,omitempty"`
}

var (
	checkScenario scenarioFlags
	checkMethod   string
	checkPath     string
	checkBaseURL  string
	checkHeaders  []string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show which rule a request would hit",
	Long: `Resolve a request against a scenario without sending it.

Rules are tried in order and the first match wins. Nothing is delayed or
executed; the matched rule and its effects are printed.

Examples:
  murphy check -f scenario.yaml --method POST --path /api/orders
  murphy check -f scenario.yaml --path /api/users -H "X-Chaos: on"
  murphy check --profile flaky --path / --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, scenario, err := checkScenario.load(cmd)
		if err != nil {
			return err
		}

		req, err := http.NewRequest(checkMethod, strings.TrimSuffix(checkBaseURL, "/")+checkPath, nil)
		if err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
		for _, h := range checkHeaders {
			name, value, ok := strings.Cut(h, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return fmt.Errorf("invalid header %q: want \"Name: value\"", h)
			}
			req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
		}

		rc := transport.NewRequestContext(req)
		res := CheckResult{Method: rc.Method, URL: rc.URL, Index: scenario.FindIndex(rc)}
		if res.Index >= 0 {
			rule := scenario.Rules()[res.Index]
			res.Matched = true
			res.Rule = rule.Name()
			res.Matcher = fmt.Sprint(rule.Matcher())
			for _, e := range rule.Effects() {
				res.Effects = append(res.Effects, fmt.Sprint(e))
			}
		}

		return printResult(cmd, res, func(w io.Writer) {
			if !res.Matched {
				fmt.Fprintf(w, "%s %s: no rule matches, the call passes through\n", res.Method, res.URL)
				return
			}
			label := ""
			if res.Rule != "" {
				label = " (" + res.Rule + ")"
			}
			fmt.Fprintf(w, "%s %s: rule #%d%s\n", res.Method, res.URL, res.Index+1, label)
			fmt.Fprintf(w, "  matcher: %s\n", res.Matcher)
			fmt.Fprintln(w, "  effects:")
			for _, e := range res.Effects {
				fmt.Fprintf(w, "    - %s\n", e)
			}
		})
	},
}

func init() {
	checkScenario.register(checkCmd)
	checkCmd.Flags().StringVarP(&checkMethod, "method", "X", http.MethodGet, "Request method")
	checkCmd.Flags().StringVarP(&checkPath, "path", "p", "/", "Request path, with optional query")
	checkCmd.Flags().StringVar(&checkBaseURL, "url", "http://localhost", "Scheme and host the path is resolved against")
	checkCmd.Flags().StringArrayVarP(&checkHeaders, "header", "H", nil, "Request header as \"Name: value\" (repeatable)")
	rootCmd.AddCommand(checkCmd)
}
