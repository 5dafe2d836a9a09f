package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/murphy/pkg/metrics"
	"github.com/getmockd/murphy/pkg/proxy"
)

var (
	proxyScenario    scenarioFlags
	proxyTarget      string
	proxyListen      string
	proxyLogFile     string
	proxyBypassHosts []string
	proxyBypassPaths []string
	proxyNoAdmin     bool
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run a fault-injecting HTTP proxy (foreground, Ctrl+C to stop)",
	Long: `Run an HTTP proxy that applies a scenario to the traffic it forwards.

With --target every request is forwarded to that base URL (reverse proxy).
Without it the proxy serves clients that use it as HTTP_PROXY; HTTPS goes
through CONNECT tunnels, where the scenario applies to the tunnel as a whole.

Admin endpoints:
  GET /__murphy/status     active scenario and uptime
  GET /__murphy/metrics    Prometheus metrics
  PUT /__murphy/scenario   replace the scenario (YAML/JSON body or ?profile=NAME)

Examples:
  murphy proxy --target http://localhost:3000 -f scenario.yaml
  murphy proxy --target https://api.example.com --profile flaky --seed 42
  murphy proxy --listen :8888 --profile slow-api --bypass-host '*.internal'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var mirror io.Writer
		if proxyLogFile != "" {
			f, err := os.OpenFile(proxyLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			mirror = f
		}
		logger := newLogger(cmd, mirror)

		name, scenario, err := proxyScenario.load(cmd)
		if errors.Is(err, ErrNoScenario) {
			logger.Warn("no scenario given, forwarding all traffic unchanged")
		} else if err != nil {
			return err
		}

		p, err := proxy.New(proxy.Config{
			Target:       proxyTarget,
			Name:         name,
			Scenario:     scenario,
			Filter:       proxy.NewFilter(proxyBypassHosts, proxyBypassPaths),
			Logger:       logger,
			Metrics:      metrics.NewCollector(nil),
			DisableAdmin: proxyNoAdmin,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return p.ListenAndServe(ctx, proxyListen)
	},
}

func init() {
	proxyScenario.register(proxyCmd)
	proxyCmd.Flags().StringVarP(&proxyTarget, "target", "t", "", "Upstream base URL (reverse mode); empty for forward-proxy mode")
	proxyCmd.Flags().StringVarP(&proxyListen, "listen", "l", "127.0.0.1:8080", "Address to listen on")
	proxyCmd.Flags().StringVar(&proxyLogFile, "log-file", "", "Also append JSON logs to this file")
	proxyCmd.Flags().StringArrayVar(&proxyBypassHosts, "bypass-host", nil, "Host pattern that skips the scenario (repeatable)")
	proxyCmd.Flags().StringArrayVar(&proxyBypassPaths, "bypass-path", nil, "Path pattern that skips the scenario (repeatable)")
	proxyCmd.Flags().BoolVar(&proxyNoAdmin, "no-admin", false, "Forward /__murphy/ paths instead of serving admin endpoints")
	rootCmd.AddCommand(proxyCmd)
}
