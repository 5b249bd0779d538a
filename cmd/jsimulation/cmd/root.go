// Package cmd provides the command-line interface for jsimulation, a
// small operator tool for driving a standalone event-list run with
// optional tracing, recording, and live monitoring.
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/jandejongh/jsimulation/eventlist"
	"github.com/jandejongh/jsimulation/monitoring"
	"github.com/jandejongh/jsimulation/recording"
	"github.com/jandejongh/jsimulation/tracing"
)

var (
	flagPolicy        string
	flagSeed          int64
	flagMonitorPort   int
	flagTraceDB       string
	flagClickHouseDSN string
	flagOpenBrowser   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "jsimulation",
	Short: "jsimulation drives a standalone discrete-event run with optional observation.",
	Long: `jsimulation drives a standalone discrete-event run with optional
tracing, recording, and live monitoring. It is a thin operator shell
around the eventlist package, not a simulator in itself: bring your own
events via a future extension point, or use it to exercise the engine's
ambient machinery end to end.`,
	RunE: runRoot,
}

func init() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&flagPolicy, "policy", envOr("JSIMULATION_POLICY", "ioel"),
		"tiebreak policy to use for the run (roel|ioel)")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", envOrInt64("JSIMULATION_SEED", 0),
		"ROEL RNG seed (ignored for ioel)")
	rootCmd.Flags().IntVar(&flagMonitorPort, "monitor-port", envOrInt("JSIMULATION_MONITOR_PORT", 0),
		"monitoring HTTP server port (0 disables monitoring)")
	rootCmd.Flags().StringVar(&flagTraceDB, "trace-db", envOr("JSIMULATION_TRACE_DB", ""),
		"SQLite file path for the event trace (empty disables tracing)")
	rootCmd.Flags().StringVar(&flagClickHouseDSN, "clickhouse-dsn", envOr("JSIMULATION_CLICKHOUSE_DSN", ""),
		"ClickHouse address for run-level recording (empty disables recording)")
	rootCmd.Flags().BoolVar(&flagOpenBrowser, "open-browser", false,
		"open the monitor status page in the operator's browser")
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRoot(_ *cobra.Command, _ []string) error {
	list, err := newList()
	if err != nil {
		return err
	}

	if flagTraceDB != "" {
		w := tracing.NewWriter(flagTraceDB)
		if err := w.Open(); err != nil {
			return fmt.Errorf("jsimulation: open trace db: %w", err)
		}
		list.AddListener(w)
		defer w.Flush()
	}

	if flagClickHouseDSN != "" {
		rec, err := recording.NewRecorder(flagClickHouseDSN, "default", "", "", "runs", 1000)
		if err != nil {
			return fmt.Errorf("jsimulation: connect recorder: %w", err)
		}
		list.AddListener(rec)
		defer rec.Close()
	}

	if flagMonitorPort != 0 {
		mon := monitoring.NewMonitor(list).WithPortNumber(flagMonitorPort)
		addr, err := mon.StartServer()
		if err != nil {
			return fmt.Errorf("jsimulation: start monitor: %w", err)
		}

		statusURL := fmt.Sprintf("http://%s/status", addr.String())
		fmt.Fprintf(os.Stdout, "monitoring at %s\n", statusURL)

		if flagOpenBrowser {
			if err := browser.OpenURL(statusURL); err != nil {
				fmt.Fprintf(os.Stderr, "jsimulation: open browser: %v\n", err)
			}
		}
	}

	return list.Run()
}

func newList() (*eventlist.EventList, error) {
	switch flagPolicy {
	case "roel":
		return eventlist.NewROEL(flagSeed), nil
	case "ioel":
		return eventlist.NewIOEL(), nil
	default:
		return nil, fmt.Errorf("jsimulation: unknown policy %q (want roel or ioel)", flagPolicy)
	}
}
