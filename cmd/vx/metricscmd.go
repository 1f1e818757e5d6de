package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/metrics"
)

// metricsRingSize is the number of invocation records retained on disk;
// recordInvocation prunes down to this after every write.
const metricsRingSize = 50

var (
	metricsLast  int
	metricsJSON  bool
	metricsHTML  string
	metricsClean bool
)

// metricsCmd implements `vx metrics`; named metricscmd.go to avoid
// colliding with the internal/metrics import's natural file name.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect recorded invocation metrics",
	RunE:  runMetrics,
}

func init() {
	metricsCmd.Flags().IntVar(&metricsLast, "last", 20, "Show at most N most recent records")
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Print records as JSON")
	metricsCmd.Flags().StringVar(&metricsHTML, "html", "", "Write an HTML report to the given file")
	metricsCmd.Flags().BoolVar(&metricsClean, "clean", false, "Prune metrics down to the configured ring size and exit")
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	if metricsClean {
		if err := metrics.Prune(a.paths.MetricsDir(), metricsRingSize); err != nil {
			return wrapExit(exitGeneral, err)
		}
		cmd.Println("pruned metrics ring")
		return nil
	}

	records, err := metrics.Last(a.paths.MetricsDir(), metricsLast)
	if err != nil {
		return wrapExit(exitGeneral, err)
	}

	if metricsHTML != "" {
		return writeMetricsHTML(metricsHTML, records)
	}

	if metricsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, r := range records {
		cmd.Printf("%s  %-20s exit=%d  %s\n", r.StartedAt.Format("2006-01-02 15:04:05"), r.Command, r.ExitCode, r.FinishedAt.Sub(r.StartedAt))
	}
	return nil
}

func writeMetricsHTML(path string, records []metrics.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapExit(exitGeneral, err)
	}
	defer f.Close()

	fmt.Fprintln(f, "<!doctype html><html><body><table border=1>")
	fmt.Fprintln(f, "<tr><th>started</th><th>command</th><th>tool</th><th>version</th><th>exit</th><th>duration</th></tr>")
	for _, r := range records {
		fmt.Fprintf(f, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Command, r.Tool, r.Version, r.ExitCode, r.FinishedAt.Sub(r.StartedAt))
	}
	fmt.Fprintln(f, "</table></body></html>")
	return nil
}
