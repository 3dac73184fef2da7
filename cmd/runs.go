package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	coremon "github.com/kilianp07/predictability/core/monitoring"
	"github.com/kilianp07/predictability/core/runlog"
)

var runsFlags struct {
	limit  int
	method string
	since  time.Duration
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded training runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return coremon.Guard("runs", func() error { return runRuns(cmd) })
	},
}

func init() {
	f := runsCmd.Flags()
	f.IntVarP(&runsFlags.limit, "limit", "n", 20, "show at most n most recent runs (0 for all)")
	f.StringVar(&runsFlags.method, "method", "", "only show runs of this classifier")
	f.DurationVar(&runsFlags.since, "since", 0, "only show runs started within this duration")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command) error {
	_, svc, err := setup()
	if err != nil {
		return err
	}
	defer closeService(svc)

	q := runlog.Query{Method: runsFlags.method, Limit: runsFlags.limit}
	if runsFlags.since > 0 {
		q.Start = time.Now().Add(-runsFlags.since)
	}
	recs, err := svc.Runs(cmd.Context(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tMETHOD\tROWS\tTHRESHOLD\tPRECISION\tRECALL\tMODEL")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4f\t%s\t%s\t%s\n",
			r.RunID, r.StartedAt.Format(time.RFC3339), r.Method, r.Rows, r.Threshold,
			score(r.Scores, "precision"), score(r.Scores, "recall"), r.ModelPath)
	}
	return tw.Flush()
}

func score(s map[string]float64, k string) string {
	v, ok := s[k]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
