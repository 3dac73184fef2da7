package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	coremon "github.com/kilianp07/predictability/core/monitoring"
	"github.com/kilianp07/predictability/core/timeseries"
	"github.com/kilianp07/predictability/pkg/export"
)

var predictFlags struct {
	model     string
	series    []string
	features  string
	noRescale bool
	format    string
	output    string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict whether time series are predictable",
	Long: "Predict reads either time series CSV files (time,value) with --series " +
		"or a CSV of feature rows with --features, and prints one verdict per input.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return coremon.Guard("predict", func() error { return runPredict(cmd) })
	},
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictFlags.model, "model", "", "trained model path (defaults to model.path)")
	f.StringSliceVar(&predictFlags.series, "series", nil, "time series CSV files")
	f.StringVar(&predictFlags.features, "features", "", "feature rows CSV file")
	f.BoolVar(&predictFlags.noRescale, "no-rescale", false, "do not divide series by their maximum before feature extraction")
	f.StringVar(&predictFlags.format, "format", "csv", "output format: csv or json")
	f.StringVarP(&predictFlags.output, "output", "o", "", "output file (defaults to stdout)")
	predictCmd.MarkFlagsMutuallyExclusive("series", "features")
	predictCmd.MarkFlagsOneRequired("series", "features")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command) error {
	write, err := verdictWriter(predictFlags.format)
	if err != nil {
		return err
	}
	cfg, svc, err := setup()
	if err != nil {
		return err
	}
	defer closeService(svc)

	modelPath := cfg.Model.Path
	if predictFlags.model != "" {
		modelPath = predictFlags.model
	}

	var verdicts []export.Verdict
	if len(predictFlags.series) > 0 {
		series := make([]timeseries.TimeSeries, 0, len(predictFlags.series))
		for _, p := range predictFlags.series {
			ts, err := readSeries(p)
			if err != nil {
				return err
			}
			series = append(series, ts)
		}
		verdicts, err = svc.PredictSeries(cmd.Context(), modelPath, series, !predictFlags.noRescale)
	} else {
		f, ferr := os.Open(predictFlags.features)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		frame, ferr := export.ReadFrame(f)
		if ferr != nil {
			return fmt.Errorf("%s: %w", predictFlags.features, ferr)
		}
		verdicts, err = svc.PredictFeatures(cmd.Context(), modelPath, frame)
	}
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if predictFlags.output != "" {
		f, err := os.Create(predictFlags.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return write(w, verdicts)
}

func readSeries(path string) (timeseries.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return timeseries.TimeSeries{}, err
	}
	defer f.Close()
	ts, err := timeseries.ReadCSV(f)
	if err != nil {
		return timeseries.TimeSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

func verdictWriter(format string) (func(io.Writer, []export.Verdict) error, error) {
	switch format {
	case "csv":
		return export.WriteCSV, nil
	case "json":
		return export.WriteJSON, nil
	}
	return nil, errors.New("format must be csv or json")
}
