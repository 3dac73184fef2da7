package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kilianp07/predictability/app"
	"github.com/kilianp07/predictability/core/classifier"
	coremon "github.com/kilianp07/predictability/core/monitoring"
)

var trainFlags struct {
	metadata   string
	out        string
	method     string
	validSize  float64
	testSize   float64
	recall     float64
	preprocess bool
	seed       int64
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a classifier from time series meta-data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return coremon.Guard("train", func() error { return runTrain(cmd) })
	},
}

func init() {
	f := trainCmd.Flags()
	f.StringVarP(&trainFlags.metadata, "metadata", "m", "", "meta-data file (.json, .jsonl or .yaml)")
	f.StringVarP(&trainFlags.out, "out", "o", "", "model output path (defaults to model.path)")
	f.StringVar(&trainFlags.method, "method", "", "classifier: RandomForest, GBDT, KNN or NaiveBayes")
	f.Float64Var(&trainFlags.validSize, "valid-size", 0, "validation fraction")
	f.Float64Var(&trainFlags.testSize, "test-size", 0, "test fraction")
	f.Float64Var(&trainFlags.recall, "recall", 0, "minimum recall when picking the decision threshold")
	f.BoolVar(&trainFlags.preprocess, "preprocess", false, "standardise features before training")
	f.Int64Var(&trainFlags.seed, "seed", 0, "random seed")
	_ = trainCmd.MarkFlagRequired("metadata")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command) error {
	cfg, svc, err := setup()
	if err != nil {
		return err
	}
	defer closeService(svc)

	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Model.Seed = trainFlags.seed
	}
	opts := cfg.Training.Options()
	if f.Changed("method") {
		opts.Method = classifier.Method(trainFlags.method)
	}
	if f.Changed("valid-size") {
		opts.ValidSize = trainFlags.validSize
	}
	if f.Changed("test-size") {
		opts.TestSize = trainFlags.testSize
	}
	if f.Changed("recall") {
		opts.RecallThreshold = trainFlags.recall
	}
	out := cfg.Model.Path
	if trainFlags.out != "" {
		out = trainFlags.out
	}

	res, err := svc.Train(cmd.Context(), app.TrainRequest{
		MetadataPath: trainFlags.metadata,
		ModelPath:    out,
		Options:      opts,
		Preprocess:   cfg.Training.Preprocess || trainFlags.preprocess,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run %s: %s threshold=%.4f", res.Report.RunID, res.Report.Method, res.Report.Threshold)
	if res.Report.Fallback {
		fmt.Fprint(w, " (fallback)")
	}
	fmt.Fprintln(w)
	names := make([]string, 0, len(res.Scores))
	for k := range res.Scores {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(w, "  %-9s %.4f\n", k, res.Scores[k])
	}
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(w, "skipped %d records\n", n)
	}
	fmt.Fprintf(w, "model saved to %s\n", out)
	return nil
}
