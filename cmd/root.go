package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/predictability/app"
	"github.com/kilianp07/predictability/config"
	coremon "github.com/kilianp07/predictability/core/monitoring"
	"github.com/kilianp07/predictability/infra/logger"
	"github.com/kilianp07/predictability/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "predictability",
	Short:         "Train and query a time series predictability meta-learner",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error {
	defer coremon.Flush(2 * time.Second)
	return rootCmd.Execute()
}

// setup loads the configuration, applies the log level, installs the error
// monitor and builds the service.
func setup() (*config.Config, *app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		logger.New("main").Warnf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}
