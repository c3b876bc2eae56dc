package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/daytrade-predictor/internal/datasource"
	"github.com/yourusername/daytrade-predictor/internal/features"
	"github.com/yourusername/daytrade-predictor/internal/service"
)

var (
	featureConfigJSON string
	featureOutDir     string
	trainFraction     float64
)

func init() {
	featuresCmd.Flags().StringVar(&featureConfigJSON, "config-json", "", "Feature config as JSON, e.g. '{\"features_enabled\":{\"rsi_14\":true}}'")
	featuresCmd.Flags().StringVar(&featureOutDir, "out", "data/features", "Directory for the train and test CSV files")
	featuresCmd.Flags().Float64Var(&trainFraction, "train-fraction", 0, "Share of rows in the training split (default from config)")
}

var featuresCmd = &cobra.Command{
	Use:   "features SYMBOL",
	Short: "Engineer features and write chronological train/test CSVs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		featureCfg := features.DefaultConfig()
		featureCfg.TargetType = features.TargetType(cfg.Features.TargetType)
		if featureConfigJSON != "" {
			parsed, err := features.ParseConfig([]byte(featureConfigJSON))
			if err != nil {
				return err
			}
			featureCfg = parsed
		}

		fraction := trainFraction
		if fraction == 0 {
			fraction = cfg.Features.TrainFraction
		}

		svc := service.NewDatasetService(datasource.NewCSVSource(cfg.Data.DataDir, appLog), cfg.Data.MinRows, appLog)
		ds, err := svc.Build(cmd.Context(), args[0], featureCfg, fraction)
		if err != nil {
			return err
		}
		summary, err := ds.Export(featureOutDir)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, summary)
	},
}
