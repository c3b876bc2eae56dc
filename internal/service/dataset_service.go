package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/daytrade-predictor/internal/backtest"
	"github.com/yourusername/daytrade-predictor/internal/datasource"
	"github.com/yourusername/daytrade-predictor/internal/features"
	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/metrics"
)

// Dataset is an engineered table split chronologically for training
type Dataset struct {
	Symbol string
	Config features.Config
	Full   *features.Table
	Train  *features.Table
	Test   *features.Table
}

// DatasetSummary describes an exported dataset
type DatasetSummary struct {
	Symbol             string         `json:"symbol"`
	TargetType         string         `json:"target_type"`
	Features           []string       `json:"features"`
	InputRows          int            `json:"input_rows"`
	RowsDropped        int            `json:"rows_dropped"`
	TrainRows          int            `json:"train_rows"`
	TestRows           int            `json:"test_rows"`
	TrainEnd           string         `json:"train_end"`
	TestStart          string         `json:"test_start"`
	TargetDistribution map[string]int `json:"target_distribution"`
	TrainPath          string         `json:"train_path,omitempty"`
	TestPath           string         `json:"test_path,omitempty"`
}

// DatasetService prepares training data for the external model trainer
type DatasetService struct {
	source  datasource.BarSource
	minRows int
	logger  *logger.PipelineLogger
}

// NewDatasetService creates a dataset service
func NewDatasetService(source datasource.BarSource, minRows int, log logrus.FieldLogger) *DatasetService {
	return &DatasetService{
		source:  source,
		minRows: minRows,
		logger:  logger.NewPipelineLogger(log),
	}
}

// Build engineers symbol's features under cfg and splits the rows at
// trainFraction. A zero fraction uses backtest.DefaultTrainFraction.
func (d *DatasetService) Build(ctx context.Context, symbol string, cfg features.Config, trainFraction float64) (*Dataset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if trainFraction == 0 {
		trainFraction = backtest.DefaultTrainFraction
	}
	log := d.logger.ForSymbol(symbol)

	bars, err := d.source.LoadBars(ctx, symbol)
	metrics.RecordStage(StageData, err)
	if err != nil {
		return nil, err
	}

	table, err := features.Engineer(bars, cfg, features.WithMinRows(d.minRows), features.WithLogger(log))
	metrics.RecordStage(StageFeatures, err)
	if err != nil {
		return nil, err
	}
	log.LogFeatureEngineering(table.InputRows, table.RowsDropped, len(table.FeatureNames()), string(table.TargetType))

	train, test, err := backtest.SplitChronological(table, trainFraction)
	if err != nil {
		return nil, err
	}
	return &Dataset{Symbol: symbol, Config: cfg, Full: table, Train: train, Test: test}, nil
}

// Summary reports the dataset's shape without writing it
func (ds *Dataset) Summary() DatasetSummary {
	distribution := map[string]int{"0": 0, "1": 0}
	for _, label := range ds.Full.Labels() {
		distribution[strconv.Itoa(label)]++
	}
	return DatasetSummary{
		Symbol:             ds.Symbol,
		TargetType:         string(ds.Full.TargetType),
		Features:           ds.Full.FeatureNames(),
		InputRows:          ds.Full.InputRows,
		RowsDropped:        ds.Full.RowsDropped,
		TrainRows:          ds.Train.Len(),
		TestRows:           ds.Test.Len(),
		TrainEnd:           ds.Train.Rows[ds.Train.Len()-1].Date.Format(dateLayout),
		TestStart:          ds.Test.Rows[0].Date.Format(dateLayout),
		TargetDistribution: distribution,
	}
}

// Export writes <SYMBOL>_train.csv and <SYMBOL>_test.csv into dir
func (ds *Dataset) Export(dir string) (DatasetSummary, error) {
	summary := ds.Summary()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary.TrainPath = filepath.Join(dir, ds.Symbol+"_train.csv")
	summary.TestPath = filepath.Join(dir, ds.Symbol+"_test.csv")
	if err := writeCSVFile(summary.TrainPath, ds.Train); err != nil {
		return summary, err
	}
	if err := writeCSVFile(summary.TestPath, ds.Test); err != nil {
		return summary, err
	}
	return summary, nil
}

const dateLayout = "2006-01-02"

func writeCSVFile(path string, table *features.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes table as date,<features...>,target
func WriteCSV(w io.Writer, table *features.Table) error {
	names := table.FeatureNames()
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(names)+2)
	header = append(header, "date")
	header = append(header, names...)
	header = append(header, "target")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range table.Rows {
		record[0] = row.Date.Format(dateLayout)
		for i, name := range names {
			record[i+1] = strconv.FormatFloat(row.Features[name], 'g', -1, 64)
		}
		record[len(record)-1] = strconv.Itoa(row.Target)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %s: %w", record[0], err)
		}
	}
	cw.Flush()
	return cw.Error()
}
