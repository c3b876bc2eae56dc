// Package service wires data loading, feature engineering, model scoring and
// simulation into backtest and dataset runs.
package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/daytrade-predictor/internal/backtest"
	"github.com/yourusername/daytrade-predictor/internal/datasource"
	"github.com/yourusername/daytrade-predictor/internal/features"
	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/metrics"
	"github.com/yourusername/daytrade-predictor/internal/ml"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// Pipeline stage names used for metrics and logs
const (
	StageModel    = "model"
	StageData     = "data"
	StageFeatures = "features"
	StagePredict  = "predict"
	StageSimulate = "simulate"
	StageMetrics  = "metrics"
	StagePersist  = "persist"
)

// ModelLoader resolves the trained model of a symbol
type ModelLoader interface {
	Load(ctx context.Context, symbol string) (*ml.Model, error)
}

// ResultStore persists finished runs
type ResultStore interface {
	SaveResult(ctx context.Context, result *models.BacktestResult, trades []*models.BacktestTrade) error
}

// BacktestRequest asks for one symbol's backtest
type BacktestRequest struct {
	Symbol         string  `validate:"required,symbol"`
	InitialCapital float64 `validate:"gt=0"`
}

// BacktestOptions tunes a BacktestService
type BacktestOptions struct {
	MinRows           int
	RecentTradesLimit int
	DefaultCapital    float64
}

// BacktestService runs the full backtest of a trained model
type BacktestService struct {
	source   datasource.BarSource
	models   ModelLoader
	store    ResultStore
	opts     BacktestOptions
	logger   *logger.PipelineLogger
	audit    *logger.AuditLogger
	validate *validator.Validate
}

// NewBacktestService creates a backtest service. store may be nil, in which
// case results are not persisted.
func NewBacktestService(source datasource.BarSource, loader ModelLoader, store ResultStore, opts BacktestOptions, log logrus.FieldLogger) *BacktestService {
	if opts.RecentTradesLimit == 0 {
		opts.RecentTradesLimit = backtest.DefaultRecentTradesLimit
	}
	if opts.DefaultCapital <= 0 {
		opts.DefaultCapital = backtest.DefaultConfig().InitialCapital
	}
	return &BacktestService{
		source:   source,
		models:   loader,
		store:    store,
		opts:     opts,
		logger:   logger.NewPipelineLogger(log),
		audit:    logger.NewAuditLogger(log),
		validate: newValidator(),
	}
}

// Outcome is a finished run together with its full trade ledger
type Outcome struct {
	Result *backtest.Result
	Ledger *backtest.Ledger
}

// Run backtests req.Symbol's model over its full price history
func (s *BacktestService) Run(ctx context.Context, req BacktestRequest) (*backtest.Result, error) {
	out, err := s.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Execute is Run that also returns every trade, for equity curve exports
func (s *BacktestService) Execute(ctx context.Context, req BacktestRequest) (*Outcome, error) {
	start := time.Now()
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	if math.IsInf(req.InitialCapital, 0) {
		return nil, models.NewValidationError("InitialCapital must be finite")
	}
	log := s.logger.ForSymbol(req.Symbol)

	out, err := s.run(ctx, req, log)
	if err != nil {
		metrics.RecordBacktestFailure(req.Symbol, models.ErrorKind(err))
		return nil, err
	}

	tm := out.Result.TradingMetrics
	metrics.RecordBacktestRun(req.Symbol, tm.TotalTrades, tm.FinalCapital, time.Since(start).Seconds())
	return out, nil
}

// RunSymbol backtests symbol with the default capital. It satisfies the
// scheduler's runner contract.
func (s *BacktestService) RunSymbol(ctx context.Context, symbol string) error {
	_, err := s.Run(ctx, BacktestRequest{Symbol: symbol, InitialCapital: s.opts.DefaultCapital})
	return err
}

func (s *BacktestService) run(ctx context.Context, req BacktestRequest, log *logger.PipelineLogger) (*Outcome, error) {
	model, err := s.models.Load(ctx, req.Symbol)
	if err = s.stage(log, StageModel, err); err != nil {
		return nil, err
	}
	meta := model.Metadata
	if meta == nil {
		meta = &models.ModelMetadata{StockSymbol: req.Symbol}
	}
	cfg, err := features.ConfigFromMetadata(meta)
	if err = s.stage(log, StageModel, err); err != nil {
		return nil, err
	}

	bars, err := s.source.LoadBars(ctx, req.Symbol)
	if err = s.stage(log, StageData, err); err != nil {
		return nil, err
	}

	engineerStart := time.Now()
	table, err := features.Engineer(bars, cfg, features.WithMinRows(s.opts.MinRows), features.WithLogger(log))
	if err = s.stage(log, StageFeatures, err); err != nil {
		return nil, err
	}
	metrics.RecordFeatureEngineering(table.RowsDropped, time.Since(engineerStart).Seconds())
	log.LogFeatureEngineering(table.InputRows, table.RowsDropped, len(table.FeatureNames()), string(table.TargetType))

	featureNames := meta.FeaturesUsed
	if len(featureNames) == 0 {
		featureNames = table.FeatureNames()
	}
	X, err := table.Matrix(featureNames)
	if err = s.stage(log, StageFeatures, err); err != nil {
		return nil, fmt.Errorf("features used by the model: %w", err)
	}

	predictStart := time.Now()
	predictions, confidences, err := ml.Score(ctx, model.Classifier, X)
	if err = s.stage(log, StagePredict, err); err != nil {
		return nil, err
	}
	log.LogPredictions(len(X), len(featureNames), time.Since(predictStart))

	ledger, err := backtest.Simulate(table, predictions, confidences, req.InitialCapital)
	if err = s.stage(log, StageSimulate, err); err != nil {
		return nil, err
	}
	log.LogSimulation(ledger.Len(), ledger.InitialCapital.InexactFloat64(), ledger.FinalCapital.InexactFloat64())

	report, err := backtest.BuildReport(table.Labels(), predictions, confidences, ledger)
	if err = s.stage(log, StageMetrics, err); err != nil {
		return nil, err
	}

	result := backtest.NewResult(backtest.ResultParams{
		Symbol:         req.Symbol,
		ModelVersion:   meta.ModelVersion,
		ModelTrainedAt: meta.TrainedAt,
		Summary: backtest.DataSummary{
			TotalSamples: table.Len(),
			NumFeatures:  len(featureNames),
			RowsDropped:  table.RowsDropped,
			InputRows:    table.InputRows,
		},
		Report:      report,
		Ledger:      ledger,
		RecentLimit: s.opts.RecentTradesLimit,
	})
	log.LogBacktestSummary(report.Classification.Accuracy, report.Trading.WinRate, report.Trading.TotalReturnPct, report.Trading.SharpeRatio)

	s.persist(ctx, log, result, ledger, table)
	return &Outcome{Result: result, Ledger: ledger}, nil
}

// persist stores the run when a store is configured. A storage failure is
// logged and counted but does not fail the backtest.
func (s *BacktestService) persist(ctx context.Context, log *logger.PipelineLogger, result *backtest.Result, ledger *backtest.Ledger, table *features.Table) {
	if s.store == nil {
		return
	}
	bars := table.Bars()
	row, err := result.ToModel(bars[0].Date, bars[len(bars)-1].Date)
	if err == nil {
		err = s.store.SaveResult(ctx, row, ledger.TradeModels(row.ID, result.Symbol))
	}
	if s.stage(log, StagePersist, err) != nil {
		return
	}
	metrics.RecordResultPersisted()
	s.audit.LogResultPersisted(result.RunID.String(), result.Symbol, ledger.Len())
}

func (s *BacktestService) stage(log *logger.PipelineLogger, name string, err error) error {
	metrics.RecordStage(name, err)
	if err != nil {
		log.LogStageError(name, models.ErrorKind(err), err)
	}
	return err
}
