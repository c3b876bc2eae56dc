package backtest

import (
	"math"
	"sort"

	"github.com/yourusername/daytrade-predictor/internal/models"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear annualises the per-trade Sharpe ratio
const TradingDaysPerYear = 252

// ClassificationMetrics measures prediction quality against realized labels
type ClassificationMetrics struct {
	Accuracy  float64  `json:"accuracy"`
	Precision float64  `json:"precision"`
	Recall    float64  `json:"recall"`
	F1Score   float64  `json:"f1_score"`
	ROCAUC    *float64 `json:"roc_auc,omitempty"`
}

// TradingMetrics measures the simulated strategy's performance
type TradingMetrics struct {
	TotalTrades        int     `json:"total_trades"`
	TotalProfitLoss    float64 `json:"total_profit_loss"`
	WinRate            float64 `json:"win_rate"`
	AvgProfitPerTrade  float64 `json:"avg_profit_per_trade"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	LargestWin         float64 `json:"largest_win"`
	LargestLoss        float64 `json:"largest_loss"`
	InitialCapital     float64 `json:"initial_capital"`
	FinalCapital       float64 `json:"final_capital"`
	TotalReturnPct     float64 `json:"total_return_pct"`
	TotalReturnDollars float64 `json:"total_return_dollars"`
	WinningTrades      int     `json:"winning_trades"`
	LosingTrades       int     `json:"losing_trades"`
	AvgWin             float64 `json:"avg_win"`
	AvgLoss            float64 `json:"avg_loss"`
	GrossProfit        float64 `json:"gross_profit"`
	GrossLoss          float64 `json:"gross_loss"`
	ProfitFactor       float64 `json:"profit_factor"`
}

// MetricsReport bundles both metric families of one run
type MetricsReport struct {
	Classification ClassificationMetrics `json:"prediction_metrics"`
	Trading        TradingMetrics        `json:"trading_metrics"`
}

// ClassificationReport scores predictions against labels. Divisions by zero
// yield 0. proba may be nil, in which case ROC-AUC is omitted.
func ClassificationReport(yTrue, yPred []int, proba []float64) (ClassificationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return ClassificationMetrics{}, models.NewValidationError("labels (%d) and predictions (%d) differ in length", len(yTrue), len(yPred))
	}
	if proba != nil && len(proba) != len(yTrue) {
		return ClassificationMetrics{}, models.NewValidationError("labels (%d) and probabilities (%d) differ in length", len(yTrue), len(proba))
	}

	var tp, fp, fn, correct int
	for i := range yTrue {
		actual, predicted := yTrue[i] == 1, yPred[i] == 1
		switch {
		case actual && predicted:
			tp++
		case !actual && predicted:
			fp++
		case actual && !predicted:
			fn++
		}
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	m := ClassificationMetrics{
		Accuracy:  safeDiv(float64(correct), float64(len(yTrue))),
		Precision: safeDiv(float64(tp), float64(tp+fp)),
		Recall:    safeDiv(float64(tp), float64(tp+fn)),
	}
	m.F1Score = safeDiv(2*m.Precision*m.Recall, m.Precision+m.Recall)

	if proba != nil {
		auc := rocAUC(yTrue, proba)
		m.ROCAUC = &auc
	}
	return m, nil
}

// TradingReport derives performance figures from a ledger. An empty ledger
// yields zeros with final capital equal to initial capital.
func TradingReport(ledger *Ledger) TradingMetrics {
	if ledger == nil {
		return TradingMetrics{}
	}
	initial := ledger.InitialCapital.InexactFloat64()
	final := ledger.FinalCapital.InexactFloat64()
	m := TradingMetrics{
		InitialCapital: initial,
		FinalCapital:   final,
	}
	if ledger.Len() == 0 {
		return m
	}

	pnl := make([]float64, ledger.Len())
	returns := make([]float64, ledger.Len())
	for i, trade := range ledger.Trades {
		pnl[i] = trade.ProfitLoss.InexactFloat64()
		returns[i] = trade.ProfitLossPct / 100
	}

	m.TotalTrades = ledger.Len()
	m.TotalProfitLoss = ledger.TotalProfitLoss().InexactFloat64()
	m.AvgProfitPerTrade = average(pnl)
	m.SharpeRatio = calculateSharpeRatio(returns)
	m.MaxDrawdown = calculateMaxDrawdown(returns)
	m.WinningTrades, m.LosingTrades, m.AvgWin, m.AvgLoss, m.GrossProfit, m.GrossLoss = calculateTradeStats(pnl)
	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	m.LargestWin, m.LargestLoss = extremes(pnl)
	m.ProfitFactor = calculateProfitFactor(m.GrossProfit, m.GrossLoss)

	returnDollars := ledger.FinalCapital.Sub(ledger.InitialCapital)
	m.TotalReturnDollars = returnDollars.InexactFloat64()
	if initial != 0 {
		m.TotalReturnPct = m.TotalReturnDollars / initial * 100
	}
	return m
}

// BuildReport computes both metric families for one run
func BuildReport(yTrue, yPred []int, proba []float64, ledger *Ledger) (MetricsReport, error) {
	classification, err := ClassificationReport(yTrue, yPred, proba)
	if err != nil {
		return MetricsReport{}, err
	}
	return MetricsReport{Classification: classification, Trading: TradingReport(ledger)}, nil
}

// calculateSharpeRatio annualises mean/sample-std of per-trade returns. Fewer
// than two trades or a zero deviation reads 0.
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	std := sampleStddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std * math.Sqrt(TradingDaysPerYear)
}

// calculateMaxDrawdown is the deepest fall of cumulative return below its
// running peak, in percent. It is never positive.
func calculateMaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	cumulative := 0.0
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, r := range returns {
		cumulative += r
		if cumulative > peak {
			peak = cumulative
		}
		if dd := cumulative - peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}

func calculateProfitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		return 0
	}
	return grossProfit / grossLoss
}

func calculateTradeStats(pnl []float64) (wins, losses int, avgWin, avgLoss, grossProfit, grossLoss float64) {
	lossSum := 0.0
	for _, v := range pnl {
		if v > 0 {
			wins++
			grossProfit += v
		} else if v < 0 {
			losses++
			lossSum += v
		}
	}
	if wins > 0 {
		avgWin = grossProfit / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return wins, losses, avgWin, avgLoss, grossProfit, math.Abs(lossSum)
}

func extremes(values []float64) (hi, lo float64) {
	hi, lo = values[0], values[0]
	for _, v := range values[1:] {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	return hi, lo
}

// rocAUC is the Mann-Whitney estimate with average ranks for tied scores.
// A label set with a single class reads 0.
func rocAUC(yTrue []int, scores []float64) float64 {
	var positives, negatives int
	for _, y := range yTrue {
		if y == 1 {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	rankSum := 0.0
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if yTrue[order[k]] == 1 {
				rankSum += rank
			}
		}
		i = j + 1
	}

	p, n := float64(positives), float64(negatives)
	return (rankSum - p*(p+1)/2) / (p * n)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// sampleStddev uses the n-1 denominator; fewer than two values give 0
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
