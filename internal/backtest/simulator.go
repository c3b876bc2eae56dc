package backtest

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/daytrade-predictor/internal/features"
	"github.com/yourusername/daytrade-predictor/internal/indicators"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// Trade is one executed long position: bought at the bar's open and sold at
// its close
type Trade struct {
	Date          time.Time
	Prediction    int
	Actual        int
	Confidence    float64
	EntryPrice    float64
	ExitPrice     float64
	Shares        int64
	ProfitLoss    decimal.Decimal
	ProfitLossPct float64
	WasCorrect    bool
	Capital       decimal.Decimal
}

type tradeJSON struct {
	Date          string  `json:"date"`
	Prediction    int     `json:"prediction"`
	Actual        int     `json:"actual"`
	Confidence    float64 `json:"confidence"`
	EntryPrice    float64 `json:"entry_price"`
	ExitPrice     float64 `json:"exit_price"`
	Shares        int64   `json:"shares"`
	ProfitLoss    float64 `json:"profit_loss"`
	ProfitLossPct float64 `json:"profit_loss_pct"`
	WasCorrect    bool    `json:"was_correct"`
	Capital       float64 `json:"capital"`
}

// MarshalJSON renders money as plain JSON numbers
func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(tradeJSON{
		Date:          t.Date.Format("2006-01-02"),
		Prediction:    t.Prediction,
		Actual:        t.Actual,
		Confidence:    t.Confidence,
		EntryPrice:    t.EntryPrice,
		ExitPrice:     t.ExitPrice,
		Shares:        t.Shares,
		ProfitLoss:    t.ProfitLoss.InexactFloat64(),
		ProfitLossPct: t.ProfitLossPct,
		WasCorrect:    t.WasCorrect,
		Capital:       t.Capital.InexactFloat64(),
	})
}

// Ledger is the ordered record of one simulation run
type Ledger struct {
	Trades         []Trade
	InitialCapital decimal.Decimal
	FinalCapital   decimal.Decimal
}

// Len returns the number of executed trades
func (l *Ledger) Len() int { return len(l.Trades) }

// TotalProfitLoss sums the ledger's P&L
func (l *Ledger) TotalProfitLoss() decimal.Decimal {
	total := decimal.Zero
	for _, trade := range l.Trades {
		total = total.Add(trade.ProfitLoss)
	}
	return total
}

// Recent returns the last n trades, or all of them when n is not positive
func (l *Ledger) Recent(n int) []Trade {
	if n <= 0 || n >= len(l.Trades) {
		return l.Trades
	}
	return l.Trades[len(l.Trades)-n:]
}

// Simulate replays predictions against the table's realized prices. Each row
// predicted 1 buys as many whole shares as the running capital allows at the
// open and sells them at the close; rows predicted 0, and rows where capital
// cannot cover one share, leave capital untouched and record nothing.
func Simulate(table *features.Table, predictions []int, confidences []float64, initialCapital float64) (*Ledger, error) {
	if table == nil {
		return nil, models.NewValidationError("feature table is required")
	}
	if len(predictions) != table.Len() || len(confidences) != table.Len() {
		return nil, models.NewValidationError(
			"predictions (%d) and confidences (%d) must align with %d table rows",
			len(predictions), len(confidences), table.Len())
	}
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) || initialCapital <= 0 {
		return nil, models.NewValidationError("initial capital must be a positive amount, got %v", initialCapital)
	}
	for i, p := range predictions {
		if p != 0 && p != 1 {
			return nil, models.NewValidationError("prediction %d must be 0 or 1, got %d", i, p)
		}
	}

	state := newSimulationState(decimal.NewFromFloat(initialCapital))
	for i, row := range table.Rows {
		if predictions[i] != 1 {
			continue
		}
		if indicators.Undefined(row.Open) || indicators.Undefined(row.Close) {
			return nil, models.NewValidationError("row %d (%s) has undefined prices", i, row.Date.Format("2006-01-02"))
		}
		if row.Open <= 0 {
			continue
		}
		entry := decimal.NewFromFloat(row.Open)
		exit := decimal.NewFromFloat(row.Close)

		shares, _ := state.capital.QuoRem(entry, 0)
		if !shares.IsPositive() {
			continue
		}

		pnl := exit.Sub(entry).Mul(shares)
		state.apply(Trade{
			Date:          row.Date,
			Prediction:    predictions[i],
			Actual:        row.Target,
			Confidence:    confidences[i],
			EntryPrice:    row.Open,
			ExitPrice:     row.Close,
			Shares:        shares.IntPart(),
			ProfitLoss:    pnl,
			ProfitLossPct: (row.Close - row.Open) / row.Open * 100,
			WasCorrect:    predictions[i] == row.Target,
		})
	}

	return state.ledger(), nil
}
