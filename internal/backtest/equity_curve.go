package backtest

import (
	"bytes"
	"strconv"
	"time"
)

// EquityPoint is the capital after one trade
type EquityPoint struct {
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
	TradePnL float64   `json:"trade_pnl"`
}

// EquityCurve is the capital path of a ledger, starting from initial capital
type EquityCurve []EquityPoint

// NewEquityCurve builds the capital path of a ledger. The first point carries
// the initial capital on the first trade's date.
func NewEquityCurve(ledger *Ledger) EquityCurve {
	if ledger == nil {
		return EquityCurve{}
	}
	initial := ledger.InitialCapital.InexactFloat64()
	start := time.Time{}
	if ledger.Len() > 0 {
		start = ledger.Trades[0].Date
	}

	curve := EquityCurve{{Time: start, Value: initial}}
	peak := initial
	for _, trade := range ledger.Trades {
		value := trade.Capital.InexactFloat64()
		if value > peak {
			peak = value
		}
		drawdown := 0.0
		if peak > 0 && value < peak {
			drawdown = (peak - value) / peak
		}
		curve = append(curve, EquityPoint{
			Time:     trade.Date,
			Value:    value,
			Drawdown: drawdown,
			TradePnL: trade.ProfitLoss.InexactFloat64(),
		})
	}
	return curve
}

// GetReturns calculates per-trade capital returns from the curve
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i := 1; i < len(e); i++ {
		prev := e[i-1].Value
		curr := e[i].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// MaxCapitalDrawdown is the deepest peak-to-trough fall of capital, as a fraction
func (e EquityCurve) MaxCapitalDrawdown() float64 {
	maxDD := 0.0
	for _, p := range e {
		if p.Drawdown > maxDD {
			maxDD = p.Drawdown
		}
	}
	return maxDD
}

// ToCSV exports the equity curve to a CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("date,capital,drawdown,trade_pnl\n")
	for _, point := range e {
		buf.WriteString(point.Time.Format("2006-01-02"))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Value))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Drawdown))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.TradePnL))
		buf.WriteString("\n")
	}
	return buf.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
