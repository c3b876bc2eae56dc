package backtest

import "github.com/shopspring/decimal"

// simulationState carries capital forward between rows of one run
type simulationState struct {
	initial decimal.Decimal
	capital decimal.Decimal
	trades  []Trade
}

func newSimulationState(initial decimal.Decimal) *simulationState {
	return &simulationState{
		initial: initial,
		capital: initial,
		trades:  []Trade{},
	}
}

// apply books a trade's P&L and stamps the running capital on it
func (s *simulationState) apply(trade Trade) {
	s.capital = s.capital.Add(trade.ProfitLoss)
	trade.Capital = s.capital
	s.trades = append(s.trades, trade)
}

func (s *simulationState) ledger() *Ledger {
	return &Ledger{
		Trades:         s.trades,
		InitialCapital: s.initial,
		FinalCapital:   s.capital,
	}
}
