package models

import "time"

// PriceBar is one daily OHLCV row of a stock series
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// RequiredColumns lists the raw columns every price series must provide
var RequiredColumns = []string{"date", "open", "high", "low", "close", "volume"}
