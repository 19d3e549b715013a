package models

// Candle is one fixed-width OHLCV bucket for a symbol.
// The newest candle stays mutable until a tick lands in a later bucket.
type Candle struct {
	Bucket int64   `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

// Tick is a single validated price update.
type Tick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Size   float64 `json:"size"`
	Ts     int64   `json:"ts"`
}
