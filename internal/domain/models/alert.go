package models

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Alert is one strategy confirmation event. Immutable once recorded.
type Alert struct {
	Strategy string         `json:"strategy"`
	Symbol   string         `json:"symbol"`
	Side     string         `json:"side"`
	Price    float64        `json:"price"`
	Ts       int64          `json:"ts"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// SignalEntry is one decision outcome kept for observability only.
// It never drives execution logic.
type SignalEntry struct {
	Ts         int64   `json:"ts"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Price      float64 `json:"price"`
	Consensus  float64 `json:"consensus"`
	Confidence float64 `json:"confidence"`
	Genome     int     `json:"genome"`
	Mode       string  `json:"mode"`
	Status     string  `json:"status"`
	Stop       float64 `json:"sl,omitempty"`
	Target     float64 `json:"tp,omitempty"`
	TradeID    int64   `json:"trade_id,omitempty"`
	BotTrades  int     `json:"bot_trades,omitempty"`
	LiveStatus string  `json:"live_status,omitempty"`
}

// Signal statuses recorded in the signal log.
const (
	SignalHalted     = "halted"
	SignalFiltered   = "filtered"
	SignalIgnored    = "ignored"
	SignalOnly       = "signal_only"
	SignalExecuted   = "executed"
	SignalDispatched = "dispatched"
)
