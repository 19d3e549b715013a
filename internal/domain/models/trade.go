package models

// Trade statuses.
const (
	TradeOpen   = "open"
	TradeClosed = "closed"
)

// Exit reasons for closed trades.
const (
	ExitStop   = "stop"
	ExitTarget = "target"
)

// TradeMeta carries the known decision context for a trade.
// Extra is the single escape hatch for unanticipated extension data.
type TradeMeta struct {
	Source        string         `json:"source"`
	Bot           string         `json:"bot,omitempty"`
	Genome        int            `json:"genome"`
	Consensus     float64        `json:"consensus"`
	Confidence    float64        `json:"confidence"`
	IsScalp       bool           `json:"is_scalp"`
	Strategy      string         `json:"strategy,omitempty"`
	ExecutionMode string         `json:"execution_mode"`
	TickValue     float64        `json:"tick_value,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// Trade is one risk-sized paper position. Created open, closed exactly
// once by the ledger when price crosses stop or target.
type Trade struct {
	ID         int64     `json:"id"`
	Ts         int64     `json:"ts"`
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	Entry      float64   `json:"entry"`
	Stop       float64   `json:"sl"`
	Target     float64   `json:"tp"`
	Size       float64   `json:"size"`
	Status     string    `json:"status"`
	Meta       TradeMeta `json:"meta"`
	Mode       string    `json:"mode"`
	Exit       float64   `json:"exit,omitempty"`
	ExitReason string    `json:"exit_reason,omitempty"`
	ExitTs     int64     `json:"exit_ts,omitempty"`
	Pnl        float64   `json:"pnl,omitempty"`
}

// GenerationStats aggregates realized outcomes for the current generation.
// MinEquity tracks the running trough of realized pnl for drawdown visibility.
type GenerationStats struct {
	Generation int     `json:"generation"`
	Realized   float64 `json:"realized"`
	MinEquity  float64 `json:"min_equity"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
}
