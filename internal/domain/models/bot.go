package models

// Bot execution modes.
const (
	BotModeAuto      = "auto"
	BotModeScalpOnly = "scalp_only"
	BotModeSwingOnly = "swing_only"
)

// Bot side biases.
const (
	BiasBoth  = "both"
	BiasLong  = "long"
	BiasShort = "short"
)

// Secondary confirmation rules a bot may require before entering.
const (
	AlgoNone          = ""
	AlgoSMAConfluence = "sma_confluence"
)

// BotConfig is one named agent layered on top of the engine decision.
// Replacing a config by name is an idempotent upsert.
type BotConfig struct {
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Capital      float64 `json:"capital"`
	RiskFraction float64 `json:"risk_fraction"`
	MaxSize      float64 `json:"max_size"`
	Leverage     float64 `json:"leverage"`
	MinSize      float64 `json:"min_size"`
	Mode         string  `json:"mode"`
	SideBias     string  `json:"side_bias"`
	Active       bool    `json:"active"`
	Algo         string  `json:"algo,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// BotState holds per-bot running totals. Mutated by the ledger on close
// and by the registry when a trade is registered.
type BotState struct {
	Trades      []int64 `json:"trades"`
	RealizedPnl float64 `json:"realized_pnl"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	LastTradeTs int64   `json:"last_trade_ts,omitempty"`
}

// BotView pairs a config with its running state for read snapshots.
type BotView struct {
	BotConfig
	State BotState `json:"state"`
}
