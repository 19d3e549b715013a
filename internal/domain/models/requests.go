package models

// AlertRequest is the validated body of POST /alert.
type AlertRequest struct {
	Strategy string         `json:"strategy" validate:"required"`
	Symbol   string         `json:"symbol" validate:"required"`
	Side     string         `json:"side" validate:"required,oneof=buy sell"`
	Price    float64        `json:"price" validate:"required,gt=0"`
	Ts       int64          `json:"ts" validate:"omitempty,gte=0"`
	Meta     map[string]any `json:"meta"`
}

// TickRequest is the validated body of POST /tick.
type TickRequest struct {
	Symbol string  `json:"symbol" validate:"required"`
	Price  float64 `json:"price" validate:"required,gt=0"`
	Size   float64 `json:"size" default:"1" validate:"gte=0"`
	Ts     int64   `json:"ts" validate:"omitempty,gte=0"`
}

// BotUpsertRequest is the validated body of POST /bots.
type BotUpsertRequest struct {
	Name         string  `json:"name" validate:"required,bot_name"`
	Symbol       string  `json:"symbol" default:"SYMBOL1"`
	Capital      float64 `json:"capital" default:"100000" validate:"gt=0"`
	RiskFraction float64 `json:"risk_fraction" default:"0.01" validate:"gt=0,lte=1"`
	MaxSize      float64 `json:"max_size" default:"10" validate:"gt=0"`
	Leverage     float64 `json:"leverage" default:"1" validate:"gt=0"`
	MinSize      float64 `json:"min_size" default:"0.01" validate:"gt=0"`
	Mode         string  `json:"mode" default:"auto" validate:"oneof=auto scalp_only swing_only"`
	SideBias     string  `json:"side_bias" default:"both" validate:"oneof=both long short"`
	Active       *bool   `json:"active"`
	Algo         string  `json:"algo" validate:"omitempty,oneof=sma_confluence"`
	Description  string  `json:"description"`
}

// Config converts a validated upsert request into a bot configuration.
func (r *BotUpsertRequest) Config() BotConfig {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return BotConfig{
		Name:         r.Name,
		Symbol:       r.Symbol,
		Capital:      r.Capital,
		RiskFraction: r.RiskFraction,
		MaxSize:      r.MaxSize,
		Leverage:     r.Leverage,
		MinSize:      r.MinSize,
		Mode:         r.Mode,
		SideBias:     r.SideBias,
		Active:       active,
		Algo:         r.Algo,
		Description:  r.Description,
	}
}

// BotToggleRequest is the validated body of POST /bots/:name/toggle.
type BotToggleRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// Decision holds an action and its confidence score.
type Decision struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
}

// AlertResult is the outcome of one alert evaluation.
type AlertResult struct {
	Status        string          `json:"status"`
	Halted        bool            `json:"halted,omitempty"`
	Consensus     float64         `json:"consensus"`
	BestGenomeIdx int             `json:"best_genome_idx"`
	BestDecision  Decision        `json:"best_decision"`
	ExecutionMode string          `json:"execution_mode,omitempty"`
	EngineTrade   *Trade          `json:"engine_trade,omitempty"`
	BotTrades     []*Trade        `json:"bot_trades,omitempty"`
	LiveOrder     *DispatchResult `json:"live_order,omitempty"`
}

// Alert statuses returned to the caller.
const (
	StatusHalted        = "halted"
	StatusNoAction      = "no_action"
	StatusSignalOnly    = "signal_only"
	StatusExecutedPaper = "executed_paper"
	StatusExecutedLive  = "executed_live"
)

// OrderPayload is the body forwarded to the external order endpoint.
type OrderPayload struct {
	AccountID   string    `json:"accountId"`
	ContractID  string    `json:"contractId"`
	Side        string    `json:"side"`
	Size        float64   `json:"size"`
	Type        string    `json:"type"`
	TimeInForce string    `json:"timeInForce"`
	Meta        TradeMeta `json:"meta"`
	StopLoss    *float64  `json:"stopLoss,omitempty"`
	TakeProfit  *float64  `json:"takeProfit,omitempty"`
	Price       float64   `json:"price"`
}

// DispatchResult classifies the external endpoint's response.
type DispatchResult struct {
	Status string `json:"status"`
	Code   int    `json:"code,omitempty"`
	Body   any    `json:"body,omitempty"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Dispatch statuses.
const (
	DispatchOK      = "ok"
	DispatchError   = "error"
	DispatchSkipped = "skipped"
)

// StatusSnapshot is the GET /status response payload.
type StatusSnapshot struct {
	Settings       EngineSettings       `json:"settings"`
	Stats          GenerationStats      `json:"stats"`
	Halted         bool                 `json:"halted"`
	OpenTrades     []Trade              `json:"open_trades"`
	PopulationSize int                  `json:"population_size"`
	Generation     int                  `json:"generation"`
	BestScore      float64              `json:"best_score"`
	PaperTrades    int                  `json:"paper_trades"`
	Bots           map[string]BotConfig `json:"bots"`
}

// SettingsSnapshot is the GET /settings response payload.
type SettingsSnapshot struct {
	Settings   EngineSettings  `json:"settings"`
	Stats      GenerationStats `json:"stats"`
	Halted     bool            `json:"halted"`
	OpenTrades []Trade         `json:"open_trades"`
}
