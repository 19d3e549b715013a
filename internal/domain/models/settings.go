package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Execution modes.
const (
	ModeAlerts = "alerts"
	ModePaper  = "paper"
	ModeLive   = "live"
)

// EngineSettings is the process-wide engine configuration. It is mutated
// only through Apply, which coerces each field independently: a malformed
// value is dropped and the previous value wins.
type EngineSettings struct {
	ExecutionMode  string  `json:"execution_mode" yaml:"execution_mode"`
	RiskCap        float64 `json:"risk_cap" yaml:"risk_cap"`
	MinContracts   int     `json:"min_contracts" yaml:"min_contracts"`
	MaxContracts   int     `json:"max_contracts" yaml:"max_contracts"`
	ShowSignals    bool    `json:"show_signals" yaml:"show_signals"`
	LiveAccountID  string  `json:"live_account_id" yaml:"live_account_id"`
	LiveContractID string  `json:"live_contract_id" yaml:"live_contract_id"`
	LiveEndpoint   string  `json:"live_endpoint" yaml:"live_endpoint"`
	TimeInForce    string  `json:"time_in_force" yaml:"time_in_force"`
}

// DefaultEngineSettings returns the startup settings.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		ExecutionMode: ModeAlerts,
		RiskCap:       400.0,
		MinContracts:  1,
		MaxContracts:  5,
		ShowSignals:   true,
		LiveEndpoint:  "http://localhost:3001/api/orders",
		TimeInForce:   "Day",
	}
}

// Apply patches settings from an open key/value map. Unknown keys and
// malformed values are ignored. Contract bounds and time-in-force are
// normalized afterwards so the stored state is always consistent.
func (s *EngineSettings) Apply(patch map[string]any) {
	for key, value := range patch {
		switch key {
		case "execution_mode":
			if v, ok := value.(string); ok {
				if v == ModeAlerts || v == ModePaper || v == ModeLive {
					s.ExecutionMode = v
				}
			}
		case "risk_cap":
			if v, ok := toFloat(value); ok {
				s.RiskCap = math.Max(0, v)
			} else if value == nil {
				s.RiskCap = 0
			}
		case "min_contracts":
			if v, ok := toInt(value); ok {
				s.MinContracts = max(0, v)
			}
		case "max_contracts":
			if v, ok := toInt(value); ok {
				s.MaxContracts = max(0, v)
			}
		case "show_signals":
			if v, ok := value.(bool); ok {
				s.ShowSignals = v
			}
		case "live_account_id":
			s.LiveAccountID = toTrimmed(value)
		case "live_contract_id":
			s.LiveContractID = toTrimmed(value)
		case "live_endpoint":
			s.LiveEndpoint = toTrimmed(value)
		case "time_in_force":
			s.TimeInForce = toTrimmed(value)
		}
	}

	if s.MaxContracts < s.MinContracts {
		s.MaxContracts = s.MinContracts
	}
	s.TimeInForce = strings.TrimSpace(s.TimeInForce)
	if s.TimeInForce == "" {
		s.TimeInForce = "Day"
	}
}

// ClampContracts bounds an executed size to [min, max] contracts, with the
// floor raised to at least one contract. Non-positive sizes stay zero.
func (s EngineSettings) ClampContracts(size float64) float64 {
	numeric := math.Abs(size)
	if numeric <= 0 {
		return 0
	}
	floor := float64(max(1, s.MinContracts))
	cap := math.Max(floor, float64(s.MaxContracts))
	return math.Min(math.Max(numeric, floor), cap)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	if f, ok := toFloat(v); ok {
		return int(f), true
	}
	return 0, false
}

func toTrimmed(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
