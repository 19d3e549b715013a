package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyCoercesNumbers(t *testing.T) {
	s := DefaultEngineSettings()
	s.Apply(map[string]any{
		"risk_cap":      "3",
		"min_contracts": "2",
		"max_contracts": 4.0,
	})
	assert.Equal(t, 3.0, s.RiskCap)
	assert.Equal(t, 2, s.MinContracts)
	assert.Equal(t, 4, s.MaxContracts)
}

func TestApplyDropsMalformedValues(t *testing.T) {
	s := DefaultEngineSettings()
	s.Apply(map[string]any{
		"risk_cap":       "not-a-number",
		"execution_mode": "yolo",
		"show_signals":   "yes",
	})
	assert.Equal(t, 400.0, s.RiskCap)
	assert.Equal(t, ModeAlerts, s.ExecutionMode)
	assert.True(t, s.ShowSignals)
}

func TestApplyNilRiskCapDisables(t *testing.T) {
	s := DefaultEngineSettings()
	s.Apply(map[string]any{"risk_cap": nil})
	assert.Equal(t, 0.0, s.RiskCap)
}

func TestApplyNegativeRiskCapFloorsAtZero(t *testing.T) {
	s := DefaultEngineSettings()
	s.Apply(map[string]any{"risk_cap": -50})
	assert.Equal(t, 0.0, s.RiskCap)
}

func TestApplyNormalizesInvertedContracts(t *testing.T) {
	s := DefaultEngineSettings()
	s.Apply(map[string]any{"min_contracts": 6, "max_contracts": 2})
	assert.Equal(t, 6, s.MinContracts)
	assert.Equal(t, 6, s.MaxContracts)
}

func TestApplyBlankTimeInForce(t *testing.T) {
	s := DefaultEngineSettings()
	s.Apply(map[string]any{"time_in_force": "   "})
	assert.Equal(t, "Day", s.TimeInForce)

	s.Apply(map[string]any{"time_in_force": " GTC "})
	assert.Equal(t, "GTC", s.TimeInForce)
}

func TestClampContracts(t *testing.T) {
	s := DefaultEngineSettings()
	s.MinContracts = 2
	s.MaxContracts = 4

	assert.Equal(t, 0.0, s.ClampContracts(0))
	assert.Equal(t, 2.0, s.ClampContracts(1))
	assert.Equal(t, 3.0, s.ClampContracts(3))
	assert.Equal(t, 4.0, s.ClampContracts(10))
	// Negative sizes clamp by magnitude.
	assert.Equal(t, 3.0, s.ClampContracts(-3))
}

func TestClampContractsZeroMinStillFloorsAtOne(t *testing.T) {
	s := DefaultEngineSettings()
	s.MinContracts = 0
	s.MaxContracts = 5
	assert.Equal(t, 1.0, s.ClampContracts(0.4))
}
