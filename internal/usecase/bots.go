package usecase

import (
	"fmt"
	"sort"

	"EvoTrader/internal/domain/models"
)

// Registry holds the named trading agents layered on the engine decision
// and their running state. Access is serialized by the engine.
type Registry struct {
	bots   map[string]*models.BotConfig
	states map[string]*models.BotState
}

// NewRegistry creates an empty bot registry around a shared state map.
func NewRegistry(states map[string]*models.BotState) *Registry {
	return &Registry{
		bots:   make(map[string]*models.BotConfig),
		states: states,
	}
}

// Register inserts or replaces a bot configuration by name and ensures
// its running state exists. The upsert is idempotent.
func (r *Registry) Register(cfg models.BotConfig) models.BotConfig {
	stored := cfg
	r.bots[cfg.Name] = &stored
	if _, ok := r.states[cfg.Name]; !ok {
		r.states[cfg.Name] = &models.BotState{Trades: []int64{}}
	}
	return stored
}

// Toggle flips a bot's active flag. Unknown names are a client error and
// mutate nothing.
func (r *Registry) Toggle(name string, active bool) error {
	bot, ok := r.bots[name]
	if !ok {
		return fmt.Errorf("bot %q not found", name)
	}
	bot.Active = active
	return nil
}

// Get returns the config for a name.
func (r *Registry) Get(name string) (models.BotConfig, bool) {
	bot, ok := r.bots[name]
	if !ok {
		return models.BotConfig{}, false
	}
	return *bot, true
}

// Names returns registered bot names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.bots))
	for name := range r.bots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Views pairs each config with its state for read snapshots.
func (r *Registry) Views() []models.BotView {
	views := make([]models.BotView, 0, len(r.bots))
	for _, name := range r.Names() {
		view := models.BotView{BotConfig: *r.bots[name]}
		if state := r.states[name]; state != nil {
			view.State = *state
		}
		views = append(views, view)
	}
	return views
}

// Configs returns a name-keyed copy of all bot configs.
func (r *Registry) Configs() map[string]models.BotConfig {
	out := make(map[string]models.BotConfig, len(r.bots))
	for name, bot := range r.bots {
		out[name] = *bot
	}
	return out
}

// RecordTrade attaches a freshly opened trade to the bot's state.
func (r *Registry) RecordTrade(name string, t *models.Trade) {
	state, ok := r.states[name]
	if !ok {
		state = &models.BotState{}
		r.states[name] = state
	}
	state.Trades = append(state.Trades, t.ID)
	state.LastTradeTs = t.Ts
}

// PositionSize converts a bot's capital, risk fraction, and leverage plus
// the stop distance into a position size. A zero stop distance fails
// closed; sizes below the bot minimum are zeroed.
func PositionSize(bot models.BotConfig, entry, stop float64) float64 {
	perUnitRisk := entry - stop
	if perUnitRisk < 0 {
		perUnitRisk = -perUnitRisk
	}
	if perUnitRisk <= 0 {
		return 0
	}
	size := bot.Capital * bot.RiskFraction / perUnitRisk
	size *= bot.Leverage
	if size > bot.MaxSize {
		size = bot.MaxSize
	}
	if size < bot.MinSize {
		return 0
	}
	return size
}

// Confirms runs the bot's secondary confirmation rule, if any. A rule
// that cannot evaluate (short candle history) rejects the trade rather
// than defaulting to accept.
func (r *Registry) Confirms(bot models.BotConfig, side string, candles []models.Candle) bool {
	switch bot.Algo {
	case models.AlgoSMAConfluence:
		return smaConfluence(side, candles)
	default:
		return true
	}
}

const (
	smaFastWindow = 10
	smaSlowWindow = 40
)

// smaConfluence requires a fast/slow moving-average alignment with the
// trade direction. Fails closed below the slow window.
func smaConfluence(side string, candles []models.Candle) bool {
	if len(candles) < smaSlowWindow {
		return false
	}
	fast := smaClose(candles, smaFastWindow)
	slow := smaClose(candles, smaSlowWindow)
	if side == models.SideBuy {
		return fast > slow
	}
	return fast < slow
}

func smaClose(candles []models.Candle, window int) float64 {
	sum := 0.0
	for _, c := range candles[len(candles)-window:] {
		sum += c.Close
	}
	return sum / float64(window)
}
