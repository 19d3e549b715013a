package usecase

import (
	"time"

	"EvoTrader/internal/domain/models"
)

// Ledger owns every paper trade and the per-generation realized stats.
// Open trades are evaluated against each tick for stop/target hits; a
// trade closes exactly once. Access is serialized by the engine.
type Ledger struct {
	nextID int64
	trades []*models.Trade
	open   []*models.Trade
	stats  models.GenerationStats
	states map[string]*models.BotState
}

// NewLedger creates a ledger sharing the registry's bot state map so
// closes can book per-bot pnl.
func NewLedger(states map[string]*models.BotState) *Ledger {
	return &Ledger{states: states}
}

// Open books a new open trade. The caller provides an already-clamped
// positive size.
func (l *Ledger) Open(symbol, side string, entry, stop, target, size float64, mode string, meta models.TradeMeta) *models.Trade {
	if size <= 0 {
		return nil
	}
	l.nextID++
	t := &models.Trade{
		ID:     l.nextID,
		Ts:     time.Now().Unix(),
		Symbol: symbol,
		Side:   side,
		Entry:  entry,
		Stop:   stop,
		Target: target,
		Size:   size,
		Status: models.TradeOpen,
		Meta:   meta,
		Mode:   mode,
	}
	l.trades = append(l.trades, t)
	l.open = append(l.open, t)
	return t
}

// EvaluateTick checks every open trade on the symbol against the price
// and closes those whose stop or target was crossed. Stops win when both
// levels are crossed by the same tick. Returns the trades closed.
func (l *Ledger) EvaluateTick(symbol string, price float64) []*models.Trade {
	if len(l.open) == 0 {
		return nil
	}
	var closed []*models.Trade
	snapshot := make([]*models.Trade, len(l.open))
	copy(snapshot, l.open)
	for _, t := range snapshot {
		if t.Symbol != symbol || t.Status != models.TradeOpen {
			continue
		}
		switch t.Side {
		case models.SideBuy:
			if price <= t.Stop {
				l.close(t, t.Stop, models.ExitStop)
				closed = append(closed, t)
			} else if price >= t.Target {
				l.close(t, t.Target, models.ExitTarget)
				closed = append(closed, t)
			}
		case models.SideSell:
			if price >= t.Stop {
				l.close(t, t.Stop, models.ExitStop)
				closed = append(closed, t)
			} else if price <= t.Target {
				l.close(t, t.Target, models.ExitTarget)
				closed = append(closed, t)
			}
		}
	}
	return closed
}

// close finalizes a trade once. Re-closing is a no-op so pnl and stats
// can never double-count.
func (l *Ledger) close(t *models.Trade, exit float64, reason string) {
	if t.Status == models.TradeClosed {
		return
	}
	t.Status = models.TradeClosed
	t.Exit = exit
	t.ExitReason = reason
	t.ExitTs = time.Now().Unix()

	dir := 1.0
	if t.Side == models.SideSell {
		dir = -1.0
	}
	tickValue := t.Meta.TickValue
	if tickValue == 0 {
		tickValue = 1.0
	}
	t.Pnl = (exit - t.Entry) * dir * t.Size * tickValue

	l.stats.Realized += t.Pnl
	if l.stats.Realized < l.stats.MinEquity {
		l.stats.MinEquity = l.stats.Realized
	}

	// Win/loss counters track bot-attributed trades only; engine trades
	// still move realized pnl and the equity trough.
	if name := t.Meta.Bot; name != "" {
		state, ok := l.states[name]
		if !ok {
			state = &models.BotState{}
			l.states[name] = state
		}
		state.RealizedPnl += t.Pnl
		state.LastTradeTs = t.ExitTs
		if t.Pnl >= 0 {
			state.Wins++
			l.stats.Wins++
		} else {
			state.Losses++
			l.stats.Losses++
		}
	}

	for i, o := range l.open {
		if o == t {
			l.open = append(l.open[:i], l.open[i+1:]...)
			break
		}
	}
}

// Stats returns a copy of the current generation stats.
func (l *Ledger) Stats() models.GenerationStats { return l.stats }

// Halted reports whether realized losses for this generation breached
// the cap. A non-positive cap never halts.
func (l *Ledger) Halted(riskCap float64) bool {
	if riskCap <= 0 {
		return false
	}
	return l.stats.Realized <= -riskCap
}

// ResetGeneration zeroes the stats for a new generation.
func (l *Ledger) ResetGeneration(generation int) {
	l.stats = models.GenerationStats{Generation: generation}
}

// OpenTrades returns copies of currently open trades.
func (l *Ledger) OpenTrades() []models.Trade {
	out := make([]models.Trade, 0, len(l.open))
	for _, t := range l.open {
		out = append(out, *t)
	}
	return out
}

// Recent returns copies of the most recent trades, oldest first,
// bounded by limit.
func (l *Ledger) Recent(limit int) []models.Trade {
	list := l.trades
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]models.Trade, 0, len(list))
	for _, t := range list {
		out = append(out, *t)
	}
	return out
}

// Count returns the total number of trades ever opened.
func (l *Ledger) Count() int { return len(l.trades) }
