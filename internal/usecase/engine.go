package usecase

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/domain/repository"
	"EvoTrader/internal/services/features"
	"EvoTrader/internal/services/genetics"
	applogger "EvoTrader/pkg/logger"
)

// EngineConfig holds the engine tuning knobs.
type EngineConfig struct {
	DefaultSymbol     string
	CandleSeconds     int64
	CandleCapacity    int
	PopulationSize    int
	Elites            int
	EvolveInterval    time.Duration
	AlertHistory      int
	VoteWindow        int
	SignalLogCapacity int
	MinConfirmScore   float64
	Seed              int64
}

const (
	// Candle lookback for feature extraction and algo confirmation.
	featureCandles = 120
	algoCandles    = 120

	// A single very confident genome can override a weak consensus.
	confidenceOverride = 0.85
)

// Outcome is one completed event handed to background sinks. Exactly one
// of Trade or Signal is set.
type Outcome struct {
	Trade  *models.Trade
	Signal *models.SignalEntry
}

// Engine is the evolutionary confirmation core. One mutex guards all
// mutable state; the only unlock inside an operation happens around the
// live order dispatch so a slow endpoint cannot stall tick processing.
type Engine struct {
	mu sync.Mutex

	cfg        EngineConfig
	logger     *applogger.Logger
	metrics    repository.Metrics
	dispatcher repository.Dispatcher
	rng        *rand.Rand

	settings   models.EngineSettings
	candles    *CandleBook
	alerts     []models.Alert // most recent first
	pop        genetics.Population
	generation int
	ledger     *Ledger
	bots       *Registry
	signals    []models.SignalEntry // oldest first

	outcomes chan Outcome
}

// NewEngine seeds the population, registers the default bots, and wires
// the supporting stores.
func NewEngine(cfg EngineConfig, settings models.EngineSettings, l *applogger.Logger, m repository.Metrics, d repository.Dispatcher) *Engine {
	if cfg.DefaultSymbol == "" {
		cfg.DefaultSymbol = "SYMBOL1"
	}
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = 14
	}
	if cfg.Elites <= 0 {
		cfg.Elites = 4
	}
	if cfg.EvolveInterval <= 0 {
		cfg.EvolveInterval = 30 * time.Second
	}
	if cfg.AlertHistory <= 0 {
		cfg.AlertHistory = 2000
	}
	if cfg.VoteWindow <= 0 {
		cfg.VoteWindow = 200
	}
	if cfg.SignalLogCapacity <= 0 {
		cfg.SignalLogCapacity = 500
	}
	if cfg.MinConfirmScore <= 0 {
		cfg.MinConfirmScore = 0.6
	}
	if l == nil {
		l = applogger.Nop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	states := make(map[string]*models.BotState)

	e := &Engine{
		cfg:        cfg,
		logger:     l,
		metrics:    m,
		dispatcher: d,
		rng:        rng,
		settings:   settings,
		candles:    NewCandleBook(cfg.CandleSeconds, cfg.CandleCapacity),
		pop:        genetics.NewPopulation(cfg.PopulationSize, rng),
		ledger:     NewLedger(states),
		bots:       NewRegistry(states),
		outcomes:   make(chan Outcome, 256),
	}

	for _, bot := range defaultBots(cfg.DefaultSymbol) {
		e.bots.Register(bot)
	}

	return e
}

func defaultBots(symbol string) []models.BotConfig {
	return []models.BotConfig{
		{
			Name:         "momentum_scalper",
			Symbol:       symbol,
			Capital:      60_000,
			RiskFraction: 0.0075,
			MaxSize:      6.0,
			Leverage:     1.0,
			MinSize:      0.01,
			Mode:         models.BotModeScalpOnly,
			SideBias:     models.BiasBoth,
			Active:       true,
			Description:  "Takes only scalp-qualified confirmations with 0.75% risk.",
		},
		{
			Name:         "swing_confirmer",
			Symbol:       symbol,
			Capital:      120_000,
			RiskFraction: 0.0125,
			MaxSize:      3.5,
			Leverage:     1.0,
			MinSize:      0.01,
			Mode:         models.BotModeSwingOnly,
			SideBias:     models.BiasBoth,
			Active:       true,
			Description:  "Waits for higher-confidence (non-scalp) confirmations.",
		},
	}
}

// Outcomes exposes the background sink channel.
func (e *Engine) Outcomes() <-chan Outcome {
	return e.outcomes
}

// HandleTick folds one price observation into the candle book and
// settles any open trades the price crosses.
func (e *Engine) HandleTick(req *models.TickRequest) []*models.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.candles.AddTick(req.Symbol, req.Price, req.Size, req.Ts)
	closed := e.ledger.EvaluateTick(req.Symbol, req.Price)

	if e.metrics != nil {
		e.metrics.RecordTick(req.Symbol, req.Price)
		for _, t := range closed {
			e.metrics.RecordTradeClosed(t.ExitReason)
		}
		e.metrics.SetRealized(e.ledger.Stats().Realized)
	}
	for _, t := range closed {
		e.publish(Outcome{Trade: t})
		e.logger.Info("trade closed",
			applogger.Int64("id", t.ID),
			applogger.String("symbol", t.Symbol),
			applogger.String("reason", t.ExitReason),
			applogger.Float64("pnl", t.Pnl),
		)
	}

	return closed
}

// HandleAlert runs one confirmation round: vote, score, gate, size,
// execute, and record. The ctx bounds only the live dispatch leg.
func (e *Engine) HandleAlert(ctx context.Context, req *models.AlertRequest) *models.AlertResult {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if e.metrics != nil {
			e.metrics.RecordLatency("alert", time.Since(start).Seconds())
		}
	}()

	alert := models.Alert{
		Strategy: req.Strategy,
		Symbol:   req.Symbol,
		Side:     req.Side,
		Price:    req.Price,
		Ts:       req.Ts,
		Meta:     req.Meta,
	}
	if alert.Ts == 0 {
		alert.Ts = time.Now().Unix()
	}
	e.pushAlert(alert)

	feat := features.Extract(e.candles.Recent(alert.Symbol, featureCandles), alert)
	recent := e.alerts
	if len(recent) > e.cfg.VoteWindow {
		recent = recent[:e.cfg.VoteWindow]
	}

	decisions := make([]models.Decision, e.pop.Len())
	for i, g := range e.pop.Genomes {
		action, confidence := genetics.Vote(g, feat, recent)
		decisions[i] = models.Decision{Action: action, Confidence: confidence}
		e.pop.RecordFitness(i, genetics.FitnessProxy(action, confidence, feat.ATR))
	}

	bestIdx, bestScore := e.pop.Best()
	best := decisions[bestIdx]
	active := 0
	for _, d := range decisions {
		if d.Action != genetics.DecisionIgnore {
			active++
		}
	}
	consensus := float64(active) / float64(e.pop.Len())

	if e.metrics != nil {
		e.metrics.SetBestScore(bestScore)
	}

	side := models.SideBuy
	if feat.Side < 0 {
		side = models.SideSell
	}
	entry := models.SignalEntry{
		Ts:         alert.Ts,
		Symbol:     alert.Symbol,
		Side:       side,
		Price:      alert.Price,
		Consensus:  consensus,
		Confidence: best.Confidence,
		Genome:     bestIdx,
		Mode:       e.settings.ExecutionMode,
	}

	if e.halted() {
		entry.Status = models.SignalHalted
		e.recordSignal(entry)
		e.recordAlertMetric(models.StatusHalted)
		return &models.AlertResult{
			Status:        models.StatusHalted,
			Halted:        true,
			Consensus:     consensus,
			BestGenomeIdx: bestIdx,
			BestDecision:  best,
		}
	}

	if consensus < e.cfg.MinConfirmScore && best.Confidence < confidenceOverride {
		entry.Status = models.SignalFiltered
		e.recordSignal(entry)
		e.recordAlertMetric(models.StatusNoAction)
		return &models.AlertResult{
			Status:        models.StatusNoAction,
			Consensus:     consensus,
			BestGenomeIdx: bestIdx,
			BestDecision:  best,
		}
	}

	if best.Action == genetics.DecisionIgnore {
		entry.Status = models.SignalIgnored
		e.recordSignal(entry)
		e.recordAlertMetric(models.StatusNoAction)
		return &models.AlertResult{
			Status:        models.StatusNoAction,
			Consensus:     consensus,
			BestGenomeIdx: bestIdx,
			BestDecision:  best,
		}
	}

	bestGenome := e.pop.Genomes[bestIdx]
	isScalp := best.Action == genetics.DecisionScalp || bestGenome.IsScalp()
	stop, target := stopTarget(bestGenome, side, alert.Price, feat.ATR, isScalp)
	entry.Stop = stop
	entry.Target = target

	meta := models.TradeMeta{
		Source:        "engine",
		Genome:        bestIdx,
		Consensus:     consensus,
		Confidence:    best.Confidence,
		IsScalp:       isScalp,
		Strategy:      alert.Strategy,
		ExecutionMode: e.settings.ExecutionMode,
	}

	if e.settings.ExecutionMode == models.ModeAlerts {
		entry.Status = models.SignalOnly
		e.recordSignal(entry)
		e.recordAlertMetric(models.StatusSignalOnly)
		return &models.AlertResult{
			Status:        models.StatusSignalOnly,
			Consensus:     consensus,
			BestGenomeIdx: bestIdx,
			BestDecision:  best,
			ExecutionMode: e.settings.ExecutionMode,
		}
	}

	engineSize := e.settings.ClampContracts(float64(e.settings.MinContracts))
	engineTrade := e.ledger.Open(alert.Symbol, side, alert.Price, stop, target, engineSize, e.settings.ExecutionMode, meta)
	if engineTrade != nil && e.metrics != nil {
		e.metrics.RecordTradeOpened("engine")
	}

	botTrades := e.executeForBots(alert.Symbol, side, alert.Price, stop, target, meta)

	var live *models.DispatchResult
	if e.settings.ExecutionMode == models.ModeLive {
		live = e.dispatchLive(ctx, side, alert.Price, stop, target, engineTrade, meta)
	}

	entry.Status = models.SignalExecuted
	if engineTrade != nil {
		entry.TradeID = engineTrade.ID
	}
	entry.BotTrades = len(botTrades)
	if live != nil {
		entry.LiveStatus = live.Status
	}
	e.recordSignal(entry)

	status := models.StatusExecutedPaper
	if e.settings.ExecutionMode == models.ModeLive {
		status = models.StatusExecutedLive
	}
	e.recordAlertMetric(status)

	return &models.AlertResult{
		Status:        status,
		Consensus:     consensus,
		BestGenomeIdx: bestIdx,
		BestDecision:  best,
		ExecutionMode: e.settings.ExecutionMode,
		EngineTrade:   engineTrade,
		BotTrades:     botTrades,
		LiveOrder:     live,
	}
}

// stopTarget derives stop and target prices from the winning genome.
// ATR-anchored genomes scale by volatility; the rest use a percent of
// entry. Scalp decisions tighten both legs.
func stopTarget(g genetics.Genome, side string, price, atr float64, isScalp bool) (float64, float64) {
	if atr <= 0 {
		atr = 0.0001
	}

	var stopDist, targetDist float64
	if g.UseATRStop {
		stopDist = maxFloat(1e-6, g.StopMult*atr)
		targetDist = maxFloat(1e-6, g.TargetMult*atr)
	} else {
		stopDist = maxFloat(1e-6, price*(g.StopMult/100.0))
		targetDist = maxFloat(1e-6, price*(g.TargetMult/100.0))
	}

	if isScalp {
		stopDist *= 0.5
		targetDist *= 0.6
	}

	if side == models.SideBuy {
		return price - stopDist, price + targetDist
	}
	return price + stopDist, price - targetDist
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// executeForBots opens one paper trade per bot whose filters pass.
// A halt mid-iteration stops the remaining bots.
func (e *Engine) executeForBots(symbol, side string, price, stop, target float64, meta models.TradeMeta) []*models.Trade {
	var executed []*models.Trade
	for _, name := range e.bots.Names() {
		bot, ok := e.bots.Get(name)
		if !ok || !bot.Active {
			continue
		}
		if bot.Symbol != symbol {
			continue
		}
		if bot.Mode == models.BotModeScalpOnly && !meta.IsScalp {
			continue
		}
		if bot.Mode == models.BotModeSwingOnly && meta.IsScalp {
			continue
		}
		if bot.SideBias == models.BiasLong && side != models.SideBuy {
			continue
		}
		if bot.SideBias == models.BiasShort && side != models.SideSell {
			continue
		}
		if e.halted() {
			break
		}
		if !e.bots.Confirms(bot, side, e.candles.Recent(symbol, algoCandles)) {
			continue
		}
		size := e.settings.ClampContracts(PositionSize(bot, price, stop))
		if size <= 0 {
			continue
		}

		botMeta := meta
		botMeta.Source = "bot"
		botMeta.Bot = name
		trade := e.ledger.Open(symbol, side, price, stop, target, size, e.settings.ExecutionMode, botMeta)
		if trade == nil {
			continue
		}
		e.bots.RecordTrade(name, trade)
		if e.metrics != nil {
			e.metrics.RecordTradeOpened("bot")
		}
		executed = append(executed, trade)
	}
	return executed
}

// dispatchLive forwards the engine trade to the configured endpoint.
// The engine lock is released for the duration of the network call.
func (e *Engine) dispatchLive(ctx context.Context, side string, price, stop, target float64, engineTrade *models.Trade, meta models.TradeMeta) *models.DispatchResult {
	if e.settings.LiveAccountID == "" || e.settings.LiveContractID == "" || engineTrade == nil {
		return &models.DispatchResult{Status: models.DispatchSkipped, Reason: "missing_account_or_contract"}
	}

	payload := &models.OrderPayload{
		AccountID:   e.settings.LiveAccountID,
		ContractID:  e.settings.LiveContractID,
		Side:        side,
		Size:        engineTrade.Size,
		Type:        "market",
		TimeInForce: e.settings.TimeInForce,
		Meta:        meta,
		StopLoss:    &stop,
		TakeProfit:  &target,
		Price:       price,
	}
	endpoint := e.settings.LiveEndpoint

	e.mu.Unlock()
	result := e.dispatcher.Dispatch(ctx, endpoint, payload)
	e.mu.Lock()

	if result != nil && result.Status == models.DispatchError && e.metrics != nil {
		e.metrics.RecordError("dispatch")
	}
	return result
}

// EvolveOnce breeds the next generation and resets generation stats.
func (e *Engine) EvolveOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pop = e.pop.Evolve(e.rng, e.cfg.Elites)
	e.generation++
	e.ledger.ResetGeneration(e.generation)

	if e.metrics != nil {
		e.metrics.SetGeneration(e.generation)
	}
	e.logger.Info("evolved population",
		applogger.Int("generation", e.generation),
		applogger.Int("size", e.pop.Len()),
	)
}

// Run evolves the population on a fixed interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.EvolveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.EvolveOnce()
		}
	}
}

// PatchSettings applies a settings patch and returns the new snapshot.
func (e *Engine) PatchSettings(patch map[string]any) models.SettingsSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings.Apply(patch)
	return e.settingsSnapshotLocked()
}

// SettingsSnap returns the current settings snapshot.
func (e *Engine) SettingsSnap() models.SettingsSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settingsSnapshotLocked()
}

func (e *Engine) settingsSnapshotLocked() models.SettingsSnapshot {
	return models.SettingsSnapshot{
		Settings:   e.settings,
		Stats:      e.ledger.Stats(),
		Halted:     e.halted(),
		OpenTrades: e.ledger.OpenTrades(),
	}
}

// Status returns the full engine snapshot.
func (e *Engine) Status() models.StatusSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, bestScore := e.pop.Best()
	return models.StatusSnapshot{
		Settings:       e.settings,
		Stats:          e.ledger.Stats(),
		Halted:         e.halted(),
		OpenTrades:     e.ledger.OpenTrades(),
		PopulationSize: e.pop.Len(),
		Generation:     e.generation,
		BestScore:      bestScore,
		PaperTrades:    e.ledger.Count(),
		Bots:           e.bots.Configs(),
	}
}

// PaperTrades returns up to limit most recent trades.
func (e *Engine) PaperTrades(limit int) []models.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Recent(limit)
}

// Bots returns all bot configurations with their state.
func (e *Engine) Bots() []models.BotView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bots.Views()
}

// UpsertBot registers or replaces a bot configuration.
func (e *Engine) UpsertBot(cfg models.BotConfig) models.BotConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bots.Register(cfg)
}

// ToggleBot flips a bot's active flag.
func (e *Engine) ToggleBot(name string, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bots.Toggle(name, active)
}

// Signals returns up to limit most recent signal entries, newest first.
func (e *Engine) Signals(limit int) []models.SignalEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.signals)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.SignalEntry, 0, n)
	for i := len(e.signals) - 1; i >= len(e.signals)-n; i-- {
		out = append(out, e.signals[i])
	}
	return out
}

// Generation returns the current generation counter.
func (e *Engine) Generation() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

func (e *Engine) halted() bool {
	return e.ledger.Halted(e.settings.RiskCap)
}

func (e *Engine) pushAlert(a models.Alert) {
	e.alerts = append([]models.Alert{a}, e.alerts...)
	if len(e.alerts) > e.cfg.AlertHistory {
		e.alerts = e.alerts[:e.cfg.AlertHistory]
	}
}

// recordSignal appends to the bounded signal log unless signal logging
// is disabled.
func (e *Engine) recordSignal(entry models.SignalEntry) {
	if !e.settings.ShowSignals {
		return
	}
	if entry.Ts == 0 {
		entry.Ts = time.Now().Unix()
	}
	e.signals = append(e.signals, entry)
	if len(e.signals) > e.cfg.SignalLogCapacity {
		e.signals = e.signals[len(e.signals)-e.cfg.SignalLogCapacity:]
	}
	e.publish(Outcome{Signal: &entry})
}

func (e *Engine) recordAlertMetric(status string) {
	if e.metrics != nil {
		e.metrics.RecordAlert(status)
	}
}

// publish hands an outcome to the sink channel without ever blocking
// the engine lock.
func (e *Engine) publish(o Outcome) {
	select {
	case e.outcomes <- o:
	default:
		if e.metrics != nil {
			e.metrics.RecordError("outcome_overflow")
		}
	}
}
