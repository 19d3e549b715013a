package usecase

import (
	"context"
	"testing"
	"time"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/services/features"
	"EvoTrader/internal/services/genetics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	calls    int
	endpoint string
	payload  *models.OrderPayload
	result   *models.DispatchResult
}

func (d *stubDispatcher) Dispatch(_ context.Context, endpoint string, payload *models.OrderPayload) *models.DispatchResult {
	d.calls++
	d.endpoint = endpoint
	d.payload = payload
	if d.result != nil {
		return d.result
	}
	return &models.DispatchResult{Status: models.DispatchOK, Code: 200}
}

func newTestEngine(t *testing.T) (*Engine, *stubDispatcher) {
	t.Helper()
	d := &stubDispatcher{}
	e := NewEngine(EngineConfig{
		DefaultSymbol: "ES",
		Seed:          42,
	}, models.DefaultEngineSettings(), nil, nil, d)
	return e, d
}

// buyGenome votes buy on any alert: agreement and volume trivially pass,
// the time window covers the whole day, and the horizon is non-scalp.
func buyGenome() genetics.Genome {
	return genetics.Genome{
		ConfirmCount:        1,
		RequireAgreement:    0.1,
		MinVolumeMult:       0.01,
		MomentumZ:           50,
		UseATRStop:          false,
		StopMult:            1,
		TargetMult:          2,
		ScalpWindow:         600,
		TimeBiasStart:       0,
		TimeBiasEnd:         23,
		ScalpAggressiveness: 0.1,
	}
}

// ignoreGenome scores zero on any alert at hour 12.
func ignoreGenome() genetics.Genome {
	return genetics.Genome{
		ConfirmCount:     10,
		RequireAgreement: 1.0,
		MinVolumeMult:    50,
		MomentumZ:        50,
		StopMult:         1,
		TargetMult:       2,
		ScalpWindow:      600,
		TimeBiasStart:    2,
		TimeBiasEnd:      3,
	}
}

func setAllGenomes(e *Engine, g genetics.Genome) {
	for i := range e.pop.Genomes {
		e.pop.Genomes[i] = g
		e.pop.Scores[i] = 0
	}
}

func noonTs() int64 {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Unix()
}

func buyAlert() *models.AlertRequest {
	return &models.AlertRequest{
		Strategy: "orb_breakout",
		Symbol:   "ES",
		Side:     models.SideBuy,
		Price:    100,
		Ts:       noonTs(),
	}
}

func TestDefaultBotsRegistered(t *testing.T) {
	e, _ := newTestEngine(t)
	views := e.Bots()
	require.Len(t, views, 2)
	assert.Equal(t, "momentum_scalper", views[0].Name)
	assert.Equal(t, "swing_confirmer", views[1].Name)
	assert.Equal(t, models.BotModeScalpOnly, views[0].Mode)
	assert.Equal(t, models.BotModeSwingOnly, views[1].Mode)
}

func TestAlertsModeIsSignalOnly(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())

	res := e.HandleAlert(context.Background(), buyAlert())
	assert.Equal(t, models.StatusSignalOnly, res.Status)
	assert.Nil(t, res.EngineTrade)
	assert.Empty(t, res.BotTrades)
	assert.InDelta(t, 1.0, res.Consensus, 1e-9)

	// No trades were booked.
	assert.Equal(t, 0, e.Status().PaperTrades)

	signals := e.Signals(10)
	require.Len(t, signals, 1)
	assert.Equal(t, models.SignalOnly, signals[0].Status)
	assert.Equal(t, 99.0, signals[0].Stop)
	assert.Equal(t, 102.0, signals[0].Target)
}

func TestPaperModeOpensTrades(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{"execution_mode": "paper"})

	res := e.HandleAlert(context.Background(), buyAlert())
	require.Equal(t, models.StatusExecutedPaper, res.Status)

	require.NotNil(t, res.EngineTrade)
	assert.Equal(t, models.SideBuy, res.EngineTrade.Side)
	// min_contracts=1 clamped into [1,5].
	assert.Equal(t, 1.0, res.EngineTrade.Size)
	assert.Equal(t, 99.0, res.EngineTrade.Stop)
	assert.Equal(t, 102.0, res.EngineTrade.Target)
	assert.Equal(t, "engine", res.EngineTrade.Meta.Source)

	// Non-scalp decision: the scalp-only bot sits out, the swing bot
	// sizes 1500/1 capped at 3.5 contracts.
	require.Len(t, res.BotTrades, 1)
	bt := res.BotTrades[0]
	assert.Equal(t, "swing_confirmer", bt.Meta.Bot)
	assert.Equal(t, "bot", bt.Meta.Source)
	assert.InDelta(t, 3.5, bt.Size, 1e-9)

	assert.Nil(t, res.LiveOrder)
}

func TestFilteredWhenConsensusAndConfidenceLow(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, ignoreGenome())

	res := e.HandleAlert(context.Background(), buyAlert())
	assert.Equal(t, models.StatusNoAction, res.Status)
	assert.Equal(t, 0.0, res.Consensus)

	signals := e.Signals(10)
	require.Len(t, signals, 1)
	assert.Equal(t, models.SignalFiltered, signals[0].Status)
}

func TestIgnoredWhenBestGenomeAbstains(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	// The top-scoring genome votes ignore while the rest carry consensus.
	e.pop.Genomes[0] = ignoreGenome()
	e.pop.Scores[0] = 5

	res := e.HandleAlert(context.Background(), buyAlert())
	assert.Equal(t, models.StatusNoAction, res.Status)
	assert.Equal(t, 0, res.BestGenomeIdx)
	assert.Greater(t, res.Consensus, 0.6)

	signals := e.Signals(10)
	require.Len(t, signals, 1)
	assert.Equal(t, models.SignalIgnored, signals[0].Status)
}

func TestHaltBlocksExecution(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{"execution_mode": "paper"})
	e.ledger.stats.Realized = -400 // at the default risk cap

	res := e.HandleAlert(context.Background(), buyAlert())
	assert.Equal(t, models.StatusHalted, res.Status)
	assert.True(t, res.Halted)
	assert.Nil(t, res.EngineTrade)

	// Evolution resets the generation stats, lifting the halt.
	e.EvolveOnce()
	res = e.HandleAlert(context.Background(), buyAlert())
	assert.NotEqual(t, models.StatusHalted, res.Status)
}

func TestZeroRiskCapNeverHalts(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{"execution_mode": "paper", "risk_cap": 0})
	e.ledger.stats.Realized = -1_000_000

	res := e.HandleAlert(context.Background(), buyAlert())
	assert.Equal(t, models.StatusExecutedPaper, res.Status)
}

func TestLiveModeDispatches(t *testing.T) {
	e, d := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{
		"execution_mode":   "live",
		"live_account_id":  "acct-1",
		"live_contract_id": "CON.F.US.ES",
		"live_endpoint":    "http://orders.local/api/orders",
	})

	res := e.HandleAlert(context.Background(), buyAlert())
	require.Equal(t, models.StatusExecutedLive, res.Status)
	require.NotNil(t, res.LiveOrder)
	assert.Equal(t, models.DispatchOK, res.LiveOrder.Status)

	assert.Equal(t, 1, d.calls)
	assert.Equal(t, "http://orders.local/api/orders", d.endpoint)
	require.NotNil(t, d.payload)
	assert.Equal(t, "acct-1", d.payload.AccountID)
	assert.Equal(t, "market", d.payload.Type)
	assert.Equal(t, "Day", d.payload.TimeInForce)
	require.NotNil(t, d.payload.StopLoss)
	assert.Equal(t, 99.0, *d.payload.StopLoss)
}

func TestLiveModeSkipsWithoutAccount(t *testing.T) {
	e, d := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{"execution_mode": "live"})

	res := e.HandleAlert(context.Background(), buyAlert())
	require.NotNil(t, res.LiveOrder)
	assert.Equal(t, models.DispatchSkipped, res.LiveOrder.Status)
	assert.Equal(t, "missing_account_or_contract", res.LiveOrder.Reason)
	assert.Equal(t, 0, d.calls)
}

func TestTickClosesOpenTrades(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{"execution_mode": "paper"})

	res := e.HandleAlert(context.Background(), buyAlert())
	require.NotNil(t, res.EngineTrade)

	closed := e.HandleTick(&models.TickRequest{Symbol: "ES", Price: 98.5, Size: 1, Ts: noonTs() + 5})
	require.Len(t, closed, 2) // engine trade plus swing bot trade
	for _, tr := range closed {
		assert.Equal(t, models.ExitStop, tr.ExitReason)
	}

	// Closed trades land on the outcome channel.
	select {
	case o := <-e.Outcomes():
		assert.NotNil(t, o.Signal) // the alert's signal entry came first
	default:
		t.Fatal("expected outcomes on the channel")
	}
}

func TestShowSignalsOffSuppressesLog(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{"show_signals": false})

	e.HandleAlert(context.Background(), buyAlert())
	assert.Empty(t, e.Signals(10))
}

func TestSignalsNewestFirstAndBounded(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())

	for i := 0; i < 5; i++ {
		req := buyAlert()
		req.Ts = noonTs() + int64(i)
		e.HandleAlert(context.Background(), req)
	}

	signals := e.Signals(3)
	require.Len(t, signals, 3)
	assert.Equal(t, noonTs()+4, signals[0].Ts)
	assert.Equal(t, noonTs()+2, signals[2].Ts)
}

func TestPatchSettingsCoercion(t *testing.T) {
	e, _ := newTestEngine(t)

	snap := e.PatchSettings(map[string]any{
		"risk_cap":      "250",
		"min_contracts": 3.0,
		"max_contracts": 2,
		"time_in_force": "  ",
		"garbage_key":   true,
	})

	assert.Equal(t, 250.0, snap.Settings.RiskCap)
	assert.Equal(t, 3, snap.Settings.MinContracts)
	// max is pulled up to min when the patch inverts the bounds.
	assert.Equal(t, 3, snap.Settings.MaxContracts)
	assert.Equal(t, "Day", snap.Settings.TimeInForce)
}

func TestEvolveOncePreservesSizeAndBumpsGeneration(t *testing.T) {
	e, _ := newTestEngine(t)
	e.EvolveOnce()
	e.EvolveOnce()

	status := e.Status()
	assert.Equal(t, 2, status.Generation)
	assert.Equal(t, 14, status.PopulationSize)
	assert.Equal(t, 2, status.Stats.Generation)
}

func TestUpsertAndToggleBot(t *testing.T) {
	e, _ := newTestEngine(t)
	e.UpsertBot(models.BotConfig{
		Name: "custom", Symbol: "ES", Capital: 10_000, RiskFraction: 0.01,
		MaxSize: 2, Leverage: 1, MinSize: 0.01,
		Mode: models.BotModeAuto, SideBias: models.BiasLong, Active: true,
	})
	require.Len(t, e.Bots(), 3)

	require.NoError(t, e.ToggleBot("custom", false))
	assert.Error(t, e.ToggleBot("missing", true))
}

func TestStatusSnapshot(t *testing.T) {
	e, _ := newTestEngine(t)
	status := e.Status()
	assert.Equal(t, 14, status.PopulationSize)
	assert.Equal(t, 0, status.Generation)
	assert.False(t, status.Halted)
	assert.Contains(t, status.Bots, "momentum_scalper")
	assert.Equal(t, models.ModeAlerts, status.Settings.ExecutionMode)
}

func TestBotSideBiasFiltering(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{"execution_mode": "paper"})

	// Restrict the swing bot to shorts; a buy signal must skip it.
	short := models.BotConfig{
		Name: "swing_confirmer", Symbol: "ES", Capital: 120_000, RiskFraction: 0.0125,
		MaxSize: 3.5, Leverage: 1, MinSize: 0.01,
		Mode: models.BotModeSwingOnly, SideBias: models.BiasShort, Active: true,
	}
	e.UpsertBot(short)

	res := e.HandleAlert(context.Background(), buyAlert())
	require.Equal(t, models.StatusExecutedPaper, res.Status)
	assert.Empty(t, res.BotTrades)
}

func TestInactiveBotSkipped(t *testing.T) {
	e, _ := newTestEngine(t)
	setAllGenomes(e, buyGenome())
	e.PatchSettings(map[string]any{"execution_mode": "paper"})
	require.NoError(t, e.ToggleBot("swing_confirmer", false))

	res := e.HandleAlert(context.Background(), buyAlert())
	require.Equal(t, models.StatusExecutedPaper, res.Status)
	assert.Empty(t, res.BotTrades)
}

// The momentum baseline looks at the last 120 candles only; older
// history must not leak into the return distribution.
func TestFeatureWindowBoundedToLast120Candles(t *testing.T) {
	e, _ := newTestEngine(t)

	base := noonTs() - 200*60
	// Old regime: 80 candles whipsawing hard.
	for i := 0; i < 80; i++ {
		price := 100.0 + 40.0*float64(i%2)
		e.candles.AddTick("ES", price, 1, base+int64(i)*60)
	}
	// Recent regime: a gentle drift down, then a pop on the last candle.
	for i := 0; i < 119; i++ {
		e.candles.AddTick("ES", 110.0-0.01*float64(i), 1, base+int64(80+i)*60)
	}
	e.candles.AddTick("ES", 112.0, 1, base+199*60)
	require.Equal(t, 200, e.candles.Len("ES"))

	alert := models.Alert{Symbol: "ES", Side: models.SideBuy, Price: 112, Ts: noonTs()}
	got := features.Extract(e.candles.Recent("ES", featureCandles), alert)
	want := features.Extract(e.candles.Recent("ES", 120), alert)
	wide := features.Extract(e.candles.Recent("ES", 200), alert)

	assert.Equal(t, want, got)
	// Against the calm recent window the pop is a strong outlier; the
	// whipsaw regime would wash it out.
	assert.Greater(t, want.MomZ, 1.0)
	assert.Less(t, wide.MomZ, 1.0)
}
