package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/domain/repository"
)

// ClickHouseTradeSink persists closed paper trades for offline analysis.
type ClickHouseTradeSink struct {
	db    *sql.DB
	table string
}

var _ repository.TradeSink = (*ClickHouseTradeSink)(nil)

// NewClickHouseTradeSink creates the sink over an existing connection pool.
func NewClickHouseTradeSink(db *sql.DB, table string) *ClickHouseTradeSink {
	if table == "" {
		table = "paper_trades"
	}
	return &ClickHouseTradeSink{db: db, table: table}
}

// SchemaStatements returns idempotent DDL for the trade table.
func (s *ClickHouseTradeSink) SchemaStatements() []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id Int64,
		ts DateTime,
		symbol LowCardinality(String),
		side LowCardinality(String),
		entry Float64,
		sl Float64,
		tp Float64,
		size Float64,
		exit Float64,
		exit_reason LowCardinality(String),
		exit_ts DateTime,
		pnl Float64,
		mode LowCardinality(String),
		source LowCardinality(String),
		bot String,
		genome Int32,
		consensus Float64,
		confidence Float64,
		is_scalp UInt8,
		meta String
	) ENGINE = MergeTree() ORDER BY (symbol, ts)`, s.table)}
}

func (s *ClickHouseTradeSink) StoreTrade(ctx context.Context, t *models.Trade) error {
	if t == nil {
		return fmt.Errorf("trade is nil")
	}

	metaJSON, err := json.Marshal(t.Meta)
	if err != nil {
		return fmt.Errorf("marshal trade meta: %w", err)
	}

	isScalp := uint8(0)
	if t.Meta.IsScalp {
		isScalp = 1
	}

	q := fmt.Sprintf(`INSERT INTO %s
		(id, ts, symbol, side, entry, sl, tp, size, exit, exit_reason, exit_ts, pnl, mode, source, bot, genome, consensus, confidence, is_scalp, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err = s.db.ExecContext(ctx, q,
		t.ID,
		time.Unix(t.Ts, 0),
		t.Symbol,
		t.Side,
		t.Entry,
		t.Stop,
		t.Target,
		t.Size,
		t.Exit,
		t.ExitReason,
		time.Unix(t.ExitTs, 0),
		t.Pnl,
		t.Mode,
		t.Meta.Source,
		t.Meta.Bot,
		int32(t.Meta.Genome),
		t.Meta.Consensus,
		t.Meta.Confidence,
		isScalp,
		string(metaJSON),
	)
	return err
}

// Health pings the underlying pool.
func (s *ClickHouseTradeSink) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
