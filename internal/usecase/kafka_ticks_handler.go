package usecase

import (
	"context"
	"encoding/json"
	"time"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/domain/repository"
	pkgkafka "EvoTrader/pkg/kafka"
)

// KafkaTicksHandler consumes tick messages and feeds them to the engine.
type KafkaTicksHandler struct {
	topic   string
	engine  *Engine
	metrics repository.Metrics
}

func NewKafkaTicksHandler(topic string, engine *Engine, metrics repository.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, engine: engine, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, price, size, ts}
func (h *KafkaTicksHandler) Handle(_ context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
		Size   float64 `json:"size"`
		Ts     int64   `json:"ts"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("consumer_unmarshal")
		}
		return err
	}
	if m.Ts > 1e11 { // ms
		m.Ts = m.Ts / 1000
	}
	if m.Size <= 0 {
		m.Size = 1
	}
	if h.metrics != nil && m.Ts > 0 {
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.Ts, 0)).Seconds())
	}

	h.engine.HandleTick(&models.TickRequest{
		Symbol: m.Symbol,
		Price:  m.Price,
		Size:   m.Size,
		Ts:     m.Ts,
	})
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
