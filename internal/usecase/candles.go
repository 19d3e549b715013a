package usecase

import (
	"time"

	"EvoTrader/internal/domain/models"
)

// CandleBook folds ticks into fixed-width buckets per symbol and keeps a
// bounded history with ring-buffer eviction. It is not safe for
// concurrent use; the engine serializes access.
type CandleBook struct {
	bucketSeconds int64
	capacity      int
	candles       map[string][]models.Candle
}

// NewCandleBook creates a candle aggregator with the given bucket width
// and per-symbol capacity.
func NewCandleBook(bucketSeconds int64, capacity int) *CandleBook {
	if bucketSeconds <= 0 {
		bucketSeconds = 60
	}
	if capacity <= 0 {
		capacity = 5000
	}
	return &CandleBook{
		bucketSeconds: bucketSeconds,
		capacity:      capacity,
		candles:       make(map[string][]models.Candle),
	}
}

// AddTick folds one tick into the symbol's current candle, opening a new
// bucket when the timestamp crosses a boundary. A zero ts means now.
func (b *CandleBook) AddTick(symbol string, price, size float64, ts int64) {
	if ts == 0 {
		ts = time.Now().Unix()
	}
	bucket := ts - (ts % b.bucketSeconds)

	list := b.candles[symbol]
	if n := len(list); n > 0 && list[n-1].Bucket == bucket {
		c := &list[n-1]
		if price > c.High {
			c.High = price
		}
		if price < c.Low {
			c.Low = price
		}
		c.Close = price
		c.Volume += size
		return
	}

	list = append(list, models.Candle{
		Bucket: bucket,
		Open:   price,
		High:   price,
		Low:    price,
		Close:  price,
		Volume: size,
	})
	if len(list) > b.capacity {
		list = list[len(list)-b.capacity:]
	}
	b.candles[symbol] = list
}

// Recent returns a copy of up to n trailing candles for the symbol.
// n <= 0 returns the full history.
func (b *CandleBook) Recent(symbol string, n int) []models.Candle {
	list := b.candles[symbol]
	if n > 0 && len(list) > n {
		list = list[len(list)-n:]
	}
	out := make([]models.Candle, len(list))
	copy(out, list)
	return out
}

// Len returns the stored candle count for a symbol.
func (b *CandleBook) Len(symbol string) int {
	return len(b.candles[symbol])
}
