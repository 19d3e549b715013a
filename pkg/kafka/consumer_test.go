package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Lz4, parseCompression("lz4"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression(""))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}

func TestBackoffWithJitterGrowsAndCaps(t *testing.T) {
	min := 50 * time.Millisecond
	max := 2 * time.Second

	for attempt := 1; attempt <= 8; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max)
	}
}

func TestBackoffWithJitterBadBounds(t *testing.T) {
	d := backoffWithJitter(0, -1, 1)
	assert.Greater(t, d, time.Duration(0))
}
