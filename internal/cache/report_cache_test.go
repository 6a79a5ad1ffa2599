package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-weekly-summary/internal/config"
)

func TestKey(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t,
		"spapi:sales_traffic:ATVPDKIKX0DER:2025-03-01:2025-03-07",
		Key("ATVPDKIKX0DER", start, end))
}

func TestTTLForWindow(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want time.Duration
	}{
		{
			name: "range ending yesterday still settling",
			end:  time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			want: 6 * time.Hour,
		},
		{
			name: "range ending today still settling",
			end:  time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			want: 6 * time.Hour,
		},
		{
			name: "closed historical range",
			end:  time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
			want: 30 * 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TTLForWindow(tt.end, now))
		})
	}
}

func TestEffectiveTTL(t *testing.T) {
	// A zero or negative request falls back to the configured default, so
	// CACHE_DEFAULT_TTL_SECONDS governs callers that do not pick a TTL.
	assert.Equal(t, time.Hour, effectiveTTL(time.Hour, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, effectiveTTL(0, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, effectiveTTL(-time.Second, 5*time.Minute))
}

func TestNewReportCacheDisabled(t *testing.T) {
	c, err := NewReportCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	// The noop cache never hits and never errors.
	var out []string
	ok, err := c.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Set(context.Background(), "k", []string{"v"}, time.Minute))
}
