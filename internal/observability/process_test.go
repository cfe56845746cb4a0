package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "5с"},
		{2*time.Minute + 3*time.Second, "2м 3с"},
		{time.Hour + 61*time.Second, "1ч 1м 1с"},
		{49 * time.Hour, "2д 1ч 0м 0с"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.in))
	}
}

func TestProcessSample(t *testing.T) {
	pm, err := NewProcessMetrics("vcore")
	require.NoError(t, err)

	stats, err := pm.Sample()
	require.NoError(t, err)
	assert.Greater(t, stats.RSSMB, 0.0, "у живого процесса есть резидентная память")
	assert.Greater(t, stats.Goroutines, 0)
	assert.Equal(t, float64(stats.Goroutines), testutil.ToFloat64(pm.goroutines))
	assert.Len(t, pm.Collectors(), 3)
}
