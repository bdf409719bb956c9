package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveExchange(t *testing.T) {
	r := NewRecorder()

	r.ObserveExchange("success", 120*time.Millisecond)
	r.ObserveExchange("success", 80*time.Millisecond)
	r.ObserveExchange("malformed_challenge", 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.exchanges.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.exchanges.WithLabelValues("malformed_challenge")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.exchanges))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveExchange("io_error", time.Second)

	path := filepath.Join(t.TempDir(), "rtsp_describe.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `rtsp_describe_exchanges_total{result="io_error"} 1`)
	assert.Contains(t, out, "rtsp_describe_exchange_duration_seconds_count 1")
}

func TestRecorder_IsolatedRegistries(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()

	a.ObserveExchange("success", time.Millisecond)

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "rtsp_describe_exchanges_total" {
			assert.Empty(t, mf.GetMetric())
		}
	}
}
