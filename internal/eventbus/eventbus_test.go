package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	N int `json:"n"`
}

func TestMemoryBusDelivery(t *testing.T) {
	bus := NewMemoryBus(16)

	var (
		mu  sync.Mutex
		got []int
		all int
	)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventBlockMeshed}}, func(ctx context.Context, ev *Envelope) {
		var p payload
		assert.NoError(t, ev.Decode(&p))
		mu.Lock()
		got = append(got, p.N)
		mu.Unlock()
	})
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		all++
		mu.Unlock()
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ev, err := NewEnvelope("test", EventBlockMeshed, 5, payload{N: i})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	ev, err := NewEnvelope("test", EventSuperChunkReady, 5, payload{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	require.NoError(t, bus.Close(), "Close дожидается доставки")

	assert.Equal(t, []int{0, 1, 2}, got, "события приходят по порядку и по фильтру")
	assert.Equal(t, 4, all)

	stats := bus.Metrics()
	assert.Equal(t, uint64(4), stats.Published)
	assert.Equal(t, uint64(7), stats.Consumed)

	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
}

func TestMemoryBusBackpressure(t *testing.T) {
	// шина без рассылки: буфер никто не читает
	bus := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, 1),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	low, err := NewEnvelope("test", EventBlockMeshed, 0, payload{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), low))
	require.NoError(t, bus.Publish(context.Background(), low))
	assert.Equal(t, uint64(1), bus.Metrics().Dropped, "низкий приоритет отбрасывается при полном буфере")
	assert.Equal(t, 1, bus.Metrics().InFlight)

	high, err := NewEnvelope("test", EventBlockMeshed, 9, payload{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bus.Publish(ctx, high), context.Canceled, "высокий приоритет ждёт места")
}

func TestUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	calls := 0
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) { calls++ })
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, err := NewEnvelope("test", EventBlockMeshed, 5, payload{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())
	assert.Equal(t, 0, calls)
}

func TestMetricsExporter(t *testing.T) {
	bus := NewMemoryBus(4)
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(bus, reg)

	ev, err := NewEnvelope("test", EventBlockMeshed, 5, payload{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())

	me.Update()
	me.Update()
	assert.Equal(t, float64(2), testutil.ToFloat64(me.published), "дельта не считается дважды")
}
