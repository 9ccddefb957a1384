package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pingEvent struct{}

func (pingEvent) Name() string { return "ping" }

func TestBus_PublishCallsEveryListener(t *testing.T) {
	bus := New(zap.NewNop(), time.Second)

	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("ping", func(ctx context.Context, e Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}
	bus.Subscribe("other", func(ctx context.Context, e Event) error {
		t.Error("слушатель чужого события не должен вызываться")
		return nil
	})

	bus.Publish(context.Background(), pingEvent{})
	bus.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBus_ListenerFailuresDoNotLeak(t *testing.T) {
	bus := New(zap.NewNop(), 50*time.Millisecond)

	var deadline atomic.Bool
	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		<-ctx.Done()
		deadline.Store(true)
		return ctx.Err()
	})
	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		panic("boom")
	})
	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		return errors.New("fail")
	})

	// Отменённый контекст издателя не влияет на обработчики.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pingEvent{})
	bus.Wait()

	assert.True(t, deadline.Load())
}
