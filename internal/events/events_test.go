package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadops/lead-dashboard/internal/events"
)

func TestDispatcher_PublishRunsAllHandlers(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(events.EventLeadsChanged, func(context.Context, events.Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(events.EventLeadsChanged, func(context.Context, events.Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(events.EventStagesChanged, func(context.Context, events.Event) error {
		calls = append(calls, "stages")
		return nil
	})
	d.SubscribeAll(func(context.Context, events.Event) error {
		calls = append(calls, "all")
		return nil
	})

	err := d.Publish(context.Background(), events.NewEvent(events.EventLeadsChanged, "leads", events.SourceLocal, nil))
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first", "second", "all"}, calls)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) snapshot() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func TestRedisBridge_RelaysBetweenInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	newInstance := func() (events.Dispatcher, *events.RedisBridge, *recorder, *redis.Client) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		d := events.NewInMemoryDispatcher()
		rec := &recorder{}
		d.Subscribe(events.EventLeadsChanged, rec.handle)
		bridge := events.NewRedisBridge(client, "crm:test", d, nil)
		require.NoError(t, bridge.Start(ctx))
		return d, bridge, rec, client
	}

	dispatcherA, bridgeA, recA, clientA := newInstance()
	_, bridgeB, recB, clientB := newInstance()
	assert.NotEqual(t, bridgeA.Origin(), bridgeB.Origin())

	event := events.NewEvent(events.EventLeadsChanged, "leads", events.SourceLocal, events.LeadsChangedPayload{Count: 3})
	require.NoError(t, dispatcherA.Publish(ctx, event))

	require.Eventually(t, func() bool { return len(recB.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := recB.snapshot()[0]
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, events.SourceRemote, got.Source)
	assert.Equal(t, bridgeA.Origin(), got.Origin)

	// A only sees its own local publish, never its echo.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, recA.snapshot(), 1)
	assert.Len(t, recB.snapshot(), 1)

	bridgeA.Stop()
	bridgeB.Stop()
	require.NoError(t, clientA.Close())
	require.NoError(t, clientB.Close())
}

func TestRedisBridge_ForwardSkipsRemoteEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bridge := events.NewRedisBridge(client, "crm:test", events.NewInMemoryDispatcher(), nil)
	remote := events.NewEvent(events.EventLeadsChanged, "leads", events.SourceRemote, nil)
	require.NoError(t, bridge.Forward(context.Background(), remote))
}
