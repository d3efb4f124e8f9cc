package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xantonozar/billkhata-go/types"
)

func setupRedisSubscriber(t *testing.T) (*RedisSubscriber, *miniredis.Miniredis) {
	t.Helper()
	resetMetricsForTesting()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisSubscriber(rdb, Config{
		SubscribeTimeout: 2 * time.Second,
		EventBufferSize:  10,
	}), mr
}

func publishEvent(t *testing.T, mr *miniredis.Miniredis, topic string, event types.RealtimeEvent) {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	mr.Publish(topic, string(payload))
}

func TestRedisSubscribeReceivesEvents(t *testing.T) {
	sub, mr := setupRedisSubscriber(t)
	ctx := context.Background()
	defer func() { _ = sub.Shutdown(ctx) }()

	topic := types.RoomTopic("khata-1")
	events, err := sub.Subscribe(ctx, topic, "user-1")
	require.NoError(t, err)

	publishEvent(t, mr, topic, types.RealtimeEvent{
		ID:        "evt-1",
		Type:      types.EventNewDeposit,
		KhataID:   "khata-1",
		Timestamp: time.Now(),
	})

	select {
	case event := <-events:
		assert.Equal(t, "evt-1", event.ID)
		assert.Equal(t, types.EventNewDeposit, event.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestRedisSubscribeFilters(t *testing.T) {
	sub, mr := setupRedisSubscriber(t)
	ctx := context.Background()
	defer func() { _ = sub.Shutdown(ctx) }()

	topic := types.RoomTopic("khata-1")
	events, err := sub.Subscribe(ctx, topic, "user-1", types.EventBillApproved)
	require.NoError(t, err)

	publishEvent(t, mr, topic, types.RealtimeEvent{ID: "skip", Type: types.EventNewExpense})
	publishEvent(t, mr, topic, types.RealtimeEvent{ID: "keep", Type: types.EventBillApproved})

	select {
	case event := <-events:
		assert.Equal(t, "keep", event.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for filtered event")
	}
}

func TestRedisDuplicateSubscription(t *testing.T) {
	sub, _ := setupRedisSubscriber(t)
	ctx := context.Background()
	defer func() { _ = sub.Shutdown(ctx) }()

	topic := types.RoomTopic("khata-1")
	_, err := sub.Subscribe(ctx, topic, "user-1")
	require.NoError(t, err)

	_, err = sub.Subscribe(ctx, topic, "user-1")
	assert.Error(t, err)
}

func TestRedisUnsubscribeClosesChannel(t *testing.T) {
	sub, _ := setupRedisSubscriber(t)
	ctx := context.Background()

	topic := types.RoomTopic("khata-1")
	events, err := sub.Subscribe(ctx, topic, "user-1")
	require.NoError(t, err)

	require.NoError(t, sub.Unsubscribe(ctx, topic, "user-1"))

	select {
	case _, open := <-events:
		assert.False(t, open, "channel should be closed after unsubscribe")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	assert.Error(t, sub.Unsubscribe(ctx, topic, "user-1"))
}

func TestRedisMalformedPayloadIsSkipped(t *testing.T) {
	sub, mr := setupRedisSubscriber(t)
	ctx := context.Background()
	defer func() { _ = sub.Shutdown(ctx) }()

	topic := types.RoomTopic("khata-1")
	events, err := sub.Subscribe(ctx, topic, "user-1")
	require.NoError(t, err)

	mr.Publish(topic, "{not json")
	publishEvent(t, mr, topic, types.RealtimeEvent{ID: "good", Type: types.EventMealUpdated})

	select {
	case event := <-events:
		assert.Equal(t, "good", event.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event after malformed payload")
	}
}

func TestRedisShutdownClosesAll(t *testing.T) {
	sub, _ := setupRedisSubscriber(t)
	ctx := context.Background()

	ch1, err := sub.Subscribe(ctx, types.RoomTopic("khata-1"), "user-1")
	require.NoError(t, err)
	ch2, err := sub.Subscribe(ctx, types.UserTopic("user-1"), "user-1")
	require.NoError(t, err)

	require.NoError(t, sub.Shutdown(ctx))

	for _, ch := range []<-chan types.RealtimeEvent{ch1, ch2} {
		select {
		case _, open := <-ch:
			assert.False(t, open)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for channel close on shutdown")
		}
	}
}
