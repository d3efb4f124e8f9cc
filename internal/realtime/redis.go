// Package realtime delivers push events from the BillKhata realtime channel.
// Events are invalidation signals only: receipt of any event means re-fetch
// and recompute, never incremental patching, so subscribers deliver the raw
// event and leave the payload uninterpreted.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Xantonozar/billkhata-go/logger"
	"github.com/Xantonozar/billkhata-go/types"
)

// Config holds tuning for subscribers.
type Config struct {
	SubscribeTimeout time.Duration
	EventBufferSize  int
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		SubscribeTimeout: 10 * time.Second,
		EventBufferSize:  100,
	}
}

// metrics holds Prometheus metrics shared by subscriber implementations.
type metrics struct {
	subscribeLatency  prometheus.Histogram
	errorCount        *prometheus.CounterVec
	eventCount        *prometheus.CounterVec
	activeSubscribers prometheus.Gauge
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			subscribeLatency: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "realtime_subscribe_duration_seconds",
				Help:    "Time taken to establish subscriptions",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			errorCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "realtime_errors_total",
				Help: "Total number of realtime channel errors",
			}, []string{"operation", "type"}),
			eventCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "realtime_events_total",
				Help: "Total number of realtime events by type",
			}, []string{"type"}),
			activeSubscribers: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "realtime_active_subscribers",
				Help: "Current number of active subscriptions",
			}),
		}
	})
	return metricsInstance
}

// resetMetricsForTesting swaps in a fresh registry so tests can re-register.
func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}

// RedisSubscriber implements types.Subscriber over Redis Pub/Sub. Each topic
// is a Redis channel (room-{khataId} or user-{id}).
type RedisSubscriber struct {
	rdb     *redis.Client
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
	mu      sync.Mutex
	subs    map[string]*subscription
	wg      sync.WaitGroup
}

// subscription owns one pubsub connection. Lifecycle is close-driven: there
// is no per-subscription context, closing the connection ends the delivery
// goroutine because go-redis closes its message channel.
type subscription struct {
	pubsub  *redis.PubSub
	events  chan types.RealtimeEvent
	filters []types.RealtimeEventType
	once    sync.Once
}

func (sub *subscription) close() error {
	var err error
	sub.once.Do(func() {
		if sub.pubsub != nil {
			err = sub.pubsub.Close()
		}
	})
	return err
}

// NewRedisSubscriber creates a subscriber backed by the given Redis client.
func NewRedisSubscriber(rdb *redis.Client, cfg ...Config) *RedisSubscriber {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}

	return &RedisSubscriber{
		rdb:     rdb,
		log:     logger.GetLogger().Named("realtime"),
		metrics: newMetrics(),
		config:  config,
		subs:    make(map[string]*subscription),
	}
}

// Subscribe subscribes to a topic. The subscription is confirmed against the
// server before the channel is returned, so no event published afterwards is
// missed. Events are delivered on a buffered channel; when the buffer is full
// events are dropped with a warning, which is safe because every event only
// means "refresh".
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string, subscriberID string, filters ...types.RealtimeEventType) (<-chan types.RealtimeEvent, error) {
	start := time.Now()
	subKey := fmt.Sprintf("%s:%s", topic, subscriberID)

	sub := &subscription{
		events:  make(chan types.RealtimeEvent, s.config.EventBufferSize),
		filters: filters,
	}

	s.mu.Lock()
	if _, exists := s.subs[subKey]; exists {
		s.mu.Unlock()
		s.metrics.errorCount.WithLabelValues("subscribe", "duplicate").Inc()
		return nil, fmt.Errorf("already subscribed to %s as %s", topic, subscriberID)
	}
	s.subs[subKey] = sub
	s.mu.Unlock()

	sub.pubsub = s.rdb.Subscribe(ctx, topic)

	// Wait for the server to acknowledge the subscription.
	confirmCtx, cancel := context.WithTimeout(ctx, s.config.SubscribeTimeout)
	_, err := sub.pubsub.Receive(confirmCtx)
	cancel()
	if err != nil {
		s.mu.Lock()
		delete(s.subs, subKey)
		s.mu.Unlock()
		_ = sub.close()
		s.metrics.errorCount.WithLabelValues("subscribe", "confirm").Inc()
		return nil, fmt.Errorf("confirming subscription to %s: %w", topic, err)
	}

	s.metrics.activeSubscribers.Inc()
	s.metrics.subscribeLatency.Observe(time.Since(start).Seconds())

	s.wg.Add(1)
	go s.deliver(sub, subKey)

	return sub.events, nil
}

// deliver pumps redis messages into the subscriber's channel. The loop ends
// when the pubsub connection is closed, at which point go-redis closes the
// message channel.
func (s *RedisSubscriber) deliver(sub *subscription, subKey string) {
	defer s.wg.Done()

	for msg := range sub.pubsub.Channel() {
		var event types.RealtimeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			s.metrics.errorCount.WithLabelValues("deliver", "unmarshal").Inc()
			s.log.Errorw("Dropping malformed event payload", "error", err, "subscription", subKey)
			continue
		}

		if !event.Matches(sub.filters) {
			continue
		}

		select {
		case sub.events <- event:
			s.metrics.eventCount.WithLabelValues(string(event.Type)).Inc()
		default:
			// A full buffer means the consumer is already behind on
			// refreshes; once one invalidation is queued, more add nothing.
			s.metrics.errorCount.WithLabelValues("deliver", "buffer_full").Inc()
			s.log.Warnw("Dropping event, subscriber buffer full", "subscription", subKey, "eventType", event.Type)
		}
	}

	close(sub.events)
	s.metrics.activeSubscribers.Dec()
	s.log.Infow("Subscription closed", "subscription", subKey)
}

// Unsubscribe closes one subscription; the delivery goroutine drains and
// closes the event channel.
func (s *RedisSubscriber) Unsubscribe(ctx context.Context, topic string, subscriberID string) error {
	subKey := fmt.Sprintf("%s:%s", topic, subscriberID)

	s.mu.Lock()
	sub, exists := s.subs[subKey]
	delete(s.subs, subKey)
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("not subscribed to %s as %s", topic, subscriberID)
	}

	if err := sub.close(); err != nil {
		s.log.Errorw("Error closing pubsub during unsubscribe", "error", err, "subscription", subKey)
	}
	return nil
}

// Shutdown closes every subscription and waits for delivery goroutines to
// finish or the context to expire.
func (s *RedisSubscriber) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]*subscription)
	s.mu.Unlock()

	s.log.Infow("Shutting down redis subscriber", "count", len(subs))

	for subKey, sub := range subs {
		if err := sub.close(); err != nil {
			s.log.Errorw("Error closing pubsub during shutdown", "error", err, "subscription", subKey)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Infow("Redis subscriber shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
