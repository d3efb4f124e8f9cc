package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/Xantonozar/billkhata-go/logger"
	"github.com/Xantonozar/billkhata-go/types"
)

const (
	maxRetryInterval = 30 * time.Second
	initialRetry     = 100 * time.Millisecond
	maxReconnects    = 5
	pingInterval     = 30 * time.Second
)

// WebsocketSubscriber implements types.Subscriber against the realtime
// websocket gateway. Each subscription dials its own connection with the
// topic as a query parameter, reads events in a loop, and reconnects with
// exponential backoff on transient failure.
type WebsocketSubscriber struct {
	gatewayURL string
	log        *zap.SugaredLogger
	config     Config
	mu         sync.Mutex
	cancels    map[string]context.CancelFunc
	wg         sync.WaitGroup
}

// NewWebsocketSubscriber creates a subscriber dialing the given gateway URL.
func NewWebsocketSubscriber(gatewayURL string, cfg ...Config) *WebsocketSubscriber {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	return &WebsocketSubscriber{
		gatewayURL: gatewayURL,
		log:        logger.GetLogger().Named("realtime_ws"),
		config:     config,
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Subscribe dials the gateway for one topic and delivers decoded events.
func (s *WebsocketSubscriber) Subscribe(ctx context.Context, topic string, subscriberID string, filters ...types.RealtimeEventType) (<-chan types.RealtimeEvent, error) {
	subKey := fmt.Sprintf("%s:%s", topic, subscriberID)

	s.mu.Lock()
	if _, exists := s.cancels[subKey]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("subscription already exists for topic %s and subscriber %s", topic, subscriberID)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancels[subKey] = cancel
	s.mu.Unlock()

	dialURL := fmt.Sprintf("%s?topic=%s", s.gatewayURL, url.QueryEscape(topic))
	events := make(chan types.RealtimeEvent, s.config.EventBufferSize)

	s.wg.Add(1)
	go s.run(runCtx, dialURL, subKey, events, filters)

	return events, nil
}

// run owns one subscription's connection lifecycle: dial, read until error,
// reconnect with backoff, give up after maxReconnects consecutive failures.
func (s *WebsocketSubscriber) run(ctx context.Context, dialURL, subKey string, events chan<- types.RealtimeEvent, filters []types.RealtimeEventType) {
	defer s.wg.Done()
	defer close(events)

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, _, err := websocket.Dial(ctx, dialURL, nil)
		if err != nil {
			if !s.backoff(ctx, subKey, retryCount) {
				s.log.Errorw("Max reconnect attempts reached", "subKey", subKey, "error", err)
				return
			}
			retryCount++
			continue
		}

		s.log.Infow("Realtime websocket connected", "subKey", subKey)
		err = s.readLoop(ctx, conn, subKey, events, filters)
		_ = conn.Close(websocket.StatusNormalClosure, "subscription closed")

		if ctx.Err() != nil {
			return
		}
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return
		}

		s.log.Warnw("Realtime websocket read failed, reconnecting", "subKey", subKey, "error", err)
		if !s.backoff(ctx, subKey, retryCount) {
			s.log.Errorw("Max reconnect attempts reached", "subKey", subKey)
			return
		}
		retryCount++
	}
}

func (s *WebsocketSubscriber) readLoop(ctx context.Context, conn *websocket.Conn, subKey string, events chan<- types.RealtimeEvent, filters []types.RealtimeEventType) error {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	readErr := make(chan error, 1)
	messages := make(chan []byte)

	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case messages <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pingTicker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case err := <-readErr:
			return err
		case data := <-messages:
			var event types.RealtimeEvent
			if err := json.Unmarshal(data, &event); err != nil {
				s.log.Errorw("Failed to unmarshal event", "error", err, "subKey", subKey)
				continue
			}
			if !event.Matches(filters) {
				continue
			}
			select {
			case events <- event:
			default:
				s.log.Warnw("Dropped event due to full channel", "subKey", subKey, "eventType", event.Type)
			}
		}
	}
}

// backoff sleeps for an exponentially growing interval, capped at
// maxRetryInterval. Returns false once the attempt budget is spent or the
// context is cancelled.
func (s *WebsocketSubscriber) backoff(ctx context.Context, subKey string, retryCount int) bool {
	if retryCount >= maxReconnects {
		return false
	}

	interval := time.Duration(float64(initialRetry) * math.Pow(2, float64(retryCount)))
	if interval > maxRetryInterval {
		interval = maxRetryInterval
	}
	// Jitter keeps a fleet of clients from reconnecting in lockstep.
	interval += time.Duration(rand.Int63n(int64(interval)/4 + 1))

	s.log.Infow("Attempting websocket reconnect",
		"subKey", subKey,
		"backoff", interval,
		"attempt", retryCount+1)

	select {
	case <-time.After(interval):
		return true
	case <-ctx.Done():
		return false
	}
}

// Unsubscribe cancels a topic subscription.
func (s *WebsocketSubscriber) Unsubscribe(ctx context.Context, topic string, subscriberID string) error {
	subKey := fmt.Sprintf("%s:%s", topic, subscriberID)

	s.mu.Lock()
	cancel, exists := s.cancels[subKey]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("no subscription found for topic %s and subscriber %s", topic, subscriberID)
	}
	delete(s.cancels, subKey)
	s.mu.Unlock()

	cancel()
	return nil
}

// Shutdown cancels every subscription and waits for their goroutines.
func (s *WebsocketSubscriber) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("WebsocketSubscriber shutdown complete")
	return nil
}
