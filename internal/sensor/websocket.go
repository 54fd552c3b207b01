package sensor

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketSource reads samples from a WebSocket stream, one JSON or text
// sample per message. It redials after errors until unsubscribed.
type WebSocketSource struct {
	url       string
	redial    time.Duration
	dialer    *websocket.Dialer
	connected chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	conn   *websocket.Conn
	done   chan struct{}
}

// NewWebSocketSource creates a source for url (ws:// or wss://).
func NewWebSocketSource(url string, redial time.Duration) *WebSocketSource {
	if redial <= 0 {
		redial = 2 * time.Second
	}
	return &WebSocketSource{
		url:    url,
		redial: redial,
		dialer: websocket.DefaultDialer,
	}
}

func (s *WebSocketSource) Name() string { return "ws" }

// Subscribe starts the reader goroutine. Dial errors are retried in the
// background rather than returned, like a sensor that has not warmed up.
func (s *WebSocketSource) Subscribe(fn Listener, rate time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadySubscribed
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, newThrottle(fn, rate), s.done)
	return nil
}

func (s *WebSocketSource) loop(ctx context.Context, th *throttle, done chan struct{}) {
	defer close(done)
	for {
		if err := s.stream(ctx, th); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("url", s.url).Dur("redial", s.redial).Msg("websocket source: stream ended")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.redial):
		}
	}
}

func (s *WebSocketSource) stream(ctx context.Context, th *throttle) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		conn.Close()
		return ctx.Err()
	}
	s.conn = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()
	log.Info().Str("url", s.url).Msg("websocket source connected")
	if s.connected != nil {
		select {
		case s.connected <- struct{}{}:
		default:
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		sample, err := DecodeLine(string(msg))
		if err != nil {
			log.Debug().Err(err).Msg("websocket source: skipping message")
			continue
		}
		th.deliver(sample)
	}
}

// Unsubscribe closes the connection and waits for the reader to exit.
func (s *WebSocketSource) Unsubscribe() error {
	s.mu.Lock()
	cancel, conn, done := s.cancel, s.conn, s.done
	s.cancel, s.done = nil, nil
	if cancel != nil {
		cancel()
	}
	s.mu.Unlock()

	if cancel == nil {
		return ErrNotSubscribed
	}
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
	<-done
	return nil
}
