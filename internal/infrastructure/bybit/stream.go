package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

const DefaultStreamURL = "wss://stream.bybit.com/v5/public/linear"

// KlineEvent is one live candle update. Confirmed is true only when the bar
// has closed, which is what downstream recomputes key off.
type KlineEvent struct {
	Symbol   string
	Interval string
	Candle   domain.Candle
}

// Stream maintains a public kline websocket subscription and forwards bar
// updates on a channel, so consumers stay free of socket and reconnection
// concerns.
type Stream struct {
	url    string
	topics []string
	events chan KlineEvent

	mu         sync.Mutex
	conn       *websocket.Conn
	reconnects int
}

func NewStream(url string) *Stream {
	if url == "" {
		url = DefaultStreamURL
	}
	return &Stream{
		url:    url,
		events: make(chan KlineEvent, 256),
	}
}

// Events is the channel bar updates arrive on. Updates are dropped, not
// blocked on, when the consumer falls behind.
func (s *Stream) Events() <-chan KlineEvent {
	return s.events
}

// Subscribe registers a kline topic. Safe before or after Run; topics are
// replayed after every reconnect.
func (s *Stream) Subscribe(symbol, interval string) {
	topic := fmt.Sprintf("kline.%s.%s", interval, symbol)

	s.mu.Lock()
	for _, t := range s.topics {
		if t == topic {
			s.mu.Unlock()
			return
		}
	}
	s.topics = append(s.topics, topic)
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		s.send(conn, map[string]interface{}{"op": "subscribe", "args": []string{topic}})
	}
}

// Run connects and pumps messages until the context is cancelled,
// reconnecting with linear backoff capped at 5 seconds.
func (s *Stream) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.connectAndPump(ctx); err != nil && ctx.Err() == nil {
			log.Printf("bybit stream: %v", err)
		}

		s.mu.Lock()
		s.reconnects++
		delay := time.Duration(s.reconnects) * time.Second
		s.mu.Unlock()
		if delay > 5*time.Second {
			delay = 5 * time.Second
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

type streamMessage struct {
	Topic string `json:"topic"`
	Data  []struct {
		Start   int64  `json:"start"`
		Open    string `json:"open"`
		High    string `json:"high"`
		Low     string `json:"low"`
		Close   string `json:"close"`
		Volume  string `json:"volume"`
		Confirm bool   `json:"confirm"`
	} `json:"data"`
}

func (s *Stream) connectAndPump(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Scopes the keepalive goroutine to this connection: a read failure ends
	// the pinger too instead of leaking it into the next reconnect.
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.conn = conn
	topics := append([]string(nil), s.topics...)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
	}()

	if len(topics) > 0 {
		if err := s.send(conn, map[string]interface{}{"op": "subscribe", "args": topics}); err != nil {
			return err
		}
	}

	go func() {
		ticker := time.NewTicker(20 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-connCtx.Done():
				conn.Close()
				return
			case <-ticker.C:
				s.send(conn, map[string]interface{}{"op": "ping"})
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg streamMessage
		if err := json.Unmarshal(raw, &msg); err != nil || !strings.HasPrefix(msg.Topic, "kline.") {
			continue
		}

		parts := strings.SplitN(msg.Topic, ".", 3)
		if len(parts) != 3 {
			continue
		}

		for _, d := range msg.Data {
			candle := domain.Candle{
				Ts:        d.Start,
				Open:      parseFloat(d.Open),
				High:      parseFloat(d.High),
				Low:       parseFloat(d.Low),
				Close:     parseFloat(d.Close),
				Volume:    parseFloat(d.Volume),
				Confirmed: d.Confirm,
			}
			select {
			case s.events <- KlineEvent{Symbol: parts[2], Interval: parts[1], Candle: candle}:
			default:
				// consumer behind, drop
			}
		}
	}
}

func (s *Stream) send(conn *websocket.Conn, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
