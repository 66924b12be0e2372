package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	"StockCast/pkg/logger"
)

// Stream implements a QuoteStream backed by a Finnhub-style trade WebSocket.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	// mu serializes writes to conn; gorilla/websocket allows one writer.
	mu        sync.Mutex
	conn      *websocket.Conn
	done      chan struct{} // closed when the current connection is torn down
	connected bool
}

func NewStream(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.QuoteStream {
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("quote stream connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.done = make(chan struct{})
	s.connected = true
	s.mu.Unlock()
	s.log.Info("quote stream connected")
	return nil
}

// Subscribe subscribes to configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := s.writeJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
		s.log.Debug("quote stream subscribed", logger.String("symbol", sym))
	}
	return nil
}

func (s *Stream) writeJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("quote stream not connected")
	}
	return s.conn.WriteJSON(v)
}

// ping writes a ping frame if conn is still the live connection.
func (s *Stream) ping(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected && s.conn == conn {
		_ = conn.WriteMessage(websocket.PingMessage, nil)
	}
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Read streams Quote events and errors for the current connection. Both
// goroutines it starts are bound to that connection: the ping loop stops when
// the connection is closed, not only when ctx ends.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, 1024)
	errs := make(chan error, 1)

	s.mu.Lock()
	conn, done := s.conn, s.done
	s.mu.Unlock()

	if conn == nil {
		errs <- fmt.Errorf("quote stream conn nil")
		close(quotes)
		close(errs)
		return quotes, errs
	}

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				s.ping(conn)
			}
		}
	}()

	// read loop
	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("quote stream read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-trade frames
					continue
				}
				if m.Type != "trade" {
					continue
				}
				for _, d := range m.Data {
					quote := &models.Quote{Symbol: d.S, Price: d.P, Volume: d.V, Timestamp: d.T / 1000}
					select {
					case quotes <- quote:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return quotes, errs
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close tears down the current connection and stops its ping loop.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
