package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"StockCast/internal/domain/models"
	"StockCast/pkg/logger"
)

// tradeServer upgrades each connection, waits for one subscribe message,
// answers with a single trade frame, then keeps reading (so ping frames are
// consumed) until the client goes away.
func tradeServer(t *testing.T, price float64) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub map[string]string
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		frame := wsMessage{Type: "trade", Data: []wsTrade{
			{S: sub["symbol"], P: price, V: 10, T: 1700000000000},
		}}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func awaitQuote(t *testing.T, quotes <-chan *models.Quote) *models.Quote {
	t.Helper()
	select {
	case q := <-quotes:
		if q == nil {
			t.Fatal("quote channel closed before a quote arrived")
		}
		return q
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a quote")
	}
	return nil
}

func TestStreamReconnectCycle(t *testing.T) {
	srv := tradeServer(t, 101.5)
	defer srv.Close()

	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	// aggressive ping interval so ping loops from both connection
	// generations fire while subscribe/read traffic is in flight
	s := NewStream("token", wsURL(srv), []string{"AAPL"}, time.Millisecond, time.Millisecond, l)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	quotes, _ := s.Read(ctx)
	q := awaitQuote(t, quotes)
	if q.Symbol != "AAPL" || q.Price != 101.5 {
		t.Fatalf("quote = %+v", q)
	}
	if q.Timestamp != 1700000000 {
		t.Fatalf("timestamp = %d, want unix seconds", q.Timestamp)
	}

	// several ping ticks on the first connection before tearing it down
	time.Sleep(10 * time.Millisecond)

	if err := s.Reconnect(ctx); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if !s.IsConnected() {
		t.Fatal("not connected after reconnect")
	}
	quotes, _ = s.Read(ctx)
	q = awaitQuote(t, quotes)
	if q.Price != 101.5 {
		t.Fatalf("quote after reconnect = %+v", q)
	}

	// give the old generation's ping loop time to misfire if it survived
	time.Sleep(10 * time.Millisecond)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.IsConnected() {
		t.Fatal("still connected after close")
	}
}
