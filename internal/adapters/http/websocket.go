package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	natsadapter "github.com/samirrijal/fencekeeper/internal/adapters/nats"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/samirrijal/fencekeeper/internal/pkg/metrics"
)

// Feed channels a client can mute and unmute.
const (
	ChannelFences = "fences"
	ChannelOrders = "orders"
)

// wsMessage is sent from client to mute or unmute a channel.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "fences" | "orders"
}

// wsEvent is relayed to the client for every broker message.
type wsEvent struct {
	Channel string          `json:"channel"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

func channelOf(subject string) string {
	switch {
	case strings.HasPrefix(subject, natsadapter.SubjectFenceChanged):
		return ChannelFences
	case strings.HasPrefix(subject, natsadapter.SubjectOrderCreated):
		return ChannelOrders
	}
	return ""
}

// WebSocketHandler relays the caller's fence and order events. Both channels
// are on by default; clients send {"action":"unsubscribe","channel":"orders"}
// to mute one. The merchant comes from MerchantIdentityMiddleware.
func WebSocketHandler(feed ports.EventSubscriber) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		merchant, _ := c.Locals(merchantLocal).(string)
		log := slog.Default().With(
			"client_id", uuid.NewString(),
			"merchant_id", merchant,
			"remote_addr", c.RemoteAddr().String(),
		)
		log.Info("ws client connected")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		enabled := map[string]bool{ChannelFences: true, ChannelOrders: true}

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if feed == nil {
			_ = writeJSON(map[string]string{"error": "live feed unavailable"})
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		unsubscribe, err := feed.SubscribeMerchantFeed(ctx, merchant, func(subject string, data []byte) {
			ch := channelOf(subject)
			mu.Lock()
			on := enabled[ch]
			mu.Unlock()
			if !on {
				return
			}
			_ = writeJSON(wsEvent{Channel: ch, Subject: subject, Data: json.RawMessage(data)})
		})
		if err != nil {
			log.Error("ws feed subscribe failed", "error", err)
			_ = writeJSON(map[string]string{"error": "subscribe failed"})
			return
		}
		defer unsubscribe()

		// Keep-alive ping
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.Channel != ChannelFences && m.Channel != ChannelOrders {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe", "unsubscribe":
				mu.Lock()
				enabled[m.Channel] = m.Action == "subscribe"
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": m.Action + "d", "channel": m.Channel})
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		log.Info("ws client disconnected")
	}
}
