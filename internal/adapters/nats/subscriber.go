package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS.
type Subscriber struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber on its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Subscriber{conn: conn}, nil
}

// NewSubscriberFromConn wraps an existing connection.
func NewSubscriberFromConn(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// SubscribeZoneEvents delivers every zone event to handler. Each instance
// gets every event (no queue group) so all caches are evicted.
func (s *Subscriber) SubscribeZoneEvents(ctx context.Context, handler func(ctx context.Context, event *domain.ZoneEvent) error) error {
	sub, err := s.conn.Subscribe(SubjectFenceChanged+">", func(msg *nats.Msg) {
		var event domain.ZoneEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("bad zone event", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, &event); err != nil {
			slog.Warn("zone event handler failed", "merchant_id", event.MerchantID, "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.track(sub)
	return nil
}

// SubscribeMerchantFeed relays raw fence and order events of one merchant.
// The returned function unsubscribes.
func (s *Subscriber) SubscribeMerchantFeed(ctx context.Context, merchantID string, handler func(subject string, data []byte)) (func(), error) {
	token := SubjectToken(merchantID)
	relay := merchantRelay(merchantID, handler)
	var subs []*nats.Subscription
	for _, subject := range []string{SubjectFenceChanged + token, SubjectOrderCreated + token} {
		sub, err := s.conn.Subscribe(subject, relay)
		if err != nil {
			for _, prev := range subs {
				_ = prev.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}
	return func() {
		for _, sub := range subs {
			_ = sub.Unsubscribe()
		}
	}, nil
}

// merchantRelay forwards only messages whose payload names merchantID.
func merchantRelay(merchantID string, handler func(subject string, data []byte)) nats.MsgHandler {
	return func(msg *nats.Msg) {
		if owner := PayloadMerchant(msg.Data); owner != merchantID {
			slog.Warn("dropped foreign feed event", "subject", msg.Subject, "merchant_id", merchantID, "owner", owner)
			return
		}
		handler(msg.Subject, msg.Data)
	}
}

// Conn exposes the underlying connection for readiness checks.
func (s *Subscriber) Conn() *nats.Conn {
	return s.conn
}

func (s *Subscriber) track(sub *nats.Subscription) {
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	s.mu.Lock()
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
	s.mu.Unlock()
	_ = s.conn.Drain()
}
