package bus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opensource-finance/heron/internal/domain"
)

func TestChannelBus(t *testing.T) {
	ctx := context.Background()

	t.Run("PublishSubscribe", func(t *testing.T) {
		b := NewChannelBus(10)
		defer b.Close()

		received := make(chan *domain.Message, 1)
		sub, err := b.Subscribe(ctx, domain.TopicDemandSubmitted, func(ctx context.Context, msg *domain.Message) error {
			received <- msg
			return nil
		})
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
		defer sub.Unsubscribe()

		if err := b.Publish(ctx, domain.TopicDemandSubmitted, []byte(`{"demand_id":"demand-001"}`)); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		select {
		case msg := <-received:
			if msg.Topic != domain.TopicDemandSubmitted {
				t.Errorf("expected topic %s, got %s", domain.TopicDemandSubmitted, msg.Topic)
			}
			if string(msg.Payload) != `{"demand_id":"demand-001"}` {
				t.Errorf("unexpected payload: %s", msg.Payload)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	})

	t.Run("TopicIsolation", func(t *testing.T) {
		b := NewChannelBus(10)
		defer b.Close()

		var count atomic.Int64
		sub, err := b.Subscribe(ctx, domain.TopicScoreComputed, func(ctx context.Context, msg *domain.Message) error {
			count.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
		defer sub.Unsubscribe()

		b.Publish(ctx, domain.TopicRulesEvaluated, []byte("other"))
		time.Sleep(50 * time.Millisecond)

		if count.Load() != 0 {
			t.Errorf("expected no messages for different topic, got %d", count.Load())
		}
	})

	t.Run("MultipleSubscribers", func(t *testing.T) {
		b := NewChannelBus(10)
		defer b.Close()

		var count atomic.Int64
		for i := 0; i < 3; i++ {
			sub, err := b.Subscribe(ctx, domain.TopicScoreComputed, func(ctx context.Context, msg *domain.Message) error {
				count.Add(1)
				return nil
			})
			if err != nil {
				t.Fatalf("Subscribe failed: %v", err)
			}
			defer sub.Unsubscribe()
		}

		b.Publish(ctx, domain.TopicScoreComputed, []byte("fanout"))

		deadline := time.After(time.Second)
		for count.Load() < 3 {
			select {
			case <-deadline:
				t.Fatalf("expected 3 deliveries, got %d", count.Load())
			case <-time.After(10 * time.Millisecond):
			}
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		b := NewChannelBus(10)
		defer b.Close()

		var count atomic.Int64
		sub, err := b.Subscribe(ctx, domain.TopicDemandSubmitted, func(ctx context.Context, msg *domain.Message) error {
			count.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}

		sub.Unsubscribe()
		time.Sleep(10 * time.Millisecond)

		b.Publish(ctx, domain.TopicDemandSubmitted, []byte("late"))
		time.Sleep(50 * time.Millisecond)

		if count.Load() != 0 {
			t.Errorf("expected no deliveries after unsubscribe, got %d", count.Load())
		}
	})

	t.Run("ClosedBusRejects", func(t *testing.T) {
		b := NewChannelBus(10)
		b.Close()

		if err := b.Publish(ctx, domain.TopicDemandSubmitted, []byte("x")); err == nil {
			t.Error("expected error publishing to closed bus")
		}
		if _, err := b.Subscribe(ctx, domain.TopicDemandSubmitted, nil); err == nil {
			t.Error("expected error subscribing to closed bus")
		}
		if err := b.Ping(ctx); err == nil {
			t.Error("expected ping error on closed bus")
		}
	})
}

func TestNewBusFactory(t *testing.T) {
	t.Run("Channel", func(t *testing.T) {
		b, err := New(domain.EventBusConfig{Type: "channel"})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer b.Close()

		if _, ok := b.(*ChannelBus); !ok {
			t.Errorf("expected *ChannelBus, got %T", b)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := New(domain.EventBusConfig{Type: "kafka"})
		if err == nil {
			t.Error("expected error for unsupported bus type")
		}
	})
}
