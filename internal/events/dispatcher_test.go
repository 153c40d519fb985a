package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	seen   chan struct{}
}

func (p *recordingPublisher) Publish(topic string, event any) error {
	p.mu.Lock()
	p.topics = append(p.topics, topic)
	p.mu.Unlock()
	p.seen <- struct{}{}
	return nil
}

func TestDispatcher_DeliversQueuedEvents(t *testing.T) {
	pub := &recordingPublisher{seen: make(chan struct{}, 10)}
	d := NewDispatcher(pub, 2, nil)
	defer d.Shutdown(context.Background())

	for i := 0; i < 3; i++ {
		if err := d.Dispatch(context.Background(), TopicInvestmentPlaced, InvestmentPlaced{InvestmentID: "inv"}); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		select {
		case <-pub.seen:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d", i)
		}
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.topics) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(pub.topics))
	}
	for _, topic := range pub.topics {
		if topic != TopicInvestmentPlaced {
			t.Errorf("unexpected topic %s", topic)
		}
	}
}

func TestDispatcher_ShutdownCompletes(t *testing.T) {
	pub := &recordingPublisher{seen: make(chan struct{}, 1)}
	d := NewDispatcher(pub, 3, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}
