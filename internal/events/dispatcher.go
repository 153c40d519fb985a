package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher decouples event publishing from the request path. Events are
// queued and delivered to the Publisher by a small worker pool.
type Dispatcher struct {
	publisher    Publisher
	queue        chan envelope
	workers      int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	logger       *slog.Logger
}

type envelope struct {
	topic string
	event any
}

func NewDispatcher(publisher Publisher, workers int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		publisher:    publisher,
		queue:        make(chan envelope, 1000),
		workers:      workers,
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}

	d.startWorkers()

	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, topic string, event any) error {
	select {
	case d.queue <- envelope{topic: topic, event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for {
		select {
		case env := <-d.queue:
			d.deliver(env, id)
		case <-d.shutdownChan:
			d.logger.Info("Event worker stopping", slog.Int("worker_id", id))
			return
		}
	}
}

func (d *Dispatcher) deliver(env envelope, workerID int) {
	startTime := time.Now()
	err := d.publisher.Publish(env.topic, env.event)
	duration := time.Since(startTime)

	if err != nil {
		d.logger.Error("Failed to publish event",
			slog.String("topic", env.topic),
			slog.String("error", err.Error()),
			slog.Int("worker_id", workerID),
			slog.Duration("duration", duration))
		return
	}

	d.logger.Info("Event delivered",
		slog.String("topic", env.topic),
		slog.Int("worker_id", workerID),
		slog.Duration("duration", duration))
}

func (d *Dispatcher) Shutdown(ctx context.Context) error {
	close(d.shutdownChan)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Event dispatcher shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
