package alerting

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/candor/pkg/webhook"
)

// DefaultWorkers is how many deliveries a Relay runs at once unless told
// otherwise.
const DefaultWorkers = 8

// Deliverer sends one webhook payload. *webhook.Dispatcher implements it.
type Deliverer interface {
	Deliver(ctx context.Context, url string, payload webhook.Payload) bool
}

// Relay consumes queued notifications and hands them to a Deliverer.
type Relay struct {
	Subscriber message.Subscriber
	Deliverer  Deliverer
	Logger     *slog.Logger
	Now        func() time.Time

	// Workers bounds concurrent deliveries. Zero means DefaultWorkers.
	Workers int

	abort context.CancelFunc
	done  chan struct{}
}

// Start subscribes and processes messages in the background until ctx is
// cancelled. Deliveries run on a context detached from ctx, so cancelling
// ctx stops intake but lets in-flight deliveries finish; see Drain.
func (r *Relay) Start(ctx context.Context) error {
	messages, err := r.Subscriber.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	deliverCtx, abort := context.WithCancel(context.WithoutCancel(ctx))
	r.abort = abort

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var g errgroup.Group
	g.SetLimit(workers)

	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		defer abort()

		for msg := range messages {
			n, ok := r.decode(msg)
			if !ok {
				msg.Ack()
				continue
			}

			// Blocks while every worker is busy
			g.Go(func() error {
				r.deliver(deliverCtx, msg.UUID, n)
				return nil
			})

			// The subscriber hands out the next message only after an ack
			msg.Ack()
		}
		_ = g.Wait()
	}()

	r.Logger.Info("alert relay started", "topic", Topic, "workers", workers)
	return nil
}

// Wait blocks until the intake loop and every worker have exited.
func (r *Relay) Wait() {
	if r.done != nil {
		<-r.done
	}
}

// Drain waits for in-flight deliveries after the Start context is cancelled.
// If ctx expires first the remaining deliveries are aborted, and Drain still
// waits for them to return.
func (r *Relay) Drain(ctx context.Context) {
	if r.done == nil {
		return
	}
	select {
	case <-r.done:
	case <-ctx.Done():
		r.Logger.Warn("alert relay drain timed out, aborting deliveries")
		r.abort()
		<-r.done
	}
}

func (r *Relay) decode(msg *message.Message) (Notification, bool) {
	var n Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil {
		r.Logger.Error("dropping malformed alert notification",
			"message_id", msg.UUID,
			"error", err,
		)
		return Notification{}, false
	}
	return n, true
}

func (r *Relay) deliver(ctx context.Context, id string, n Notification) {
	payload := n.payload()
	payload.Timestamp = r.now()

	delivered := r.Deliverer.Deliver(ctx, n.WebhookURL, payload)
	r.Logger.Debug("alert notification processed",
		"message_id", id,
		"rule_id", n.RuleID,
		"delivered", delivered,
	)
}

func (r *Relay) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}
