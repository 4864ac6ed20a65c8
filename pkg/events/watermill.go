// Package events is the item change bus: watermill over the PostgreSQL SQL
// transport, with OTel trace context carried in message metadata.
//
// Subscribers sharing a ConsumerGroup split the stream between them; the
// worker fleet uses one group so every change is applied to the read model
// once. Handlers must be idempotent because a failed message is redelivered.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/itemtree/pkg/logger"
)

const (
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
	shutdownTimeout       = 30 * time.Second
	errChannelSize        = 100

	forwarderTopic         = "_itemtree_forwarder"
	forwarderConsumerGroup = "itemtree-forwarder"
)

// Metadata keys copied into log lines when a handler fails.
var logMetadataKeys = []string{"event_id", "action", "tenant_id"}

// ErrForwarderDisabled is returned by StartForwarder on a bus built without
// BusOptions.Forward.
var ErrForwarderDisabled = errors.New("events: forwarder not enabled on this bus")

// BusOptions configures NewEventBus.
type BusOptions struct {
	DSN           string
	ConsumerGroup string
	// Forward routes Publish through a durable SQL queue drained by
	// StartForwarder, so a change published right after commit survives an
	// API crash.
	Forward        bool
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// EventBus publishes and consumes item change messages.
type EventBus struct {
	publisher  message.Publisher
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	db         *sql.DB
	log        logger.Logger
	wg         sync.WaitGroup

	forward    bool
	maxRetries int
	retryDelay time.Duration
}

// NewEventBus opens its own connection pool on opts.DSN; the watermill
// tables are created on first use.
func NewEventBus(opts BusOptions, log logger.Logger) (*EventBus, error) {
	db, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	wlog := &slogAdapter{log: log}

	pub, err := newSQLPublisher(db, wlog)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var publisher message.Publisher = pub
	if opts.Forward {
		publisher = forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
	}

	sub, err := newSQLSubscriber(db, opts.ConsumerGroup, wlog)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, err
	}

	bus := &EventBus{
		publisher:  publisher,
		subscriber: sub,
		db:         db,
		log:        log,
		forward:    opts.Forward,
	}
	bus.applyRetry(opts)
	return bus, nil
}

func (q *EventBus) applyRetry(opts BusOptions) {
	q.maxRetries = opts.MaxRetries
	if q.maxRetries <= 0 {
		q.maxRetries = defaultMaxRetries
	}
	q.retryDelay = opts.RetryBaseDelay
	if q.retryDelay <= 0 {
		q.retryDelay = defaultRetryBaseDelay
	}
}

func newSQLPublisher(db *sql.DB, wlog watermill.LoggerAdapter) (*watermillsql.Publisher, error) {
	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	return pub, nil
}

func newSQLSubscriber(db *sql.DB, group string, wlog watermill.LoggerAdapter) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber (group %q): %w", group, err)
	}
	return sub, nil
}

// StartForwarder runs the daemon that moves queued messages to their target
// topics. It returns once the forwarder router is running.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.forward {
		return ErrForwarderDisabled
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	wlog := &slogAdapter{log: q.log}

	fwdSub, err := newSQLSubscriber(q.db, forwarderConsumerGroup, wlog)
	if err != nil {
		return err
	}
	targetPub, err := newSQLPublisher(q.db, wlog)
	if err != nil {
		_ = fwdSub.Close()
		return err
	}

	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, wlog, forwarder.Config{ForwarderTopic: forwarderTopic})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Go(func() {
		q.log.InfoContext(ctx, "events: forwarder started", "topic", forwarderTopic)
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
		}
	})

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// Publish stamps the caller's trace context onto msgs and sends them to topic.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	injectTrace(ctx, msgs)
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

func injectTrace(ctx context.Context, msgs []*message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
}

func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// Subscribe consumes topic in the background. A handler error is retried with
// exponential backoff; once retries run out the message is nacked and the
// error sent on the returned channel, which the caller must drain. Close
// waits for in-flight handlers.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errChannelSize)

	q.wg.Go(func() {
		defer close(errCh)

		for msg := range ch {
			msgCtx := extractTrace(ctx, msg)
			log := q.log.With(messageFields(topic, msg)...)

			if err := retryWithBackoff(msgCtx, msg, handler, q.maxRetries, q.retryDelay, log); err != nil {
				msg.Nack()
				select {
				case errCh <- fmt.Errorf("%s %s: %w", topic, msg.UUID, err):
				default:
					log.ErrorContext(msgCtx, "events: error channel full, dropping error", "error", err)
				}
				continue
			}
			msg.Ack()
		}
	})

	return errCh, nil
}

func messageFields(topic string, msg *message.Message) []any {
	args := []any{"topic", topic, "message_uuid", msg.UUID}
	for _, k := range logMetadataKeys {
		if v := msg.Metadata.Get(k); v != "" {
			args = append(args, k, v)
		}
	}
	return args
}

// retryWithBackoff calls handler up to maxRetries times, doubling the delay
// after each failure. It gives up early when ctx is done.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler func(context.Context, *message.Message) error,
	maxRetries int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", maxRetries, err)
}

func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits up to shutdownTimeout for
// in-flight handlers, then closes the publisher and the pool.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return q.db.Close()
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter. Watermill's
// trace level is folded into debug.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
