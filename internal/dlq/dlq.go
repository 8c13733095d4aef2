// Package dlq persists outbound requests the marketing platform
// rejected, so they can be inspected and replayed. Backed by NATS
// JetStream; safe across multiple service instances.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/marketbridge/marketbridge/internal/logging"
	"github.com/marketbridge/marketbridge/internal/metrics"
	"github.com/marketbridge/marketbridge/internal/model"
)

const (
	streamName    = "MARKETBRIDGE_DLQ"
	subjectPrefix = "marketbridge.dlq."
)

// FailedDelivery is one dead-lettered outbound request together with
// the rejection that put it there.
type FailedDelivery struct {
	ID        string                   `json:"id"`
	Timestamp time.Time                `json:"timestamp"`
	Kind      string                   `json:"kind"`
	UniqueID  string                   `json:"unique_id,omitempty"`
	Event     *model.EventAttributes   `json:"event,omitempty"`
	Profile   *model.ProfileAttributes `json:"profile,omitempty"`
	Error     string                   `json:"error"`
	Reason    string                   `json:"reason"`
	Attempts  int                      `json:"attempts"`
}

// JetStreamQueue writes failed deliveries to a JetStream stream.
type JetStreamQueue struct {
	js      jetstream.JetStream
	stream  jetstream.Stream
	log     *logging.Logger
	written uint64
}

// NewJetStreamQueue creates (or updates) the dead-letter stream on the
// given connection.
func NewJetStreamQueue(ctx context.Context, nc *nats.Conn, log *logging.Logger) (*JetStreamQueue, error) {
	if nc == nil {
		return nil, fmt.Errorf("nats connection is nil")
	}
	if log == nil {
		log = logging.Default()
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ">"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create dlq stream: %w", err)
	}

	log.Info("dead letter stream ready", logging.Stream(streamName))

	return &JetStreamQueue{
		js:     js,
		stream: stream,
		log:    log,
	}, nil
}

// Write records one rejected outbound request. Subject format:
// marketbridge.dlq.<reason>.
func (q *JetStreamQueue) Write(ctx context.Context, req *model.OutboundRequest, cause error, reason string) error {
	if q == nil {
		return nil
	}

	entry := FailedDelivery{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Kind:      string(req.Kind),
		UniqueID:  req.UniqueID(),
		Event:     req.Event,
		Profile:   req.Profile,
		Error:     cause.Error(),
		Reason:    reason,
		Attempts:  1,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal dlq entry: %w", err)
	}

	if _, err := q.js.Publish(ctx, subjectPrefix+reason, data); err != nil {
		return fmt.Errorf("publish dlq entry: %w", err)
	}

	atomic.AddUint64(&q.written, 1)
	metrics.DLQWritten.Inc()
	q.log.InfoContext(ctx, "dead lettered outbound request",
		logging.UniqueID(entry.UniqueID),
		logging.Reason(reason),
	)

	return nil
}

// Stats reports stream state for the dlq CLI commands.
func (q *JetStreamQueue) Stats(ctx context.Context) map[string]any {
	if q == nil {
		return map[string]any{"enabled": false}
	}

	info, err := q.stream.Info(ctx)
	if err != nil {
		return map[string]any{
			"enabled":       true,
			"written_local": atomic.LoadUint64(&q.written),
			"error":         err.Error(),
		}
	}

	return map[string]any{
		"enabled":        true,
		"written_local":  atomic.LoadUint64(&q.written),
		"total_messages": info.State.Msgs,
		"total_bytes":    info.State.Bytes,
		"first_seq":      info.State.FirstSeq,
		"last_seq":       info.State.LastSeq,
	}
}

// List reads up to limit dead-lettered entries without acking them.
func (q *JetStreamQueue) List(ctx context.Context, limit int) ([]FailedDelivery, error) {
	if q == nil {
		return nil, fmt.Errorf("dlq not enabled")
	}
	if limit <= 0 {
		limit = 100
	}

	consumer, err := q.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: subjectPrefix + ">",
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxDeliver:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("create list consumer: %w", err)
	}

	msgs, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	var entries []FailedDelivery
	for msg := range msgs.Messages() {
		var entry FailedDelivery
		if err := json.Unmarshal(msg.Data(), &entry); err != nil {
			q.log.Warn("skipping unparseable dlq entry", logging.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Purge drops every entry in the stream.
func (q *JetStreamQueue) Purge(ctx context.Context) error {
	if q == nil {
		return fmt.Errorf("dlq not enabled")
	}
	if err := q.stream.Purge(ctx); err != nil {
		return fmt.Errorf("purge dlq stream: %w", err)
	}
	return nil
}
