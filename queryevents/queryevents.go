// Package queryevents best-effort-publishes one JSON event per executed
// query onto a Kafka topic, for the out-of-scope external evaluation
// harness to consume (spec.md §1 places building that harness itself out of
// scope; this package only produces events for it). Grounded on
// Adithya-.../pkg/kafka/producer.go's Writer setup and JSON-encode-then-
// WriteMessages publish path, and internal/ingestion/publisher's
// log-on-error, non-fatal publish policy.
package queryevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is the JSON payload published for one executed query.
type Event struct {
	QueryID     string    `json:"query_id,omitempty"`
	TermIDs     []uint32  `json:"term_ids"`
	K           int       `json:"k"`
	Driver      string    `json:"driver"`
	LatencyMS   float64   `json:"latency_ms"`
	ResultCount int       `json:"result_count"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// Publisher writes Events to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher creates a Publisher writing to topic across brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	return &Publisher{writer: w, logger: slog.Default().With("component", "queryevents")}
}

// Publish serializes and writes ev, keyed by its query id. Marshal errors
// and errors WriteMessages returns are logged, not propagated: event
// publication is a best-effort side channel, never a reason to fail the
// query that produced it. The writer is asynchronous, so errors from the
// delivery itself are not reported here.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("marshaling query event", "error", err)
		return
	}
	msg := kafka.Message{Key: []byte(keyFor(ev)), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publishing query event", "query_id", ev.QueryID, "error", err)
	}
}

func keyFor(ev Event) string {
	if ev.QueryID != "" {
		return ev.QueryID
	}
	return fmt.Sprintf("driver=%s;k=%d", ev.Driver, ev.K)
}

// Close flushes pending writes and closes the underlying writer.
func (p *Publisher) Close() error { return p.writer.Close() }
