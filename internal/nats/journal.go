package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/pkg/metrics"
)

const (
	// DefaultStreamName is the name of the turn journal stream.
	DefaultStreamName = "TRIP_TURNS"

	// SubjectPrefix is the prefix for all journal subjects.
	SubjectPrefix = "trip"

	maxFetch = 200
)

// Journal appends turn events to a JetStream stream and reads them back.
type Journal struct {
	client *Client
	stream string
	maxAge time.Duration
}

// NewJournal creates a journal over the named stream.
func NewJournal(client *Client, stream string, maxAge time.Duration) *Journal {
	if stream == "" {
		stream = DefaultStreamName
	}
	return &Journal{client: client, stream: stream, maxAge: maxAge}
}

// EnsureStream creates the journal stream if it does not exist.
func (j *Journal) EnsureStream(ctx context.Context) error {
	js := j.client.JetStream()

	if _, err := js.Stream(ctx, j.stream); err == nil {
		return nil
	} else if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        j.stream,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      j.maxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Conversation turns and session resets",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// TurnSubject returns the subject for a session's turn events.
func TurnSubject(sessionID string) string {
	return fmt.Sprintf("%s.%s.turn", SubjectPrefix, sessionID)
}

// ResetSubject returns the subject for a session's reset events.
func ResetSubject(sessionID string) string {
	return fmt.Sprintf("%s.%s.reset", SubjectPrefix, sessionID)
}

// PublishTurn appends a turn event and returns its stream sequence.
func (j *Journal) PublishTurn(ctx context.Context, event *model.TurnEvent) (uint64, error) {
	if err := model.ValidateSessionID(event.SessionID); err != nil {
		return 0, err
	}
	return j.publish(ctx, TurnSubject(event.SessionID), event)
}

// PublishReset records a session reset.
func (j *Journal) PublishReset(ctx context.Context, event *model.ResetEvent) (uint64, error) {
	if err := model.ValidateSessionID(event.SessionID); err != nil {
		return 0, err
	}
	return j.publish(ctx, ResetSubject(event.SessionID), event)
}

func (j *Journal) publish(ctx context.Context, subject string, v any) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}
	ack, err := j.client.JetStream().Publish(ctx, subject, data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack.Sequence, nil
}

// ListTurns returns up to limit turn events of a session after the given
// stream sequence.
func (j *Journal) ListTurns(ctx context.Context, sessionID string, afterSequence uint64, limit int) (*model.ListTurnsResponse, error) {
	if err := model.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxFetch {
		limit = maxFetch
	}

	cfg := jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{TurnSubject(sessionID)},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	}
	if afterSequence > 0 {
		cfg.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		cfg.OptStartSeq = afterSequence + 1
	}

	consumer, err := j.client.JetStream().OrderedConsumer(ctx, j.stream, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch turns: %w", err)
	}

	resp := &model.ListTurnsResponse{Turns: []model.TurnEvent{}}
	for msg := range batch.Messages() {
		var event model.TurnEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			continue
		}
		if meta, err := msg.Metadata(); err == nil {
			event.Sequence = meta.Sequence.Stream
			resp.LastSequence = meta.Sequence.Stream
		}
		resp.Turns = append(resp.Turns, event)
	}
	if err := batch.Error(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, jetstream.ErrNoMessages) {
		return nil, fmt.Errorf("batch error: %w", err)
	}

	resp.HasMore = len(resp.Turns) == limit
	return resp, nil
}

// RecordStats publishes stream size gauges.
func (j *Journal) RecordStats(ctx context.Context) error {
	s, err := j.client.JetStream().Stream(ctx, j.stream)
	if err != nil {
		return fmt.Errorf("failed to look up stream: %w", err)
	}
	info, err := s.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stream info: %w", err)
	}
	metrics.NATSStreamMessages.WithLabelValues(j.stream).Set(float64(info.State.Msgs))
	metrics.NATSStreamBytes.WithLabelValues(j.stream).Set(float64(info.State.Bytes))
	return nil
}

// Healthy reports whether the connection is up.
func (j *Journal) Healthy() bool {
	return j.client.IsConnected()
}
