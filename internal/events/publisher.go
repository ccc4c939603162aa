// Package events publishes extracted records to Kafka for downstream
// consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"voc-insights-go/internal/types"
)

const EventTypeRecordSubmitted = "voc.record.submitted"

// RecordEvent is the message value of a submitted record.
type RecordEvent struct {
	EventType  string                 `json:"event_type"`
	EventID    string                 `json:"event_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Record     *types.ExtractedRecord `json:"record"`
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes RecordEvents keyed by conversation guid. When disabled it
// only logs.
type Publisher struct {
	writer  messageWriter
	topic   string
	enabled bool
	log     *logrus.Entry
	now     func() time.Time
	newID   func() string
}

func New(cfg Config, log *logrus.Entry, newID func() string) *Publisher {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	p := &Publisher{topic: cfg.Topic, log: log.WithField("component", "events"), now: time.Now, newID: newID}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		p.log.Info("Kafka disabled, using log-only mode")
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}
	p.enabled = true
	p.log.WithFields(logrus.Fields{"brokers": cfg.Brokers, "topic": cfg.Topic}).Info("Kafka publisher initialized")
	return p
}

// PublishRecord publishes rec to the record topic.
func (p *Publisher) PublishRecord(ctx context.Context, rec *types.ExtractedRecord) error {
	ev := RecordEvent{
		EventType:  EventTypeRecordSubmitted,
		OccurredAt: p.now().UTC(),
		Record:     rec,
	}
	if p.newID != nil {
		ev.EventID = p.newID()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{"topic": p.topic, "key": rec.GUID})
	log.WithField("bytes", len(payload)).Debug("publishing record event")

	if !p.enabled || p.writer == nil {
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(rec.GUID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(EventTypeRecordSubmitted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.WithError(err).Error("failed to write to Kafka")
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
