package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voc-insights-go/internal/types"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNew_DisabledMode(t *testing.T) {
	for name, cfg := range map[string]Config{
		"disabled":   {Enabled: false, Brokers: []string{"localhost:9092"}},
		"no brokers": {Enabled: true},
	} {
		t.Run(name, func(t *testing.T) {
			p := New(cfg, nil, nil)
			assert.False(t, p.enabled)
			assert.Nil(t, p.writer)
			assert.NoError(t, p.PublishRecord(context.Background(), &types.ExtractedRecord{GUID: "0000"}))
			assert.NoError(t, p.Close())
		})
	}
}

func TestPublishRecord(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{
		writer: w, topic: "voc.records", enabled: true,
		log:   New(Config{}, nil, nil).log,
		now:   func() time.Time { return time.Date(2024, 10, 2, 9, 0, 0, 0, time.UTC) },
		newID: func() string { return "evt-1" },
	}

	require.NoError(t, p.PublishRecord(context.Background(), &types.ExtractedRecord{GUID: "0000", Agent: "MelodyL"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "0000", string(w.msgs[0].Key))

	var ev RecordEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, EventTypeRecordSubmitted, ev.EventType)
	assert.Equal(t, "evt-1", ev.EventID)
	assert.Equal(t, "MelodyL", ev.Record.Agent)

	w.err = errors.New("leader not available")
	assert.Error(t, p.PublishRecord(context.Background(), &types.ExtractedRecord{GUID: "0001"}))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNew_Enabled(t *testing.T) {
	p := New(Config{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "voc.records"}, nil, nil)
	assert.True(t, p.enabled)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "voc.records", w.Topic)
	assert.NoError(t, p.Close())
}
