package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

// blockingWriter holds every write until release is closed.
type blockingWriter struct {
	release chan struct{}
}

func (w *blockingWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-w.release
	return nil
}

func (w *blockingWriter) Close() error { return nil }

func testEvent() Event {
	return Event{
		ID:         "a1",
		Action:     "leave_approved",
		EmployeeID: "e1",
		EntityType: "leave_request",
		EntityID:   "r1",
		After:      map[string]any{"status": "approved"},
		Timestamp:  time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	}
}

func TestProducer_PublishWritesMessage(t *testing.T) {
	writer := new(MockKafkaWriter)
	var mu sync.Mutex
	var got []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, args.Get(1).([]kafka.Message)...)
	}).Return(nil)
	writer.On("Close").Return(nil)

	p := newProducer(writer, Config{}, zaptest.NewLogger(t), nil)
	p.Publish(testEvent())
	p.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "leave_request:r1", string(got[0].Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(got[0].Value, &decoded))
	assert.Equal(t, "leave_approved", decoded.Action)
	assert.Equal(t, "approved", decoded.After["status"])
	writer.AssertExpectations(t)
}

func TestProducer_DropsWhenQueueFull(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	writer := &blockingWriter{release: make(chan struct{})}
	p := newProducer(writer, Config{QueueSize: 1}, zap.New(core), nil)

	// the loop may already hold one event, so publish enough to overflow
	for i := 0; i < 3; i++ {
		p.Publish(testEvent())
	}

	assert.GreaterOrEqual(t, recorded.FilterMessage("Kafka producer queue full, dropping event").Len(), 1)
	close(writer.release)
	p.Close()
}

func TestProducer_WriteErrorLogged(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	writer := new(MockKafkaWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	writer.On("Close").Return(nil)

	p := newProducer(writer, Config{}, zap.New(core), nil)
	p.Publish(testEvent())
	p.Close()

	assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
}

func TestProducer_MarshalErrorLogged(t *testing.T) {
	orig := jsonMarshal
	defer func() { jsonMarshal = orig }()
	jsonMarshal = func(any) ([]byte, error) { return nil, errors.New("bad payload") }

	core, recorded := observer.New(zap.ErrorLevel)
	writer := new(MockKafkaWriter)
	writer.On("Close").Return(nil)

	p := newProducer(writer, Config{}, zap.New(core), nil)
	p.Publish(testEvent())
	p.Close()

	assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
	writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestProducer_CloseIsIdempotent(t *testing.T) {
	writer := new(MockKafkaWriter)
	writer.On("Close").Return(nil).Once()

	p := newProducer(writer, Config{}, zaptest.NewLogger(t), nil)
	p.Close()
	p.Close()
	p.Publish(testEvent())

	writer.AssertExpectations(t)
}
