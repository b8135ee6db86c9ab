// Package events streams activity events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/metrics"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

// Event is one activity record as published on the topic.
type Event struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EmployeeID string         `json:"employee_id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(event Event)
	Close()
}

// Nop discards every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(Event) {}
func (Nop) Close()        {}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer       KafkaWriter
	events       chan Event
	logger       *zap.Logger
	metrics      *metrics.Metrics
	writeTimeout time.Duration
	closeChan    chan struct{}
	done         chan struct{}
	closeOnce    sync.Once
}

var _ Publisher = (*Producer)(nil)

type Config struct {
	Brokers      []string
	Topic        string
	QueueSize    int
	WriteTimeout time.Duration
}

// NewProducer starts a producer writing to cfg.Topic. The topic is created
// on first write when the cluster allows it.
func NewProducer(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		Topic:                  cfg.Topic,
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer, cfg, logger, m)
}

func newProducer(writer KafkaWriter, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Producer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	p := &Producer{
		writer:       writer,
		events:       make(chan Event, cfg.QueueSize),
		logger:       logger.Named("kafka_producer"),
		metrics:      m,
		writeTimeout: cfg.WriteTimeout,
		closeChan:    make(chan struct{}),
		done:         make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

func (p *Producer) Publish(event Event) {
	select {
	case <-p.closeChan:
		return
	default:
	}
	select {
	case p.events <- event:
	default:
		p.metrics.EventDropped()
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("action", event.Action),
			zap.String("entity_id", event.EntityID),
		)
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			p.sendEvent(event)
		case <-p.closeChan:
			// drain what was accepted before Close
			for {
				select {
				case event := <-p.events:
					p.sendEvent(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Producer) sendEvent(event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.metrics.SideEffectFailed(metrics.SideEffectEvent)
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("entity_id", event.EntityID),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityType + ":" + event.EntityID),
		Value: value,
		Time:  event.Timestamp,
	})
	if err != nil {
		p.metrics.SideEffectFailed(metrics.SideEffectEvent)
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("action", event.Action),
			zap.String("entity_id", event.EntityID),
		)
	}
}

// Close flushes queued events and closes the writer.
func (p *Producer) Close() {
	p.closeOnce.Do(func() {
		close(p.closeChan)
		<-p.done
		if err := p.writer.Close(); err != nil {
			p.logger.Error("Failed to close Kafka writer", zap.Error(err))
		}
	})
}
