// Package events publishes activity events to Kafka without ever blocking
// the request path: messages are buffered in-process, written by a single
// background goroutine, and dropped (with a log line) when the buffer is full.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventSaleCreated   = "SaleCreated"
	EventSalePaid      = "SalePaid"
	EventSaleDeleted   = "SaleDeleted"
	EventStockReceived = "StockReceived"
	EventStockDeducted = "StockDeducted"
)

// Envelope is the wire format for every published event.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

type Producer struct {
	w       *kafka.Writer
	service string
	inbox   chan kafka.Message
	done    chan struct{}
}

func NewProducer(brokers []string, topic, service string, buf int) *Producer {
	if buf <= 0 {
		buf = 256
	}
	p := &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		service: service,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *Producer) loop() {
	defer close(p.done)
	for m := range p.inbox {
		if err := p.w.WriteMessages(context.Background(), m); err != nil {
			log.Printf("events: write %s: %v", string(m.Key), err)
		}
	}
	if err := p.w.Close(); err != nil {
		log.Printf("events: close writer: %v", err)
	}
}

// Publish enqueues one event. It never blocks; when the buffer is full the
// event is dropped and counted only in the log.
func (p *Producer) Publish(eventType string, key string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("events: marshal %s payload: %v", eventType, err)
		return
	}
	env := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Producer:   p.service,
		Payload:    raw,
	}
	value, err := json.Marshal(env)
	if err != nil {
		log.Printf("events: marshal %s envelope: %v", eventType, err)
		return
	}
	select {
	case p.inbox <- kafka.Message{Key: []byte(key), Value: value, Time: env.OccurredAt}:
	default:
		log.Printf("events: buffer full, dropping %s for %s", eventType, key)
	}
}

// Close flushes buffered events and shuts the writer down.
func (p *Producer) Close() {
	close(p.inbox)
	<-p.done
}
