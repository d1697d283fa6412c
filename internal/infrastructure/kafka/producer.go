package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Writer is the part of *kafkago.Writer the producer uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer keeps one lazily created writer per topic.
type Producer struct {
	mu        sync.Mutex
	writers   map[string]Writer
	brokers   []string
	newWriter func(topic string) Writer
}

func NewProducer(brokers []string) *Producer {
	p := &Producer{writers: make(map[string]Writer), brokers: brokers}
	p.newWriter = p.tcpWriter
	return p
}

// NewProducerWithWriters builds writers through fn instead of dialing the brokers.
func NewProducerWithWriters(fn func(topic string) Writer) *Producer {
	return &Producer{writers: make(map[string]Writer), newWriter: fn}
}

func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	w := p.writer(topic)

	out := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		km := kafkago.Message{Key: msg.Key, Value: msg.Value}
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
		out = append(out, km)
	}

	if err := w.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for topic %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]Writer)
	return firstErr
}

func (p *Producer) writer(topic string) Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := p.newWriter(topic)
	p.writers[topic] = w
	return w
}

func (p *Producer) tcpWriter(topic string) Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
}
