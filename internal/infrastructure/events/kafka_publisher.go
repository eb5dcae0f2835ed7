package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/lotes-api/internal/application/ports"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// KafkaConfig conexión y nombres de tópicos.
type KafkaConfig struct {
	Brokers      []string
	TopicPrefix  string
	BatchTimeout time.Duration
}

// KafkaPublisher publica eventos del motor en Kafka, un tópico por tipo de evento
// (<prefijo>.<tipo>, p. ej. lotes.lot.expired). La llave del mensaje es el Subject.
type KafkaPublisher struct {
	config  KafkaConfig
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaPublisher construye el publicador. Los writers se crean bajo demanda.
func NewKafkaPublisher(config KafkaConfig) *KafkaPublisher {
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 50 * time.Millisecond
	}
	return &KafkaPublisher{config: config, writers: make(map[string]*kafka.Writer)}
}

// Publish agrupa los eventos por tópico y los escribe de forma síncrona.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	byTopic := make(map[string][]kafka.Message)
	for _, e := range events {
		msg, err := buildMessage(e)
		if err != nil {
			return err
		}
		topic := TopicFor(p.config.TopicPrefix, e.Type)
		byTopic[topic] = append(byTopic[topic], msg)
	}
	var errs []error
	for topic, msgs := range byTopic {
		if err := p.writer(topic).WriteMessages(ctx, msgs...); err != nil {
			errs = append(errs, fmt.Errorf("publicar en %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}

// Close cierra todos los writers abiertos.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cerrar writer %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}

func (p *KafkaPublisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           p.config.BatchTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = w
	return w
}

// TopicFor nombre del tópico de un tipo de evento.
func TopicFor(prefix, eventType string) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

func buildMessage(e ports.Event) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serializar evento: %w", err)
	}
	return kafka.Message{
		Key:   []byte(e.Subject),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(e.ID)},
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "company-id", Value: []byte(e.CompanyID)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: e.OccurredAt,
	}, nil
}
