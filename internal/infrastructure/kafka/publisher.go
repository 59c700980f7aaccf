// Package kafka publica los eventos de dominio en un tópico Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/kardex-api/internal/application/ports"
	"github.com/jhoicas/kardex-api/pkg/config"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// HeaderEventType header con el nombre del evento.
const HeaderEventType = "event-type"

// MessageWriter lo cumple *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher implementa ports.EventPublisher sobre kafka-go.
// La clave del mensaje es el ID del agregado para conservar el orden por venta o producto.
type Publisher struct {
	writer MessageWriter
}

// NewWriter construye el writer del tópico configurado.
func NewWriter(cfg config.KafkaConfig) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
}

// NewPublisher construye el publicador sobre un writer.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// PublishSaleCompleted publica sale.completed con clave = ID de la venta.
func (p *Publisher) PublishSaleCompleted(ctx context.Context, event ports.SaleCompletedEvent) error {
	msg, err := buildMessage(ctx, ports.EventSaleCompleted, event.SaleID, event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar %s: %w", ports.EventSaleCompleted, err)
	}
	return nil
}

// PublishMovementRecorded publica un mensaje por movimiento con clave = ID del producto.
func (p *Publisher) PublishMovementRecorded(ctx context.Context, events ...ports.MovementRecordedEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(events))
	for _, e := range events {
		msg, err := buildMessage(ctx, ports.EventMovementRecorded, e.ProductID, e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: publicar %s: %w", ports.EventMovementRecorded, err)
	}
	return nil
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// buildMessage serializa el evento en JSON e inyecta el contexto de traza en los headers.
func buildMessage(ctx context.Context, eventType, key string, payload any) (kafkago.Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("kafka: serializar %s: %w", eventType, err)
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := make([]kafkago.Header, 0, len(carrier)+1)
	headers = append(headers, kafkago.Header{Key: HeaderEventType, Value: []byte(eventType)})
	for k, v := range carrier {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(v)})
	}
	return kafkago.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	}, nil
}
