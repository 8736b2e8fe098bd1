// Package events publica en Kafka las transacciones de stock ya confirmadas.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/entregas-api/internal/application/ledger"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
	"github.com/jhoicas/entregas-api/pkg/config"
)

// EventTypeTransactionRecorded tipo de evento en el header event-type.
const EventTypeTransactionRecorded = "stock.transaction.recorded"

// MessageWriter subconjunto de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TransactionRecorded payload JSON del evento.
type TransactionRecorded struct {
	EventType     string            `json:"event_type"`
	TransactionID string            `json:"transaction_id"`
	Kind          string            `json:"kind"`
	CustomerID    string            `json:"customer_id"`
	Counterparty  string            `json:"counterparty"`
	WarehouseID   string            `json:"warehouse_id,omitempty"`
	Items         []entity.LineItem `json:"items"`
	UpdatedStock  []StockLevel      `json:"updated_stock"`
	Actor         string            `json:"actor,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// StockLevel stock resultante en el payload.
type StockLevel struct {
	ProductID string `json:"product_id"`
	Stock     int64  `json:"stock"`
}

var _ ledger.EventPublisher = (*Publisher)(nil)

// Publisher implementa ledger.EventPublisher sobre kafka-go.
type Publisher struct {
	writer MessageWriter
}

// NewKafkaWriter construye el writer. Los mensajes se particionan por ID de transacción.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewPublisher construye el publicador.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// PublishTransactionRecorded escribe el evento. El contexto de traza viaja en los headers.
func (p *Publisher) PublishTransactionRecorded(ctx context.Context, tx *entity.Transaction, levels []ledger.StockLevel) error {
	msg, err := BuildMessage(ctx, tx, levels)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write %s: %w", tx.ID, err)
	}
	return nil
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// BuildMessage arma el mensaje Kafka: key = ID de transacción, value = JSON, headers con event-type y traceparent.
func BuildMessage(ctx context.Context, tx *entity.Transaction, levels []ledger.StockLevel) (kafka.Message, error) {
	stock := make([]StockLevel, 0, len(levels))
	for _, l := range levels {
		stock = append(stock, StockLevel{ProductID: l.ProductID, Stock: l.Stock})
	}
	payload, err := json.Marshal(TransactionRecorded{
		EventType:     EventTypeTransactionRecorded,
		TransactionID: tx.ID,
		Kind:          string(tx.Kind),
		CustomerID:    tx.CustomerID,
		Counterparty:  tx.Counterparty,
		WarehouseID:   tx.WarehouseID,
		Items:         tx.Items,
		UpdatedStock:  stock,
		Actor:         tx.Actor,
		OccurredAt:    tx.Timestamp,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("events: encode: %w", err)
	}

	carrier := headerCarrier{{Key: "event-type", Value: []byte(EventTypeTransactionRecorded)}}
	otel.GetTextMapPropagator().Inject(ctx, &carrier)

	return kafka.Message{
		Key:     []byte(tx.ID),
		Value:   payload,
		Headers: carrier,
	}, nil
}

// headerCarrier adapta los headers de kafka-go a propagation.TextMapCarrier.
type headerCarrier []kafka.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
