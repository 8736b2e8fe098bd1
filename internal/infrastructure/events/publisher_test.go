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
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/entregas-api/internal/application/ledger"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func sampleTx() *entity.Transaction {
	return &entity.Transaction{
		ID:           "tx-1",
		Kind:         entity.TransactionKindIssue,
		CustomerID:   "c1",
		Counterparty: "Juan",
		Items:        []entity.LineItem{{ProductID: "p1", ProductName: "Cemento", Quantity: 4}},
		Timestamp:    time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublishTransactionRecorded_EscribeMensaje(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w)

	err := p.PublishTransactionRecorded(context.Background(), sampleTx(), []ledger.StockLevel{{ProductID: "p1", Name: "Cemento", Stock: 6}})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "tx-1", string(msg.Key))

	var ev TransactionRecorded
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, EventTypeTransactionRecorded, ev.EventType)
	assert.Equal(t, "issue", ev.Kind)
	assert.Equal(t, []StockLevel{{ProductID: "p1", Stock: 6}}, ev.UpdatedStock)
	assert.Equal(t, int64(4), ev.Items[0].Quantity)
}

func TestPublishTransactionRecorded_PropagaError(t *testing.T) {
	p := NewPublisher(&fakeWriter{err: errors.New("broker caído")})
	err := p.PublishTransactionRecorded(context.Background(), sampleTx(), nil)
	assert.ErrorContains(t, err, "tx-1")
}

func TestBuildMessage_InyectaTraceparent(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	msg, err := BuildMessage(ctx, sampleTx(), nil)
	require.NoError(t, err)

	carrier := headerCarrier(msg.Headers)
	assert.Equal(t, EventTypeTransactionRecorded, carrier.Get("event-type"))

	// Con el propagador global por defecto (no-op) no hay traceparent; con TraceContext sí.
	propagation.TraceContext{}.Inject(ctx, &carrier)
	assert.Contains(t, carrier.Get("traceparent"), sc.TraceID().String())
}
