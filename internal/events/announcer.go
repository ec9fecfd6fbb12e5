// Package events announces completed orders on Kafka for downstream
// consumers (fulfilment, analytics). Like webhook delivery this is best
// effort: a broker failure is logged and never fails the submission.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

const topicOrderCompleted = "order-completed"

type orderCompletedEvent struct {
	OrderID     string             `json:"order_id"`
	OrderCode   string             `json:"order_code"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Lines       []domain.OrderLine `json:"lines"`
	CompletedAt time.Time          `json:"completed_at"`
}

// messageWriter is the slice of kafka.Writer the announcer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Announcer struct {
	writer messageWriter
	logger *zap.Logger
}

func NewAnnouncer(logger *zap.Logger, brokers ...string) *Announcer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topicOrderCompleted,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Announcer{writer: w, logger: logger}
}

// OrderCompleted publishes the event keyed by order id for ordering.
func (a *Announcer) OrderCompleted(ctx context.Context, order *domain.Order) error {
	event := orderCompletedEvent{
		OrderID:     order.ID.String(),
		OrderCode:   order.Code,
		TotalAmount: order.TotalAmount,
		Lines:       order.Lines,
		CompletedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(topicOrderCompleted)},
		},
	}

	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		a.logger.Warn("failed to publish order-completed event",
			zap.String("order_code", order.Code),
			zap.Error(err))
		return err
	}

	a.logger.Info("order-completed event published", zap.String("order_code", order.Code))
	return nil
}

func (a *Announcer) Close() error {
	return a.writer.Close()
}
