package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"learnhub/internal/config"
	"learnhub/internal/model"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const EventTypePaymentSucceeded = "payment.succeeded"

type PaymentSucceeded struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Reference      string    `json:"reference"`
	UserID         uint      `json:"user_id"`
	ProductKind    string    `json:"product_kind"`
	ProductID      uint      `json:"product_id"`
	PaidPrice      int64     `json:"paid_price"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	PaymentMethod  string    `json:"payment_method"`
	ConfirmationID string    `json:"confirmation_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewPaymentSucceeded builds the event for a stored payment.
func NewPaymentSucceeded(payment *model.Payment) PaymentSucceeded {
	kind, productID := model.ProductKindCourse, uint(0)
	if payment.CourseID != nil {
		productID = *payment.CourseID
	} else if payment.LessonID != nil {
		kind, productID = model.ProductKindLesson, *payment.LessonID
	}

	return PaymentSucceeded{
		EventID:        uuid.NewString(),
		EventType:      EventTypePaymentSucceeded,
		Reference:      payment.Reference,
		UserID:         payment.UserID,
		ProductKind:    string(kind),
		ProductID:      productID,
		PaidPrice:      payment.PaidPrice,
		Amount:         decimal.New(payment.PaidPrice, -2).StringFixed(2),
		Currency:       payment.Currency,
		PaymentMethod:  payment.PaymentMethod,
		ConfirmationID: payment.ConfirmationID,
		OccurredAt:     payment.CreatedAt.UTC(),
	}
}

type Publisher interface {
	PublishPaymentSucceeded(ctx context.Context, event PaymentSucceeded) error
	Close() error
}

type kafkaPublisherImpl struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

// NewPublisher connects a Kafka producer, or returns a publisher that drops events
// when no brokers are configured.
func NewPublisher(cfg config.Kafka, log *zap.Logger) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		log.Info("kafka brokers not configured, payment events disabled")
		return NoopPublisher{}, nil
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is empty")
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	log.Info("kafka producer initialized", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return NewKafkaPublisher(producer, cfg.Topic, log), nil
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) Publisher {
	return &kafkaPublisherImpl{
		producer: producer,
		topic:    topic,
		log:      log.Named("events"),
	}
}

func (p *kafkaPublisherImpl) PublishPaymentSucceeded(ctx context.Context, event PaymentSucceeded) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Reference),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	p.log.Debug("payment event published",
		zap.String("event_id", event.EventID),
		zap.String("reference", event.Reference),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)

	return nil
}

func (p *kafkaPublisherImpl) Close() error {
	return p.producer.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishPaymentSucceeded(context.Context, PaymentSucceeded) error { return nil }
func (NoopPublisher) Close() error                                                    { return nil }
