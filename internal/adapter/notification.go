package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/platform/kafka"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// EventSource identifies this service in published CloudEvents.
	EventSource = "catchify/service-booking"
	// BookingConfirmed is the CloudEvent type of a committed booking.
	BookingConfirmed = "booking.confirmed"
)

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// KafkaDispatcher hands confirmations to the notification service through
// Kafka. Events are keyed by booking reference.
type KafkaDispatcher struct {
	publisher EventPublisher
	topic     string
	logger    *zap.Logger
}

// NewKafkaDispatcher creates a new KafkaDispatcher.
func NewKafkaDispatcher(publisher EventPublisher, topic string, logger *zap.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{publisher: publisher, topic: topic, logger: logger}
}

// Send publishes a booking.confirmed event.
func (d *KafkaDispatcher) Send(ctx context.Context, c booking.Confirmation) error {
	ce, err := kafka.NewCloudEvent(EventSource, BookingConfirmed, c)
	if err != nil {
		return fmt.Errorf("build booking.confirmed event: %w", err)
	}
	ce.Subject = c.Reference
	if err := d.publisher.PublishEvent(ctx, d.topic, ce); err != nil {
		return fmt.Errorf("publish booking.confirmed: %w", err)
	}
	d.logger.Debug("booking confirmation published",
		zap.String("booking_ref", c.Reference),
		zap.String("topic", d.topic),
	)
	return nil
}

// AMQPDispatcher publishes confirmations to a durable RabbitMQ queue. It
// dials per message, which keeps it free of reconnect state.
type AMQPDispatcher struct {
	url    string
	queue  string
	logger *zap.Logger
}

// NewAMQPDispatcher creates a new AMQPDispatcher.
func NewAMQPDispatcher(url, queue string, logger *zap.Logger) *AMQPDispatcher {
	return &AMQPDispatcher{url: url, queue: queue, logger: logger}
}

// Send publishes the confirmation as a persistent JSON message.
func (d *AMQPDispatcher) Send(ctx context.Context, c booking.Confirmation) error {
	conn, err := amqp.DialConfig(d.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout(ctx))})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(d.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    c.Reference,
		Type:         BookingConfirmed,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", d.queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	d.logger.Debug("booking confirmation queued",
		zap.String("booking_ref", c.Reference),
		zap.String("queue", d.queue),
	)
	return nil
}

func dialTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
	}
	return 5 * time.Second
}

// LogDispatcher only logs confirmations. Used in development.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a new LogDispatcher.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Send logs the confirmation.
func (d *LogDispatcher) Send(_ context.Context, c booking.Confirmation) error {
	d.logger.Info("[NOTIFY] booking confirmation",
		zap.String("booking_ref", c.Reference),
		zap.String("email", c.Email),
		zap.Int("seats", len(c.Seats)),
		zap.Int64("net_total", c.NetTotal),
		zap.String("payment_method", string(c.PaymentMethod)),
	)
	return nil
}
