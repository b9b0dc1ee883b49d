package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/catchify/service-booking/internal/application"
	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/platform/domain"
	"github.com/catchify/service-booking/internal/platform/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Schedule event types.
const (
	SeatMapProvisioned = "schedule.seatmap_provisioned"
)

// SeatMapProvisionedEvent announces a new showing and its seat layout.
type SeatMapProvisionedEvent struct {
	ScheduleID      uuid.UUID               `json:"schedule_id"`
	EventID         uuid.UUID               `json:"event_id"`
	EventName       string                  `json:"event_name"`
	Genre           string                  `json:"genre"`
	Language        string                  `json:"language"`
	DurationMinutes int                     `json:"duration_minutes"`
	VenueName       string                  `json:"venue_name"`
	StartsAt        time.Time               `json:"starts_at"`
	Blocks          []application.SeatBlock `json:"blocks"`
}

// SeatProvisioner creates seats for a showing.
type SeatProvisioner interface {
	ProvisionSeats(ctx context.Context, req application.ProvisionRequest) (int64, error)
}

// ScheduleEventConsumer listens to schedule events and provisions seats.
type ScheduleEventConsumer struct {
	consumer    *kafka.Consumer
	provisioner SeatProvisioner
	logger      *zap.Logger
}

// NewScheduleEventConsumer creates a new consumer for schedule events.
func NewScheduleEventConsumer(
	brokers []string,
	groupID string,
	topic string,
	provisioner SeatProvisioner,
	logger *zap.Logger,
) *ScheduleEventConsumer {
	return &ScheduleEventConsumer{
		consumer:    kafka.NewConsumer(brokers, groupID, topic, logger),
		provisioner: provisioner,
		logger:      logger,
	}
}

// Start begins consuming schedule events. It blocks until the context is cancelled.
func (c *ScheduleEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
func (c *ScheduleEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from schedule topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return kafka.Permanent(err)
	}

	c.logger.Info("received schedule event",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	switch {
	case strings.EqualFold(cloudEvent.Type, SeatMapProvisioned):
		return c.handleSeatMapProvisioned(ctx, cloudEvent)

	default:
		c.logger.Debug("ignoring unhandled schedule event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// handleSeatMapProvisioned processes a SeatMapProvisionedEvent. Malformed
// events are permanent failures; storage errors are left to the consumer's
// retry.
func (c *ScheduleEventConsumer) handleSeatMapProvisioned(ctx context.Context, ce kafka.CloudEvent) error {
	var event SeatMapProvisionedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse SeatMapProvisionedEvent data", zap.Error(err))
		return kafka.Permanent(err)
	}
	if event.ScheduleID == uuid.Nil || event.EventID == uuid.Nil {
		return kafka.Permanent(fmt.Errorf("seat map event %s has no schedule or event id", ce.ID))
	}

	_, err := c.provisioner.ProvisionSeats(ctx, application.ProvisionRequest{
		Showing: booking.Showing{
			ScheduleID:      event.ScheduleID,
			EventID:         event.EventID,
			EventName:       event.EventName,
			Genre:           event.Genre,
			Language:        event.Language,
			DurationMinutes: event.DurationMinutes,
			VenueName:       event.VenueName,
			StartsAt:        event.StartsAt,
		},
		Blocks: event.Blocks,
	})
	if errors.Is(err, domain.ErrValidation) {
		return kafka.Permanent(err)
	}
	return err
}

// Close closes the underlying Kafka consumer.
func (c *ScheduleEventConsumer) Close() error {
	return c.consumer.Close()
}
