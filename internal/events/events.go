// Package events publishes domain events after the write that produced
// them has committed. Publishing never fails the request: errors are
// logged and counted.
package events

import (
	"context"
	"time"

	"slotkeeper/pkg/kafka"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/middleware"
	"slotkeeper/pkg/model"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBlockCreated         = "block.created"
	TypeBlockRemoved         = "block.removed"

	SchemaVersion = "1"
	Source        = "slotkeeper"
)

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus, actor model.Actor)
	BlockCreated(ctx context.Context, block *model.BlockedInterval)
	BlockRemoved(ctx context.Context, block *model.BlockedInterval)
}

type BookingStatusChangedPayload struct {
	Booking   *model.Booking      `json:"booking"`
	From      model.BookingStatus `json:"from"`
	To        model.BookingStatus `json:"to"`
	ChangedBy model.ActorRole     `json:"changed_by"`
}

type BlockRemovedPayload struct {
	Block     *model.BlockedInterval `json:"block"`
	RemovedAt time.Time              `json:"removed_at"`
}

type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher keys every event by specialist id so one specialist's
// events stay ordered within a partition.
type KafkaPublisher struct {
	producer MessagePublisher
	log      *logger.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer MessagePublisher, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *KafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingCreated, booking.SpecialistID, booking)
}

func (p *KafkaPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus, actor model.Actor) {
	p.publish(ctx, TypeBookingStatusChanged, booking.SpecialistID, BookingStatusChangedPayload{
		Booking:   booking,
		From:      from,
		To:        booking.Status,
		ChangedBy: actor.Role,
	})
}

func (p *KafkaPublisher) BlockCreated(ctx context.Context, block *model.BlockedInterval) {
	p.publish(ctx, TypeBlockCreated, block.SpecialistID, block)
}

func (p *KafkaPublisher) BlockRemoved(ctx context.Context, block *model.BlockedInterval) {
	p.publish(ctx, TypeBlockRemoved, block.SpecialistID, BlockRemovedPayload{
		Block:     block,
		RemovedAt: time.Now().UTC(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, key string, payload any) {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		p.log.Error("Failed to build event", "event_type", eventType, "key", key, "error", err)
		return
	}

	// The request may already be finishing; the event must still go out.
	if err := p.producer.Publish(context.WithoutCancel(ctx), msg); err != nil {
		p.log.Error("Failed to publish event",
			"event_type", eventType,
			"event_id", msg.GetEventID(),
			"key", key,
			"error", err,
		)
	}
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) BookingCreated(context.Context, *model.Booking) {}

func (NopPublisher) BookingStatusChanged(context.Context, *model.Booking, model.BookingStatus, model.Actor) {
}

func (NopPublisher) BlockCreated(context.Context, *model.BlockedInterval) {}

func (NopPublisher) BlockRemoved(context.Context, *model.BlockedInterval) {}
