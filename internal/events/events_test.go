package events

import (
	"context"
	"errors"
	"testing"

	"slotkeeper/pkg/daytime"
	"slotkeeper/pkg/kafka"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/middleware"
	"slotkeeper/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	messages []kafka.Message
	err      error
}

func (r *recordingProducer) Publish(ctx context.Context, msg kafka.Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func testBooking() *model.Booking {
	return &model.Booking{
		ID:           "b-1",
		SpecialistID: "sp-1",
		ClientID:     "c-1",
		Date:         "2026-10-26",
		Start:        daytime.MustParseMinute("10:00"),
		End:          daytime.MustParseMinute("10:30"),
		Status:       model.StatusCancelled,
	}
}

func TestKafkaPublisher_BookingStatusChanged(t *testing.T) {
	producer := &recordingProducer{}
	p := NewKafkaPublisher(producer, logger.NewNop())

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	p.BookingStatusChanged(ctx, testBooking(), model.StatusConfirmed, model.AdminActor())

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "sp-1", msg.Key)
	assert.Equal(t, TypeBookingStatusChanged, msg.GetEventType())
	assert.Equal(t, "req-42", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.GetEventID())

	var payload BookingStatusChangedPayload
	require.NoError(t, msg.DecodeValue(&payload))
	assert.Equal(t, model.StatusConfirmed, payload.From)
	assert.Equal(t, model.StatusCancelled, payload.To)
	assert.Equal(t, model.RoleAdmin, payload.ChangedBy)
	assert.Equal(t, "b-1", payload.Booking.ID)
}

func TestKafkaPublisher_FailureIsSwallowed(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	p := NewKafkaPublisher(producer, logger.NewNop())

	assert.NotPanics(t, func() {
		p.BlockCreated(context.Background(), &model.BlockedInterval{ID: "blk-1", SpecialistID: "sp-1"})
	})
	require.Len(t, producer.messages, 1)
	assert.Equal(t, TypeBlockCreated, producer.messages[0].GetEventType())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NotPanics(t, func() {
		p.BookingCreated(context.Background(), testBooking())
		p.BlockRemoved(context.Background(), &model.BlockedInterval{})
	})
}
