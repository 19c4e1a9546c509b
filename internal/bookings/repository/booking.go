package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/internal/bookings/lifecycle"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	"slotkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	// FindOccupying returns the PENDING and CONFIRMED bookings of one
	// specialist's day ordered by start.
	FindOccupying(ctx context.Context, specialistID, date string) ([]*model.Booking, error)
	// UpdateStatus moves the booking from one status to another. It fails
	// with ErrStatusChanged when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error)
	Search(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, error)
	Count(ctx context.Context, filter *model.BookingFilter) (int64, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindOccupying(ctx context.Context, specialistID, date string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"specialist_id": specialistID,
		"date":          date,
		"status":        bson.M{"$in": lifecycle.OccupyingStatuses()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_min", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find occupying bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check booking existence: %w", err)
	}
	if n == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return nil, bookingserrors.ErrStatusChanged
}

func (r *mongoBookingRepository) Search(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	order := 1
	if filter.Scope == model.ScopePast {
		order = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: order}, {Key: "start_min", Value: order}}).
		SetLimit(int64(filter.Limit)).
		SetSkip(filter.Offset)

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// buildSearchFilter expects From and To to already carry the scope bounds.
func buildSearchFilter(filter *model.BookingFilter) bson.M {
	query := bson.M{}
	if filter.SpecialistID != "" {
		query["specialist_id"] = filter.SpecialistID
	}
	if filter.ClientID != "" {
		query["client_id"] = filter.ClientID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	dates := bson.M{}
	if filter.From != "" {
		dates["$gte"] = filter.From
	}
	if filter.To != "" {
		dates["$lte"] = filter.To
	}
	if len(dates) > 0 {
		query["date"] = dates
	}
	return query
}
