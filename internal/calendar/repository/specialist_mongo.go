package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	calendarerrors "slotkeeper/internal/calendar/errors"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	"slotkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Specialists"
)

type mongoSpecialistRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSpecialistRepository(cfg *config.Config) SpecialistRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSpecialistRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSpecialistRepository) FindByID(ctx context.Context, id string) (*model.Specialist, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var sp model.Specialist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, calendarerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find specialist: %w", err)
	}

	return &sp, nil
}

func (r *mongoSpecialistRepository) Upsert(ctx context.Context, sp *model.Specialist) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":       sp.Name,
			"time_zone":  sp.TimeZone,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"schedule":   []model.WorkingDay{},
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored model.Specialist
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": sp.ID}, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("failed to upsert specialist: %w", err)
	}

	*sp = stored
	return nil
}

func (r *mongoSpecialistRepository) SetWorkingDay(ctx context.Context, specialistID string, day model.WorkingDay) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": specialistID, "schedule.day": day.Day},
		bson.M{"$set": bson.M{"schedule.$": day, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to update working day: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	result, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": specialistID},
		bson.M{"$push": bson.M{"schedule": day}, "$set": bson.M{"updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to add working day: %w", err)
	}
	if result.MatchedCount == 0 {
		return calendarerrors.ErrNotFound
	}

	return nil
}

func (r *mongoSpecialistRepository) RemoveWorkingDay(ctx context.Context, specialistID string, day int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": specialistID},
		bson.M{
			"$pull": bson.M{"schedule": bson.M{"day": day}},
			"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove working day: %w", err)
	}
	if result.MatchedCount == 0 {
		return calendarerrors.ErrNotFound
	}

	return nil
}
