package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	blockserrors "slotkeeper/internal/blocks/errors"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	"slotkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Blocked_intervals"

type BlockRepository interface {
	Create(ctx context.Context, block *model.BlockedInterval) error
	FindByID(ctx context.Context, id string) (*model.BlockedInterval, error)
	// FindByDay returns the blocks of one specialist's day ordered by start.
	FindByDay(ctx context.Context, specialistID, date string) ([]*model.BlockedInterval, error)
	Delete(ctx context.Context, id string) error
}

type mongoBlockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBlockRepository(cfg *config.Config) BlockRepository {
	return &mongoBlockRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoBlockRepository) Create(ctx context.Context, block *model.BlockedInterval) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	block.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, block); err != nil {
		return fmt.Errorf("failed to create blocked interval: %w", err)
	}
	return nil
}

func (r *mongoBlockRepository) FindByID(ctx context.Context, id string) (*model.BlockedInterval, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var block model.BlockedInterval
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&block); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, blockserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find blocked interval: %w", err)
	}
	return &block, nil
}

func (r *mongoBlockRepository) FindByDay(ctx context.Context, specialistID, date string) ([]*model.BlockedInterval, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_min", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"specialist_id": specialistID, "date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked intervals: %w", err)
	}
	defer cursor.Close(ctx)

	blocks := []*model.BlockedInterval{}
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode blocked intervals: %w", err)
	}
	return blocks, nil
}

func (r *mongoBlockRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete blocked interval: %w", err)
	}
	if result.DeletedCount == 0 {
		return blockserrors.ErrNotFound
	}
	return nil
}
