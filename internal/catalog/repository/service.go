package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "slotkeeper/internal/catalog/errors"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	"slotkeeper/pkg/db/postgres"
	"slotkeeper/pkg/model"

	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Services"

type ServiceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Service, error)
	Upsert(ctx context.Context, svc *model.Service) error
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var svc model.Service
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &svc, nil
}

func (r *mongoServiceRepository) Upsert(ctx context.Context, svc *model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":         svc.Name,
			"duration_min": svc.DurationMin,
			"price":        svc.Price,
		},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.Service
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": svc.ID}, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("failed to upsert service: %w", err)
	}
	*svc = stored
	return nil
}

type postgresServiceRepository struct {
	db postgres.Querier
}

func NewPostgresServiceRepository(db postgres.Querier) ServiceRepository {
	return &postgresServiceRepository{db: db}
}

func (r *postgresServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	var svc model.Service
	err := postgres.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, name, duration_min, price::float8, created_at FROM services WHERE id = $1`, id,
	).Scan(&svc.ID, &svc.Name, &svc.DurationMin, &svc.Price, &svc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &svc, nil
}

func (r *postgresServiceRepository) Upsert(ctx context.Context, svc *model.Service) error {
	err := postgres.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO services (id, name, duration_min, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, duration_min = EXCLUDED.duration_min, price = EXCLUDED.price
		RETURNING created_at`,
		svc.ID, svc.Name, svc.DurationMin, svc.Price,
	).Scan(&svc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert service: %w", err)
	}
	return nil
}
