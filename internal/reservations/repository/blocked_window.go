package repository

import (
	"context"
	"fmt"

	"libroom/pkg/config"
	"libroom/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const BlockedWindowCollectionName = "Blocked_windows"

type BlockedWindowRepository interface {
	FindBetween(ctx context.Context, fromDate, toDate string) ([]*model.BlockedWindow, error)
	FindForDate(ctx context.Context, date string) ([]*model.BlockedWindow, error)
}

type mongoBlockedWindowRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBlockedWindowRepository(cfg *config.Config) BlockedWindowRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlockedWindowRepository{
		cfg:        cfg,
		collection: db.Collection(BlockedWindowCollectionName),
	}
}

// FindBetween returns every one-off window dated inside [fromDate, toDate]
// plus all recurring windows. Recurring windows match by month and day, so
// date-range filtering cannot exclude them; the caller applies the match.
func (r *mongoBlockedWindowRepository) FindBetween(ctx context.Context, fromDate, toDate string) ([]*model.BlockedWindow, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"date": bson.M{"$gte": fromDate, "$lte": toDate}},
			{"recurring": true},
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked windows: %w", err)
	}
	defer cursor.Close(ctx)

	var windows []*model.BlockedWindow
	if err = cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("failed to decode blocked windows: %w", err)
	}

	return windows, nil
}

func (r *mongoBlockedWindowRepository) FindForDate(ctx context.Context, date string) ([]*model.BlockedWindow, error) {
	return r.FindBetween(ctx, date, date)
}
