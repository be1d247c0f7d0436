package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reserrors "libroom/internal/reservations/errors"
	"libroom/pkg/config"
	mongotx "libroom/pkg/db/mongo"
	"libroom/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservation_requests"
)

type mongoRequestRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type RequestRepository interface {
	Create(ctx context.Context, request *model.ReservationRequest) error
	FindByID(ctx context.Context, id string) (*model.ReservationRequest, error)
	FindByNumber(ctx context.Context, number string) (*model.ReservationRequest, error)
	FindActiveOverlapping(ctx context.Context, date, startTime, endTime string) ([]*model.ReservationRequest, error)
	FindApprovedBetween(ctx context.Context, fromDate, toDate string) ([]*model.ReservationRequest, error)
	UpdateDecision(ctx context.Context, id string, status string, comment string, respondedAt time.Time) (*mongo.UpdateResult, error)
	FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.ReservationRequest, error)
	Count(ctx context.Context, status string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoRequestRepository(cfg *config.Config) RequestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRequestRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is a transaction
// SessionContext, which cannot be wrapped without breaking the transaction.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRequestRepository) Create(ctx context.Context, request *model.ReservationRequest) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	request.CreatedAt = now
	request.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return err
		}
		return fmt.Errorf("failed to create reservation request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRequestRepository) FindByID(ctx context.Context, id string) (*model.ReservationRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var request model.ReservationRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation request: %w", err)
	}

	return &request, nil
}

func (r *mongoRequestRepository) FindByNumber(ctx context.Context, number string) (*model.ReservationRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var request model.ReservationRequest
	err := r.collection.FindOne(ctx, bson.M{"request_number": number}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation request by number: %w", err)
	}

	return &request, nil
}

// FindActiveOverlapping returns pending and approved requests on date whose
// half-open time range intersects [startTime, endTime). Times are zero-padded
// HH:MM strings, so the lexicographic comparison matches the numeric one.
func (r *mongoRequestRepository) FindActiveOverlapping(ctx context.Context, date, startTime, endTime string) ([]*model.ReservationRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date":       date,
		"status":     bson.M{"$in": []string{model.StatusPending, model.StatusApproved}},
		"start_time": bson.M{"$lt": endTime},
		"end_time":   bson.M{"$gt": startTime},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.ReservationRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) FindApprovedBetween(ctx context.Context, fromDate, toDate string) ([]*model.ReservationRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status": model.StatusApproved,
		"date":   bson.M{"$gte": fromDate, "$lte": toDate},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find approved requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.ReservationRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode approved requests: %w", err)
	}

	return requests, nil
}

// UpdateDecision moves a request out of pending. The filter includes the
// pending status, so a request decided concurrently matches zero documents
// and the caller can distinguish the lost race from a missing request.
func (r *mongoRequestRepository) UpdateDecision(ctx context.Context, id string, status string, comment string, respondedAt time.Time) (*mongo.UpdateResult, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.StatusPending}
	update := bson.M{
		"$set": bson.M{
			"status":        status,
			"admin_comment": comment,
			"responded_at":  respondedAt,
			"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation request: %w", err)
	}

	return result, nil
}

func (r *mongoRequestRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.ReservationRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, r.buildStatusFilter(status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.ReservationRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode reservation requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) Count(ctx context.Context, status string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildStatusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservation requests: %w", err)
	}

	return count, nil
}

func (r *mongoRequestRepository) buildStatusFilter(status string) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

func (r *mongoRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
