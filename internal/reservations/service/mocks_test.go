package service

import (
	"context"
	"time"

	mongotx "libroom/pkg/db/mongo"
	"libroom/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockRequestRepository struct {
	CreateFunc                func(ctx context.Context, request *model.ReservationRequest) error
	FindByIDFunc              func(ctx context.Context, id string) (*model.ReservationRequest, error)
	FindByNumberFunc          func(ctx context.Context, number string) (*model.ReservationRequest, error)
	FindActiveOverlappingFunc func(ctx context.Context, date, startTime, endTime string) ([]*model.ReservationRequest, error)
	FindApprovedBetweenFunc   func(ctx context.Context, fromDate, toDate string) ([]*model.ReservationRequest, error)
	UpdateDecisionFunc        func(ctx context.Context, id string, status string, comment string, respondedAt time.Time) (*mongo.UpdateResult, error)
	FindAllFunc               func(ctx context.Context, status string, limit int, offset int64) ([]*model.ReservationRequest, error)
	CountFunc                 func(ctx context.Context, status string) (int64, error)
}

func (m *mockRequestRepository) Create(ctx context.Context, request *model.ReservationRequest) error {
	return m.CreateFunc(ctx, request)
}

func (m *mockRequestRepository) FindByID(ctx context.Context, id string) (*model.ReservationRequest, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockRequestRepository) FindByNumber(ctx context.Context, number string) (*model.ReservationRequest, error) {
	return m.FindByNumberFunc(ctx, number)
}

func (m *mockRequestRepository) FindActiveOverlapping(ctx context.Context, date, startTime, endTime string) ([]*model.ReservationRequest, error) {
	return m.FindActiveOverlappingFunc(ctx, date, startTime, endTime)
}

func (m *mockRequestRepository) FindApprovedBetween(ctx context.Context, fromDate, toDate string) ([]*model.ReservationRequest, error) {
	return m.FindApprovedBetweenFunc(ctx, fromDate, toDate)
}

func (m *mockRequestRepository) UpdateDecision(ctx context.Context, id string, status string, comment string, respondedAt time.Time) (*mongo.UpdateResult, error) {
	return m.UpdateDecisionFunc(ctx, id, status, comment, respondedAt)
}

func (m *mockRequestRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.ReservationRequest, error) {
	return m.FindAllFunc(ctx, status, limit, offset)
}

func (m *mockRequestRepository) Count(ctx context.Context, status string) (int64, error) {
	return m.CountFunc(ctx, status)
}

func (m *mockRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockBlockedWindowRepository struct {
	FindBetweenFunc func(ctx context.Context, fromDate, toDate string) ([]*model.BlockedWindow, error)
}

func (m *mockBlockedWindowRepository) FindBetween(ctx context.Context, fromDate, toDate string) ([]*model.BlockedWindow, error) {
	return m.FindBetweenFunc(ctx, fromDate, toDate)
}

func (m *mockBlockedWindowRepository) FindForDate(ctx context.Context, date string) ([]*model.BlockedWindow, error) {
	return m.FindBetweenFunc(ctx, date, date)
}

type mockSlotLockRepository struct {
	CreateFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	DeleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, lockID)
	}
	return nil
}

type capturingPublisher struct {
	submitted []*model.ReservationRequest
	decided   []*model.ReservationRequest
}

func (p *capturingPublisher) PublishSubmitted(ctx context.Context, request *model.ReservationRequest) {
	p.submitted = append(p.submitted, request)
}

func (p *capturingPublisher) PublishDecided(ctx context.Context, request *model.ReservationRequest) {
	p.decided = append(p.decided, request)
}

func (p *capturingPublisher) Close() error { return nil }
