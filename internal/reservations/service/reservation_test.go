package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	reserrors "libroom/internal/reservations/errors"
	"libroom/internal/reservations/validator"
	"libroom/internal/scheduling"
	"libroom/pkg/config"
	apperrors "libroom/pkg/errors"
	"libroom/pkg/logger"
	"libroom/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

var duplicateKeyErr = mongo.WriteException{
	WriteErrors: []mongo.WriteError{{Code: 11000}},
}

func testConfig() *config.Config {
	return &config.Config{
		OperatingWindowStart: "08:00",
		OperatingWindowEnd:   "18:00",
		SlotLengthMin:        120,
		HorizonDays:          90,
		ClosedWeekdays:       nil,
		RequestNumberPrefix:  "RSV",
		SlotLockTTL:          10 * time.Second,
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		Log: logger.New(logger.Config{
			Level:  logger.LevelError,
			Format: logger.FormatText,
		}),
	}
}

func emptyRequestRepo() *mockRequestRepository {
	return &mockRequestRepository{
		CreateFunc: func(ctx context.Context, r *model.ReservationRequest) error {
			r.ID = "66f1a2b3c4d5e6f7a8b9c0d1"
			return nil
		},
		FindActiveOverlappingFunc: func(ctx context.Context, date, start, end string) ([]*model.ReservationRequest, error) {
			return nil, nil
		},
		FindApprovedBetweenFunc: func(ctx context.Context, from, to string) ([]*model.ReservationRequest, error) {
			return nil, nil
		},
	}
}

func emptyBlockedRepo() *mockBlockedWindowRepository {
	return &mockBlockedWindowRepository{
		FindBetweenFunc: func(ctx context.Context, from, to string) ([]*model.BlockedWindow, error) {
			return nil, nil
		},
	}
}

func newTestService(repo *mockRequestRepository, blocked *mockBlockedWindowRepository, locks *mockSlotLockRepository, pub *capturingPublisher) ReservationService {
	cfg := testConfig()
	v := validator.NewRequestValidator(cfg.Log)
	return NewReservationService(repo, blocked, locks, v, pub, cfg)
}

// bookableDate returns a date one week out, formatted for storage.
func bookableDate() string {
	return scheduling.FormatDate(time.Now().UTC().AddDate(0, 0, 7))
}

func submittableRequest() *model.ReservationRequest {
	return &model.ReservationRequest{
		Date:        bookableDate(),
		StartTime:   "10:00",
		EndTime:     "12:00",
		FullName:    "Maria Gonzalez",
		DocumentID:  "V12345678",
		Email:       "Maria@Example.com",
		Phone:       "0414-123-45-67",
		EventType:   model.EventWorkshop,
		Attendees:   12,
		Description: "Monthly creative writing workshop for teenagers",
	}
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("error code = %s, want %s (err: %v)", appErr.Code, code, err)
	}
}

func TestSubmit_Success(t *testing.T) {
	repo := emptyRequestRepo()
	pub := &capturingPublisher{}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, emptyBlockedRepo(), locks, pub)

	req := submittableRequest()
	if err := svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if req.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", req.Status)
	}
	if !regexp.MustCompile(`^RSV-\d{8}-[0-9A-F]{8}$`).MatchString(req.RequestNumber) {
		t.Errorf("request number %q does not match the expected shape", req.RequestNumber)
	}
	if req.Email != "maria@example.com" {
		t.Errorf("email not normalized: %q", req.Email)
	}
	if req.DocumentID != "V12345678" {
		t.Errorf("document not normalized: %q", req.DocumentID)
	}
	if len(pub.submitted) != 1 {
		t.Errorf("expected 1 submitted event, got %d", len(pub.submitted))
	}
}

func TestSubmit_ValidationFailureTouchesNothing(t *testing.T) {
	created := false
	repo := emptyRequestRepo()
	repo.CreateFunc = func(ctx context.Context, r *model.ReservationRequest) error {
		created = true
		return nil
	}
	locked := false
	locks := &mockSlotLockRepository{
		CreateFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			locked = true
			return lock, nil
		},
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, emptyBlockedRepo(), locks, pub)

	req := submittableRequest()
	req.Email = "not-an-email"
	req.Attendees = 0

	err := svc.Submit(context.Background(), req)
	wantCode(t, err, apperrors.CodeValidation)

	if created || locked {
		t.Error("failed validation must not reach the lock or the store")
	}
	if len(pub.submitted) != 0 {
		t.Error("failed validation must not publish events")
	}
}

func TestSubmit_PastDateRejected(t *testing.T) {
	svc := newTestService(emptyRequestRepo(), emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	req := submittableRequest()
	req.Date = scheduling.FormatDate(time.Now().UTC().AddDate(0, 0, -1))

	wantCode(t, svc.Submit(context.Background(), req), apperrors.CodeDomainRule)
}

func TestSubmit_BeyondHorizonRejected(t *testing.T) {
	svc := newTestService(emptyRequestRepo(), emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	req := submittableRequest()
	req.Date = scheduling.FormatDate(time.Now().UTC().AddDate(0, 0, 91))

	wantCode(t, svc.Submit(context.Background(), req), apperrors.CodeDomainRule)
}

func TestSubmit_OffGridTimeRejected(t *testing.T) {
	svc := newTestService(emptyRequestRepo(), emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	req := submittableRequest()
	req.StartTime = "09:00"
	req.EndTime = "11:00"

	wantCode(t, svc.Submit(context.Background(), req), apperrors.CodeDomainRule)
}

func TestSubmit_OutsideWindowRejected(t *testing.T) {
	svc := newTestService(emptyRequestRepo(), emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	req := submittableRequest()
	req.StartTime = "18:00"
	req.EndTime = "20:00"

	wantCode(t, svc.Submit(context.Background(), req), apperrors.CodeDomainRule)
}

func TestSubmit_WholeDayBlockRejected(t *testing.T) {
	date := bookableDate()
	blocked := &mockBlockedWindowRepository{
		FindBetweenFunc: func(ctx context.Context, from, to string) ([]*model.BlockedWindow, error) {
			return []*model.BlockedWindow{
				{ID: "bw1", Date: date, WholeDay: true, Reason: "inventory"},
			}, nil
		},
	}
	svc := newTestService(emptyRequestRepo(), blocked, &mockSlotLockRepository{}, &capturingPublisher{})

	req := submittableRequest()
	req.Date = date

	wantCode(t, svc.Submit(context.Background(), req), apperrors.CodeDomainRule)
}

func TestSubmit_PartialBlockConflicts(t *testing.T) {
	date := bookableDate()
	blocked := &mockBlockedWindowRepository{
		FindBetweenFunc: func(ctx context.Context, from, to string) ([]*model.BlockedWindow, error) {
			return []*model.BlockedWindow{
				{ID: "bw1", Date: date, StartTime: "10:00", EndTime: "12:00", Reason: "maintenance"},
			}, nil
		},
	}
	svc := newTestService(emptyRequestRepo(), blocked, &mockSlotLockRepository{}, &capturingPublisher{})

	req := submittableRequest()
	req.Date = date

	wantCode(t, svc.Submit(context.Background(), req), apperrors.CodeConflict)
}

func TestSubmit_OverlappingRequestConflicts(t *testing.T) {
	repo := emptyRequestRepo()
	repo.FindActiveOverlappingFunc = func(ctx context.Context, date, start, end string) ([]*model.ReservationRequest, error) {
		return []*model.ReservationRequest{
			{RequestNumber: "RSV-20260901-AAAAAAAA", Date: date, StartTime: "10:00", EndTime: "12:00", Status: model.StatusPending},
		}, nil
	}
	created := false
	repo.CreateFunc = func(ctx context.Context, r *model.ReservationRequest) error {
		created = true
		return nil
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, pub)

	err := svc.Submit(context.Background(), submittableRequest())
	wantCode(t, err, apperrors.CodeConflict)

	if created {
		t.Error("conflicting submission must not be persisted")
	}
	if len(pub.submitted) != 0 {
		t.Error("conflicting submission must not publish events")
	}
}

func TestSubmit_SlotLockHeldConflicts(t *testing.T) {
	locks := &mockSlotLockRepository{
		CreateFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, duplicateKeyErr
		},
	}
	svc := newTestService(emptyRequestRepo(), emptyBlockedRepo(), locks, &capturingPublisher{})

	wantCode(t, svc.Submit(context.Background(), submittableRequest()), apperrors.CodeConflict)
}

func TestSubmit_OverlappingIntervalsContendOnACommonLock(t *testing.T) {
	date := bookableDate()
	held := map[string]bool{}
	var released []string
	locks := &mockSlotLockRepository{
		CreateFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			if held[lock.ID] {
				return nil, duplicateKeyErr
			}
			held[lock.ID] = true
			return lock, nil
		},
		// Releases are recorded but never applied, as if the first
		// submission's transaction were still in flight.
		DeleteFunc: func(ctx context.Context, lockID string) error {
			released = append(released, lockID)
			return nil
		},
	}
	created := 0
	repo := emptyRequestRepo()
	repo.CreateFunc = func(ctx context.Context, r *model.ReservationRequest) error {
		created++
		return nil
	}
	svc := newTestService(repo, emptyBlockedRepo(), locks, &capturingPublisher{})

	first := submittableRequest()
	first.Date, first.StartTime, first.EndTime = date, "10:00", "14:00"
	if err := svc.Submit(context.Background(), first); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if len(held) != 2 {
		t.Fatalf("expected one lock per covered slot, got %d: %v", len(held), held)
	}

	// Overlaps 10:00-14:00 on the 10:00-12:00 slot without sharing its
	// exact start and end.
	second := submittableRequest()
	second.Date, second.StartTime, second.EndTime = date, "08:00", "12:00"
	wantCode(t, svc.Submit(context.Background(), second), apperrors.CodeConflict)

	if created != 1 {
		t.Errorf("persisted %d requests, want 1", created)
	}
	wantReleased := "slot_lock_" + date + "_08:00_10:00"
	found := false
	for _, lockID := range released {
		if lockID == wantReleased {
			found = true
		}
	}
	if !found {
		t.Errorf("losing submission must release its partial locks, released %v", released)
	}
}

func TestSubmit_ReleasesLockOnConflict(t *testing.T) {
	var acquired, released string
	locks := &mockSlotLockRepository{
		CreateFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			acquired = lock.ID
			return lock, nil
		},
		DeleteFunc: func(ctx context.Context, lockID string) error {
			released = lockID
			return nil
		},
	}
	repo := emptyRequestRepo()
	repo.FindActiveOverlappingFunc = func(ctx context.Context, date, start, end string) ([]*model.ReservationRequest, error) {
		return []*model.ReservationRequest{
			{StartTime: "10:00", EndTime: "12:00", Status: model.StatusApproved},
		}, nil
	}
	svc := newTestService(repo, emptyBlockedRepo(), locks, &capturingPublisher{})

	_ = svc.Submit(context.Background(), submittableRequest())

	if acquired == "" {
		t.Fatal("lock was never acquired")
	}
	if released != acquired {
		t.Errorf("released lock %q, want %q", released, acquired)
	}
}

func TestSubmit_RetriesRequestNumberOnCollision(t *testing.T) {
	var numbers []string
	repo := emptyRequestRepo()
	repo.CreateFunc = func(ctx context.Context, r *model.ReservationRequest) error {
		numbers = append(numbers, r.RequestNumber)
		if len(numbers) == 1 {
			return duplicateKeyErr
		}
		return nil
	}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	if err := svc.Submit(context.Background(), submittableRequest()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(numbers) != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", len(numbers))
	}
	if numbers[0] == numbers[1] {
		t.Error("retry must generate a fresh request number")
	}
}

func TestSubmit_GivesUpAfterRepeatedCollisions(t *testing.T) {
	attempts := 0
	repo := emptyRequestRepo()
	repo.CreateFunc = func(ctx context.Context, r *model.ReservationRequest) error {
		attempts++
		return duplicateKeyErr
	}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	wantCode(t, svc.Submit(context.Background(), submittableRequest()), apperrors.CodeInternal)

	if attempts != numberGenerationAttempts {
		t.Errorf("attempts = %d, want %d", attempts, numberGenerationAttempts)
	}
}

func decidedAtPending() *model.ReservationRequest {
	return &model.ReservationRequest{
		ID:            "66f1a2b3c4d5e6f7a8b9c0d1",
		RequestNumber: "RSV-20260914-AB12CD34",
		Date:          bookableDate(),
		StartTime:     "10:00",
		EndTime:       "12:00",
		FullName:      "Maria Gonzalez",
		Email:         "maria@example.com",
		Status:        model.StatusPending,
	}
}

func TestDecide_Approve(t *testing.T) {
	pending := decidedAtPending()
	repo := emptyRequestRepo()
	repo.FindByNumberFunc = func(ctx context.Context, number string) (*model.ReservationRequest, error) {
		return pending, nil
	}
	var gotStatus, gotComment string
	repo.UpdateDecisionFunc = func(ctx context.Context, id, status, comment string, respondedAt time.Time) (*mongo.UpdateResult, error) {
		gotStatus = status
		gotComment = comment
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, pub)

	decided, err := svc.Decide(context.Background(), pending.RequestNumber, &model.Decision{Approve: true, Comment: "  see you then  "})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if gotStatus != model.StatusApproved {
		t.Errorf("persisted status = %s, want approved", gotStatus)
	}
	if gotComment != "see you then" {
		t.Errorf("comment not normalized: %q", gotComment)
	}
	if decided.Status != model.StatusApproved {
		t.Errorf("returned status = %s, want approved", decided.Status)
	}
	if decided.RespondedAt == nil {
		t.Error("responded_at not set")
	}
	if len(pub.decided) != 1 {
		t.Errorf("expected 1 decided event, got %d", len(pub.decided))
	}
}

func TestDecide_Reject(t *testing.T) {
	pending := decidedAtPending()
	repo := emptyRequestRepo()
	repo.FindByNumberFunc = func(ctx context.Context, number string) (*model.ReservationRequest, error) {
		return pending, nil
	}
	var gotStatus string
	repo.UpdateDecisionFunc = func(ctx context.Context, id, status, comment string, respondedAt time.Time) (*mongo.UpdateResult, error) {
		gotStatus = status
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	decided, err := svc.Decide(context.Background(), pending.RequestNumber, &model.Decision{Approve: false, Comment: "room under repair"})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if gotStatus != model.StatusRejected || decided.Status != model.StatusRejected {
		t.Errorf("status = %s/%s, want rejected", gotStatus, decided.Status)
	}
}

func TestDecide_AlreadyTerminal(t *testing.T) {
	approved := decidedAtPending()
	approved.Status = model.StatusApproved
	repo := emptyRequestRepo()
	repo.FindByNumberFunc = func(ctx context.Context, number string) (*model.ReservationRequest, error) {
		return approved, nil
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, pub)

	_, err := svc.Decide(context.Background(), approved.RequestNumber, &model.Decision{Approve: false})
	wantCode(t, err, apperrors.CodeTransition)

	if len(pub.decided) != 0 {
		t.Error("repeat decision must not publish events")
	}
}

func TestDecide_LostRace(t *testing.T) {
	pending := decidedAtPending()
	repo := emptyRequestRepo()
	repo.FindByNumberFunc = func(ctx context.Context, number string) (*model.ReservationRequest, error) {
		return pending, nil
	}
	repo.UpdateDecisionFunc = func(ctx context.Context, id, status, comment string, respondedAt time.Time) (*mongo.UpdateResult, error) {
		return &mongo.UpdateResult{MatchedCount: 0}, nil
	}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	_, err := svc.Decide(context.Background(), pending.RequestNumber, &model.Decision{Approve: true})
	wantCode(t, err, apperrors.CodeTransition)
}

func TestGetByNumber_NotFound(t *testing.T) {
	repo := emptyRequestRepo()
	repo.FindByNumberFunc = func(ctx context.Context, number string) (*model.ReservationRequest, error) {
		return nil, reserrors.ErrNotFound
	}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	_, err := svc.GetByNumber(context.Background(), "RSV-20260914-FFFFFFFF")
	wantCode(t, err, apperrors.CodeNotFound)
}

func TestGetSlotsForDate_BlockedWindowShadesSlots(t *testing.T) {
	date := bookableDate()
	blocked := &mockBlockedWindowRepository{
		FindBetweenFunc: func(ctx context.Context, from, to string) ([]*model.BlockedWindow, error) {
			return []*model.BlockedWindow{
				{ID: "bw1", Date: date, StartTime: "10:00", EndTime: "12:00", Reason: "maintenance"},
			}, nil
		},
	}
	svc := newTestService(emptyRequestRepo(), blocked, &mockSlotLockRepository{}, &capturingPublisher{})

	slots, err := svc.GetSlotsForDate(context.Background(), date)
	if err != nil {
		t.Fatalf("GetSlotsForDate() error = %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		want := slot.StartTime != "10:00"
		if slot.Available != want {
			t.Errorf("slot %s available = %v, want %v", slot.Label, slot.Available, want)
		}
	}
}

func TestGetSlotsForDate_ApprovedReservationShadesSlots(t *testing.T) {
	date := bookableDate()
	repo := emptyRequestRepo()
	repo.FindApprovedBetweenFunc = func(ctx context.Context, from, to string) ([]*model.ReservationRequest, error) {
		return []*model.ReservationRequest{
			{RequestNumber: "RSV-20260901-AAAAAAAA", Date: date, StartTime: "14:00", EndTime: "16:00", Status: model.StatusApproved},
		}, nil
	}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	slots, err := svc.GetSlotsForDate(context.Background(), date)
	if err != nil {
		t.Fatalf("GetSlotsForDate() error = %v", err)
	}
	for _, slot := range slots {
		want := slot.StartTime != "14:00"
		if slot.Available != want {
			t.Errorf("slot %s available = %v, want %v", slot.Label, slot.Available, want)
		}
	}
}

func TestGetSlotsForDate_UnbookableDate(t *testing.T) {
	svc := newTestService(emptyRequestRepo(), emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	past := scheduling.FormatDate(time.Now().UTC().AddDate(0, 0, -1))
	_, err := svc.GetSlotsForDate(context.Background(), past)
	wantCode(t, err, apperrors.CodeDomainRule)
}

func TestGetSlotsForDate_MalformedDate(t *testing.T) {
	svc := newTestService(emptyRequestRepo(), emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	_, err := svc.GetSlotsForDate(context.Background(), "14-09-2026")
	wantCode(t, err, apperrors.CodeInvalidInput)
}

func TestGetBookableDates_ExcludesBlockedDay(t *testing.T) {
	blockedDate := scheduling.FormatDate(time.Now().UTC().AddDate(0, 0, 3))
	blocked := &mockBlockedWindowRepository{
		FindBetweenFunc: func(ctx context.Context, from, to string) ([]*model.BlockedWindow, error) {
			return []*model.BlockedWindow{
				{ID: "bw1", Date: blockedDate, WholeDay: true, Reason: "holiday"},
			}, nil
		},
	}
	svc := newTestService(emptyRequestRepo(), blocked, &mockSlotLockRepository{}, &capturingPublisher{})

	dates, err := svc.GetBookableDates(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetBookableDates() error = %v", err)
	}
	if len(dates) != 7 {
		t.Fatalf("expected 7 dates (8 in range minus 1 blocked), got %d", len(dates))
	}
	for _, d := range dates {
		if d == blockedDate {
			t.Errorf("blocked date %s must not appear", d)
		}
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	svc := newTestService(emptyRequestRepo(), emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	_, _, err := svc.List(context.Background(), "archived", 10, 0)
	wantCode(t, err, apperrors.CodeInvalidInput)
}

func TestList_ReturnsCountAndPage(t *testing.T) {
	repo := emptyRequestRepo()
	repo.CountFunc = func(ctx context.Context, status string) (int64, error) {
		return 42, nil
	}
	repo.FindAllFunc = func(ctx context.Context, status string, limit int, offset int64) ([]*model.ReservationRequest, error) {
		return []*model.ReservationRequest{decidedAtPending()}, nil
	}
	svc := newTestService(repo, emptyBlockedRepo(), &mockSlotLockRepository{}, &capturingPublisher{})

	requests, count, err := svc.List(context.Background(), model.StatusPending, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if count != 42 {
		t.Errorf("count = %d, want 42", count)
	}
	if len(requests) != 1 {
		t.Errorf("page size = %d, want 1", len(requests))
	}
}
