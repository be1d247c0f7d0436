package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	reserrors "libroom/internal/reservations/errors"
	"libroom/internal/reservations/events"
	"libroom/internal/reservations/repository"
	"libroom/internal/reservations/validator"
	"libroom/internal/scheduling"
	"libroom/pkg/config"
	apperrors "libroom/pkg/errors"
	"libroom/pkg/model"
	"libroom/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

const numberGenerationAttempts = 3

type ReservationService interface {
	GetBookableDates(ctx context.Context, days int) ([]string, error)
	GetSlotsForDate(ctx context.Context, date string) ([]scheduling.Slot, error)
	Submit(ctx context.Context, request *model.ReservationRequest) error
	Decide(ctx context.Context, requestNumber string, decision *model.Decision) (*model.ReservationRequest, error)
	GetByNumber(ctx context.Context, requestNumber string) (*model.ReservationRequest, error)
	List(ctx context.Context, status string, limit int, offset int64) ([]*model.ReservationRequest, int64, error)
}

type reservationService struct {
	repo        repository.RequestRepository
	blockedRepo repository.BlockedWindowRepository
	lockRepo    repository.SlotLockRepository
	validator   *validator.RequestValidator
	publisher   events.Publisher
	cfg         *config.Config
}

func NewReservationService(
	repo repository.RequestRepository,
	blockedRepo repository.BlockedWindowRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.RequestValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:        repo,
		blockedRepo: blockedRepo,
		lockRepo:    lockRepo,
		validator:   validator,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *reservationService) GetBookableDates(ctx context.Context, days int) ([]string, error) {
	if days <= 0 || days > s.cfg.HorizonDays {
		days = s.cfg.HorizonDays
	}

	today := scheduling.DateOnly(time.Now().UTC())
	from := scheduling.FormatDate(today)
	to := scheduling.FormatDate(today.AddDate(0, 0, days))

	windows, err := s.blockedRepo.FindBetween(ctx, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to load blocked windows", "error", err)
		return nil, apperrors.Internal("Failed to load blocked windows", err)
	}

	wholeDayBlocks, err := wholeDayBlocks(windows)
	if err != nil {
		return nil, apperrors.Internal("Failed to interpret blocked windows", err)
	}

	dates := scheduling.BookableDates(today, days, s.cfg.ClosedTimeWeekdays(), wholeDayBlocks)

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, scheduling.FormatDate(d))
	}
	return formatted, nil
}

func (s *reservationService) GetSlotsForDate(ctx context.Context, date string) ([]scheduling.Slot, error) {
	day, err := scheduling.ParseDate(date)
	if err != nil {
		return nil, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	window, err := s.operatingWindow()
	if err != nil {
		return nil, err
	}

	windows, err := s.blockedRepo.FindForDate(ctx, scheduling.FormatDate(day))
	if err != nil {
		s.cfg.Log.Error("Failed to load blocked windows", "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load blocked windows", err)
	}

	wholeDay, err := wholeDayBlocks(windows)
	if err != nil {
		return nil, apperrors.Internal("Failed to interpret blocked windows", err)
	}

	today := scheduling.DateOnly(time.Now().UTC())
	if !scheduling.IsDateBookable(day, today, s.cfg.HorizonDays, s.cfg.ClosedTimeWeekdays(), wholeDay) {
		return nil, apperrors.DomainRule("Date is not open for reservations").WithDetails(map[string]any{
			"date": scheduling.FormatDate(day),
		})
	}

	blocked, err := partialBlockIntervals(day, windows)
	if err != nil {
		return nil, apperrors.Internal("Failed to interpret blocked windows", err)
	}

	approvedDocs, err := s.repo.FindApprovedBetween(ctx, scheduling.FormatDate(day), scheduling.FormatDate(day))
	if err != nil {
		s.cfg.Log.Error("Failed to load approved reservations", "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load approved reservations", err)
	}

	approved, err := requestIntervals(approvedDocs)
	if err != nil {
		return nil, apperrors.Internal("Failed to interpret approved reservations", err)
	}

	return scheduling.ResolveSlots(day, window, s.cfg.SlotLengthMin, blocked, approved), nil
}

func (s *reservationService) Submit(ctx context.Context, request *model.ReservationRequest) error {
	s.applyDefaults(request)
	s.sanitize(request)
	if err := s.validate(request); err != nil {
		return err
	}

	interval, err := s.parseInterval(request)
	if err != nil {
		return err
	}
	// Store the canonical zero-padded forms.
	request.Date = scheduling.FormatDate(interval.Date)
	request.StartTime = interval.Start.String()
	request.EndTime = interval.End.String()

	window, err := s.operatingWindow()
	if err != nil {
		return err
	}

	windows, err := s.blockedRepo.FindForDate(ctx, request.Date)
	if err != nil {
		s.cfg.Log.Error("Failed to load blocked windows", "date", request.Date, "error", err)
		return apperrors.Internal("Failed to load blocked windows", err)
	}

	if err := s.checkDomainRules(request, interval, window, windows); err != nil {
		return err
	}

	lockIDs, err := s.acquireSlotLocks(ctx, request.Date, interval)
	if err != nil {
		return err
	}
	defer s.releaseSlotLocks(ctx, lockIDs)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflicts(sessCtx, request, interval); err != nil {
			return err
		}
		return s.insertWithFreshNumber(sessCtx, request)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to submit reservation request", "error", err)
		return err
	}

	s.cfg.Log.Info("Reservation request submitted",
		"request_number", request.RequestNumber,
		"date", request.Date,
		"start_time", request.StartTime,
		"end_time", request.EndTime,
		"event_type", request.EventType,
	)

	s.publisher.PublishSubmitted(ctx, request)
	return nil
}

func (s *reservationService) Decide(ctx context.Context, requestNumber string, decision *model.Decision) (*model.ReservationRequest, error) {
	if requestNumber == "" {
		return nil, apperrors.InvalidInput("Request number cannot be empty")
	}
	if err := s.validator.ValidateDecision(decision); err != nil {
		s.cfg.Log.Warn("Decision validation failed", "request_number", requestNumber, "error", err)
		return nil, apperrors.Validation("Decision validation failed", map[string]any{"error": err.Error()})
	}

	request, err := s.GetByNumber(ctx, requestNumber)
	if err != nil {
		return nil, err
	}
	if request.Terminal() {
		return nil, apperrors.Transition(fmt.Sprintf(
			"Request %s was already %s and cannot be decided again", requestNumber, request.Status))
	}

	status := model.StatusRejected
	if decision.Approve {
		status = model.StatusApproved
	}
	comment := sanitizer.TrimAndNormalize(decision.Comment)
	respondedAt := time.Now().UTC().Truncate(time.Millisecond)

	result, err := s.repo.UpdateDecision(ctx, request.ID, status, comment, respondedAt)
	if err != nil {
		s.cfg.Log.Error("Failed to decide reservation request", "request_number", requestNumber, "error", err)
		return nil, apperrors.Internal("Failed to decide reservation request", err)
	}
	// Zero matches means another decision slipped in between the read and
	// the conditional update.
	if result.MatchedCount == 0 {
		return nil, apperrors.Transition(fmt.Sprintf(
			"Request %s was already decided", requestNumber))
	}

	request.Status = status
	request.AdminComment = comment
	request.RespondedAt = &respondedAt

	s.cfg.Log.Info("Reservation request decided",
		"request_number", requestNumber,
		"status", status,
	)

	s.publisher.PublishDecided(ctx, request)
	return request, nil
}

func (s *reservationService) GetByNumber(ctx context.Context, requestNumber string) (*model.ReservationRequest, error) {
	if requestNumber == "" {
		return nil, apperrors.InvalidInput("Request number cannot be empty")
	}

	request, err := s.repo.FindByNumber(ctx, requestNumber)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation request", requestNumber)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation request", err)
	}

	return request, nil
}

func (s *reservationService) List(ctx context.Context, status string, limit int, offset int64) ([]*model.ReservationRequest, int64, error) {
	if status != "" && status != model.StatusPending && status != model.StatusApproved && status != model.StatusRejected {
		return nil, 0, apperrors.InvalidInput("Status must be pending, approved or rejected")
	}

	var count int64
	var requests []*model.ReservationRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservation requests", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservation requests", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		requests, errFind = s.repo.FindAll(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservation requests", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservation requests", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return requests, count, nil
}

// --- Helpers ---

func (s *reservationService) applyDefaults(r *model.ReservationRequest) {
	r.Status = model.StatusPending
	r.RequestNumber = ""
	r.AdminComment = ""
	r.RespondedAt = nil
}

func (s *reservationService) sanitize(r *model.ReservationRequest) {
	r.FullName = sanitizer.TrimAndNormalize(r.FullName)
	r.DocumentID = sanitizer.NormalizeDocumentID(r.DocumentID)
	r.Email = sanitizer.NormalizeEmail(r.Email)
	r.Phone = sanitizer.TrimAndNormalize(r.Phone)
	r.EventType = sanitizer.NormalizeEventType(r.EventType)
	r.Description = sanitizer.TrimAndNormalize(r.Description)
	r.Equipment = sanitizer.TrimAndNormalize(r.Equipment)
}

func (s *reservationService) validate(r *model.ReservationRequest) error {
	if err := s.validator.Validate(r); err != nil {
		s.cfg.Log.Warn("Reservation request validation failed", "error", err)
		return apperrors.Validation("Reservation request validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) parseInterval(r *model.ReservationRequest) (scheduling.Interval, error) {
	day, err := scheduling.ParseDate(r.Date)
	if err != nil {
		return scheduling.Interval{}, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}
	start, err := scheduling.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return scheduling.Interval{}, apperrors.InvalidInput("Start time must be in HH:MM format")
	}
	end, err := scheduling.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return scheduling.Interval{}, apperrors.InvalidInput("End time must be in HH:MM format")
	}

	interval, err := scheduling.NewInterval(day, start, end)
	if err != nil {
		return scheduling.Interval{}, apperrors.DomainRule("End time must be after start time")
	}
	return interval, nil
}

func (s *reservationService) operatingWindow() (scheduling.Window, error) {
	start, err := scheduling.ParseTimeOfDay(s.cfg.OperatingWindowStart)
	if err != nil {
		return scheduling.Window{}, apperrors.Internal("Invalid operating window configuration", err)
	}
	end, err := scheduling.ParseTimeOfDay(s.cfg.OperatingWindowEnd)
	if err != nil {
		return scheduling.Window{}, apperrors.Internal("Invalid operating window configuration", err)
	}
	return scheduling.Window{Start: start, End: end}, nil
}

func (s *reservationService) checkDomainRules(r *model.ReservationRequest, interval scheduling.Interval, window scheduling.Window, windows []*model.BlockedWindow) error {
	wholeDay, err := wholeDayBlocks(windows)
	if err != nil {
		return apperrors.Internal("Failed to interpret blocked windows", err)
	}

	today := scheduling.DateOnly(time.Now().UTC())
	if !scheduling.IsDateBookable(interval.Date, today, s.cfg.HorizonDays, s.cfg.ClosedTimeWeekdays(), wholeDay) {
		return apperrors.DomainRule("Date is not open for reservations").WithDetails(map[string]any{
			"date": r.Date,
		})
	}

	if !window.Contains(interval) {
		return apperrors.DomainRule("Requested time is outside the operating window").WithDetails(map[string]any{
			"operating_window": fmt.Sprintf("%s - %s", s.cfg.OperatingWindowStart, s.cfg.OperatingWindowEnd),
		})
	}
	if !scheduling.AlignedToGrid(interval, window, s.cfg.SlotLengthMin) {
		return apperrors.DomainRule("Requested time must cover whole slots").WithDetails(map[string]any{
			"slot_length_min": s.cfg.SlotLengthMin,
		})
	}

	return nil
}

// verifyNoConflicts re-reads blocked windows and active requests while the
// covered slot locks are held, so no overlapping submission can run this
// check concurrently. The transaction alone would not be enough: snapshot
// isolation lets two inserts of distinct documents both commit.
func (s *reservationService) verifyNoConflicts(ctx context.Context, r *model.ReservationRequest, interval scheduling.Interval) error {
	windows, err := s.blockedRepo.FindForDate(ctx, r.Date)
	if err != nil {
		return apperrors.Internal("Failed to check blocked windows", err)
	}
	blocked, err := partialBlockIntervals(interval.Date, windows)
	if err != nil {
		return apperrors.Internal("Failed to interpret blocked windows", err)
	}
	for _, b := range blocked {
		if scheduling.Overlaps(interval, b) {
			return apperrors.Conflict(fmt.Sprintf(
				"Requested time overlaps a blocked period (%s - %s)", b.Start, b.End))
		}
	}

	existing, err := s.repo.FindActiveOverlapping(ctx, r.Date, r.StartTime, r.EndTime)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}
	if len(existing) > 0 {
		first := existing[0]
		return apperrors.Conflict(fmt.Sprintf(
			"Requested time overlaps an existing reservation (%s - %s)", first.StartTime, first.EndTime))
	}

	return nil
}

// insertWithFreshNumber assigns a request number and inserts, retrying with
// a new number if the unique index reports a collision.
func (s *reservationService) insertWithFreshNumber(ctx context.Context, r *model.ReservationRequest) error {
	var lastErr error
	for attempt := 0; attempt < numberGenerationAttempts; attempt++ {
		r.RequestNumber = GenerateRequestNumber(s.cfg.RequestNumberPrefix, time.Now())

		err := s.repo.Create(ctx, r)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return apperrors.Internal("Failed to create reservation request", err)
		}
		lastErr = err
	}
	return apperrors.Internal("Failed to allocate a unique request number", lastErr)
}

// acquireSlotLocks claims one advisory lock per slot the interval covers.
// Two overlapping grid-aligned intervals always share at least one slot, so
// one of the two submissions loses the insert race on that slot's _id even
// when the intervals themselves differ. Locks taken before the losing
// insert are released here, not left for the TTL reaper.
func (s *reservationService) acquireSlotLocks(ctx context.Context, date string, interval scheduling.Interval) ([]string, error) {
	stride := scheduling.TimeOfDay(s.cfg.SlotLengthMin)

	var acquired []string
	for start := interval.Start; start < interval.End; start += stride {
		lockID := fmt.Sprintf("slot_lock_%s_%s_%s", date, start, start+stride)

		_, err := s.lockRepo.Create(ctx, &model.SlotLock{ID: lockID})
		if err != nil {
			s.releaseSlotLocks(ctx, acquired)
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperrors.Conflict("This slot is currently being claimed by another submission. Please try again.")
			}
			return nil, apperrors.Internal("Failed to acquire slot lock", err)
		}
		acquired = append(acquired, lockID)
	}

	return acquired, nil
}

func (s *reservationService) releaseSlotLocks(ctx context.Context, lockIDs []string) {
	for _, lockID := range lockIDs {
		if err := s.lockRepo.Delete(ctx, lockID); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
		}
	}
}

// wholeDayBlocks extracts the day-level blocks from the stored windows.
func wholeDayBlocks(windows []*model.BlockedWindow) ([]scheduling.WholeDayBlock, error) {
	var blocks []scheduling.WholeDayBlock
	for _, w := range windows {
		if !w.WholeDay {
			continue
		}
		day, err := scheduling.ParseDate(w.Date)
		if err != nil {
			return nil, fmt.Errorf("blocked window %s has malformed date %q: %w", w.ID, w.Date, err)
		}
		blocks = append(blocks, scheduling.WholeDayBlock{Date: day, Recurring: w.Recurring})
	}
	return blocks, nil
}

// partialBlockIntervals converts partial-day windows that apply to the given
// date into intervals on that date. Recurring partial windows match by month
// and day, like their whole-day counterparts.
func partialBlockIntervals(date time.Time, windows []*model.BlockedWindow) ([]scheduling.Interval, error) {
	date = scheduling.DateOnly(date)

	var intervals []scheduling.Interval
	for _, w := range windows {
		if w.WholeDay {
			continue
		}
		day, err := scheduling.ParseDate(w.Date)
		if err != nil {
			return nil, fmt.Errorf("blocked window %s has malformed date %q: %w", w.ID, w.Date, err)
		}
		if w.Recurring {
			if day.Month() != date.Month() || day.Day() != date.Day() {
				continue
			}
		} else if !day.Equal(date) {
			continue
		}

		start, err := scheduling.ParseTimeOfDay(w.StartTime)
		if err != nil {
			return nil, fmt.Errorf("blocked window %s has malformed start time %q: %w", w.ID, w.StartTime, err)
		}
		end, err := scheduling.ParseTimeOfDay(w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("blocked window %s has malformed end time %q: %w", w.ID, w.EndTime, err)
		}

		iv, err := scheduling.NewInterval(date, start, end)
		if err != nil {
			return nil, fmt.Errorf("blocked window %s has an invalid range: %w", w.ID, err)
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}

func requestIntervals(requests []*model.ReservationRequest) ([]scheduling.Interval, error) {
	intervals := make([]scheduling.Interval, 0, len(requests))
	for _, r := range requests {
		day, err := scheduling.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("request %s has malformed date %q: %w", r.RequestNumber, r.Date, err)
		}
		start, err := scheduling.ParseTimeOfDay(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("request %s has malformed start time %q: %w", r.RequestNumber, r.StartTime, err)
		}
		end, err := scheduling.ParseTimeOfDay(r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("request %s has malformed end time %q: %w", r.RequestNumber, r.EndTime, err)
		}
		iv, err := scheduling.NewInterval(day, start, end)
		if err != nil {
			return nil, fmt.Errorf("request %s has an invalid range: %w", r.RequestNumber, err)
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}
