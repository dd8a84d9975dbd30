package hearing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nekogravitycat/court-docket-backend/internal/legalcase"
	"github.com/nekogravitycat/court-docket-backend/internal/metrics"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/lock"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

// OverrideRequest asks to save a hearing even though it clashes with others.
type OverrideRequest struct {
	Allowed bool
	Reason  string
}

// Input carries the fields of a hearing create or update. Nil pointers are left
// untouched. Dates and times stay raw strings so parse problems surface as
// validation errors.
type Input struct {
	CaseID            *string
	HearingDate       *string
	HearingTime       *string
	Timezone          *string
	StartAt           *string
	EndAt             *string
	Duration          *int
	Status            *string
	CourtroomID       *string
	CounselID         *string
	ClientID          *string
	CourtName         *string
	JudgeName         *string
	HearingType       *string
	Purpose           *string
	CourtInstructions *string
	DocumentsToBring  []string
	Proceedings       *string
	NextHearingDate   *string
	NextHearingTime   *string
	AdjournmentReason *string
	Attendance        *Attendance
	Orders            []Order
	Notes             *string
	Override          *OverrideRequest
}

func (in Input) timeChanged() bool {
	return in.HearingDate != nil || in.HearingTime != nil || in.Timezone != nil ||
		in.StartAt != nil || in.EndAt != nil || in.Duration != nil
}

func (in Input) schedulingChanged() bool {
	return in.timeChanged() || in.Status != nil ||
		in.CourtroomID != nil || in.CounselID != nil || in.ClientID != nil
}

// CheckResult is the outcome of a dry-run conflict check.
type CheckResult struct {
	Valid     bool
	Errors    []string
	StartAt   *time.Time
	EndAt     *time.Time
	Scopes    string
	Conflicts []Conflict
}

type Service interface {
	Create(ctx context.Context, ownerID string, in Input) (*Hearing, error)
	GetByID(ctx context.Context, id, ownerID string) (*Hearing, error)
	List(ctx context.Context, ownerID string) ([]*Hearing, error)
	ListByCase(ctx context.Context, caseID, ownerID string) ([]*Hearing, error)
	// ListToday returns the hearings dated today in zone, earliest first.
	ListToday(ctx context.Context, ownerID, zone string) ([]*Hearing, error)
	Update(ctx context.Context, id, ownerID string, in Input) (*Hearing, error)
	Delete(ctx context.Context, id, ownerID string) error
	// CheckConflicts validates in and scans for clashes without writing anything.
	// hearingID names the hearing being edited, or is empty for a new one.
	CheckConflicts(ctx context.Context, ownerID, hearingID string, in Input) (*CheckResult, error)
}

type service struct {
	repo     Repository
	cases    CaseReader
	scanner  *Scanner
	locker   lock.Locker
	resolver ZoneResolver
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, cases CaseReader, scanner *Scanner, locker lock.Locker, resolver ZoneResolver, log zerolog.Logger) Service {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if resolver == nil {
		resolver = FixedOffsetResolver{}
	}
	return &service{
		repo:     repo,
		cases:    cases,
		scanner:  scanner,
		locker:   locker,
		resolver: resolver,
		log:      log.With().Str("component", "hearing_service").Logger(),
		now:      time.Now,
	}
}

func newHearing(ownerID string) *Hearing {
	return &Hearing{
		Owner:       ownerID,
		Status:      StatusScheduled,
		HearingType: TypeInterim,
		Timezone:    DefaultTimezone,
		Duration:    DefaultDuration,
	}
}

func (s *service) Create(ctx context.Context, ownerID string, in Input) (*Hearing, error) {
	if in.CaseID == nil || *in.CaseID == "" {
		return nil, ErrInvalidInput
	}

	h := newHearing(ownerID)
	if err := s.apply(h, in); err != nil {
		return nil, err
	}
	if h.CourtName == "" {
		return nil, ErrCourtNameRequired
	}
	if err := s.checkCase(ctx, h.CaseID, ownerID); err != nil {
		return nil, err
	}
	if err := s.resolveTimes(h, in, true); err != nil {
		return nil, err
	}

	err := s.guarded(ctx, h, in.Override, true, func(ctx context.Context) error {
		return s.repo.Create(ctx, h)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("hearing_id", h.ID).Str("case_id", h.CaseID).Str("owner", ownerID).Msg("hearing created")
	s.populate(ctx, []*Hearing{h})
	return h, nil
}

func (s *service) GetByID(ctx context.Context, id, ownerID string) (*Hearing, error) {
	h, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, []*Hearing{h})
	return h, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]*Hearing, error) {
	hearings, err := s.repo.Query(ctx, []query.Filter{
		query.Where(FieldOwner, query.OpEq, ownerID),
	}, query.Desc(FieldHearingDate), 0)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, hearings)
	return hearings, nil
}

func (s *service) ListByCase(ctx context.Context, caseID, ownerID string) ([]*Hearing, error) {
	hearings, err := s.repo.Query(ctx, []query.Filter{
		query.Where(FieldCaseID, query.OpEq, caseID),
		query.Where(FieldOwner, query.OpEq, ownerID),
	}, query.Desc(FieldHearingDate), 0)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, hearings)
	return hearings, nil
}

func (s *service) ListToday(ctx context.Context, ownerID, zone string) ([]*Hearing, error) {
	if zone == "" {
		zone = DefaultTimezone
	}
	today, _ := s.resolver.ToLocal(s.now(), zone)

	hearings, err := s.repo.Query(ctx, []query.Filter{
		query.Where(FieldOwner, query.OpEq, ownerID),
		query.Where(FieldHearingDate, query.OpGte, today),
		query.Where(FieldHearingDate, query.OpLt, today.AddDate(0, 0, 1)),
	}, query.Asc(FieldHearingTime), 0)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, hearings)
	return hearings, nil
}

func (s *service) Update(ctx context.Context, id, ownerID string, in Input) (*Hearing, error) {
	h, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	previousCase := h.CaseID
	if err := s.apply(h, in); err != nil {
		return nil, err
	}
	if h.CourtName == "" {
		return nil, ErrCourtNameRequired
	}
	if h.CaseID != previousCase {
		if err := s.checkCase(ctx, h.CaseID, ownerID); err != nil {
			return nil, err
		}
	}
	if err := s.resolveTimes(h, in, false); err != nil {
		return nil, err
	}

	err = s.guarded(ctx, h, in.Override, in.schedulingChanged(), func(ctx context.Context) error {
		return s.repo.Update(ctx, h)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("hearing_id", h.ID).Str("owner", ownerID).Msg("hearing updated")
	s.populate(ctx, []*Hearing{h})
	return h, nil
}

func (s *service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.owned(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("hearing_id", id).Str("owner", ownerID).Msg("hearing deleted")
	return nil
}

func (s *service) CheckConflicts(ctx context.Context, ownerID, hearingID string, in Input) (*CheckResult, error) {
	creating := hearingID == ""

	h := newHearing(ownerID)
	if !creating {
		existing, err := s.owned(ctx, hearingID, ownerID)
		if err != nil {
			return nil, err
		}
		h = existing
	}

	if err := s.apply(h, in); err != nil {
		return nil, err
	}

	result := &CheckResult{Scopes: s.scanner.Scopes().String(), Errors: []string{}, Conflicts: []Conflict{}}

	err := s.resolveTimes(h, in, creating)
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		result.Errors = vErr.Errors
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	conflicts, err := s.scanner.FindConflicts(ctx, ConflictQuery{
		UserID:           ownerID,
		Start:            *h.StartAt,
		End:              *h.EndAt,
		ResourceScope:    h.ResourceScope,
		ExcludeHearingID: h.ID,
	})
	if err != nil {
		return nil, err
	}

	result.Valid = true
	result.StartAt, result.EndAt = h.StartAt, h.EndAt
	if conflicts != nil {
		result.Conflicts = conflicts
	}
	return result, nil
}

func (s *service) owned(ctx context.Context, id, ownerID string) (*Hearing, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Owner != ownerID {
		return nil, ErrPermissionDenied
	}
	return h, nil
}

func (s *service) checkCase(ctx context.Context, caseID, ownerID string) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, legalcase.ErrNotFound) {
			return ErrCaseNotFound
		}
		return fmt.Errorf("get case %s: %w", caseID, err)
	}
	if c.Owner != ownerID {
		return ErrPermissionDenied
	}
	return nil
}

// apply copies the sent descriptive fields onto h.
func (s *service) apply(h *Hearing, in Input) error {
	if in.CaseID != nil {
		h.CaseID = *in.CaseID
	}
	if in.HearingDate != nil {
		d, err := parseOptionalDate(*in.HearingDate)
		if err != nil {
			return ErrInvalidHearingDate
		}
		h.HearingDate = d
	}
	if in.HearingTime != nil {
		if *in.HearingTime != "" && !ValidClock(*in.HearingTime) {
			return ErrInvalidHearingTime
		}
		h.HearingTime = *in.HearingTime
	}
	if in.Timezone != nil {
		h.Timezone = strings.TrimSpace(*in.Timezone)
	}
	if h.Timezone == "" {
		h.Timezone = DefaultTimezone
	}
	if in.Duration != nil {
		h.Duration = *in.Duration
	}
	if in.Status != nil {
		st := Status(*in.Status)
		if !st.Valid() {
			return ErrInvalidStatus
		}
		h.Status = st
	}

	if in.CourtroomID != nil {
		h.ResourceScope.CourtroomID = strings.TrimSpace(*in.CourtroomID)
	}
	if in.CounselID != nil {
		h.ResourceScope.CounselID = strings.TrimSpace(*in.CounselID)
	}
	if in.ClientID != nil {
		h.ResourceScope.ClientID = strings.TrimSpace(*in.ClientID)
	}

	if in.CourtName != nil {
		h.CourtName = strings.TrimSpace(*in.CourtName)
	}
	if in.JudgeName != nil {
		h.JudgeName = *in.JudgeName
	}
	if in.HearingType != nil {
		t := Type(*in.HearingType)
		if !t.Valid() {
			return ErrInvalidHearingType
		}
		h.HearingType = t
	}
	if in.Purpose != nil {
		h.Purpose = *in.Purpose
	}
	if in.CourtInstructions != nil {
		h.CourtInstructions = *in.CourtInstructions
	}
	if in.DocumentsToBring != nil {
		h.DocumentsToBring = in.DocumentsToBring
	}
	if in.Proceedings != nil {
		h.Proceedings = *in.Proceedings
	}
	if in.NextHearingDate != nil {
		d, err := parseOptionalDate(*in.NextHearingDate)
		if err != nil {
			return ErrInvalidHearingDate
		}
		h.NextHearingDate = d
	}
	if in.NextHearingTime != nil {
		if *in.NextHearingTime != "" && !ValidClock(*in.NextHearingTime) {
			return ErrInvalidHearingTime
		}
		h.NextHearingTime = *in.NextHearingTime
	}
	if in.AdjournmentReason != nil {
		h.AdjournmentReason = *in.AdjournmentReason
	}
	if in.Attendance != nil {
		h.Attendance = *in.Attendance
	}
	if in.Orders != nil {
		h.Orders = in.Orders
	}
	if in.Notes != nil {
		h.Notes = *in.Notes
	}
	return nil
}

// resolveTimes settles StartAt and EndAt from whichever representation the input
// touched, validates the result and keeps the legacy fields in step.
// The past-date check only runs when the request touches the schedule, so an old
// hearing can still be annotated.
func (s *service) resolveTimes(h *Hearing, in Input, creating bool) error {
	duration := h.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	legacyChanged := in.HearingDate != nil || in.HearingTime != nil || in.Timezone != nil

	startRaw, endRaw := formatTime(h.StartAt), formatTime(h.EndAt)
	derived := false
	switch {
	case in.StartAt != nil:
		startRaw, endRaw = strings.TrimSpace(*in.StartAt), ""
	case h.HearingDate != nil && (legacyChanged || h.StartAt == nil || (in.Duration != nil && in.EndAt == nil)):
		start, end, err := ComputeHearingTimes(s.resolver, *h.HearingDate, h.HearingTime, h.Timezone, duration)
		if err != nil {
			return ErrInvalidHearingTime
		}
		startRaw, endRaw = formatTime(&start), formatTime(&end)
		derived = true
	}

	if in.EndAt != nil {
		endRaw = strings.TrimSpace(*in.EndAt)
	} else if !derived && startRaw != "" && (in.StartAt != nil || in.Duration != nil || endRaw == "") {
		if start, err := parseInstant(startRaw); err == nil {
			end := start.Add(time.Duration(duration) * time.Minute)
			endRaw = formatTime(&end)
		}
	}

	draft := Draft{StartAt: startRaw, EndAt: endRaw, Duration: in.Duration}
	if in.EndAt != nil {
		draft.MatchSpan = true
		if draft.Duration == nil {
			draft.Duration = spanMinutes(startRaw, endRaw)
		}
	}
	if creating || in.timeChanged() || in.Status != nil {
		draft.Status = h.Status
	}
	if err := ValidateHearingData(draft, s.now()).Err(); err != nil {
		return err
	}

	start, _ := parseInstant(startRaw)
	end, _ := parseInstant(endRaw)
	h.StartAt, h.EndAt = &start, &end

	if in.EndAt != nil {
		h.Duration = int(end.Sub(start) / time.Minute)
	}
	if h.Duration <= 0 {
		h.Duration = DefaultDuration
	}

	switch {
	case derived && h.HearingTime == "":
		h.HearingTime = DefaultClock
	case !derived && (h.HearingDate == nil || in.StartAt != nil):
		date, clock := s.resolver.ToLocal(start, h.Timezone)
		h.HearingDate, h.HearingTime = &date, clock
	}
	return nil
}

// spanMinutes is the duration implied by an explicit start and end, or nil when
// either side does not parse.
func spanMinutes(startRaw, endRaw string) *int {
	start, err := parseInstant(startRaw)
	if err != nil {
		return nil
	}
	end, err := parseInstant(endRaw)
	if err != nil || !start.Before(end) {
		return nil
	}
	minutes := int(end.Sub(start) / time.Minute)
	return &minutes
}

// guarded runs write under the owner's schedule lock after a conflict scan.
// Inactive hearings and writes that leave the schedule untouched skip the scan.
func (s *service) guarded(ctx context.Context, h *Hearing, override *OverrideRequest, scan bool, write func(context.Context) error) error {
	if !scan || !h.Status.Active() {
		return write(ctx)
	}

	release, err := s.locker.Acquire(ctx, "hearings:"+h.Owner)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return ErrSchedulingBusy
		}
		return fmt.Errorf("acquire schedule lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Str("owner", h.Owner).Msg("failed to release schedule lock")
		}
	}()

	conflicts, err := s.scanner.FindConflicts(ctx, ConflictQuery{
		UserID:           h.Owner,
		Start:            *h.StartAt,
		End:              *h.EndAt,
		ResourceScope:    h.ResourceScope,
		ExcludeHearingID: h.ID,
	})
	if err != nil {
		return err
	}

	if len(conflicts) > 0 {
		if override == nil || !override.Allowed {
			return &ConflictError{Conflicts: conflicts}
		}
		reason := strings.TrimSpace(override.Reason)
		if reason == "" {
			return ErrOverrideReason
		}

		ids := make([]string, len(conflicts))
		for i, c := range conflicts {
			ids[i] = c.HearingID
		}
		at := s.now().UTC()
		h.ConflictOverride = ConflictOverride{
			Allowed:             true,
			Reason:              reason,
			OverriddenBy:        h.Owner,
			OverriddenAt:        &at,
			ConflictingHearings: ids,
		}
		metrics.IncConflictOverride()
		s.log.Info().Str("owner", h.Owner).Strs("conflicting_hearings", ids).Msg("schedule conflict overridden")
	}

	return write(ctx)
}

// populate attaches case number and client name. Missing cases are left blank.
func (s *service) populate(ctx context.Context, hearings []*Hearing) {
	if s.cases == nil || len(hearings) == 0 {
		return
	}

	index := make(map[string]int)
	var ids []string
	for _, h := range hearings {
		if _, seen := index[h.CaseID]; !seen && h.CaseID != "" {
			index[h.CaseID] = len(ids)
			ids = append(ids, h.CaseID)
		}
	}

	found := make([]*legalcase.Case, len(ids))
	var g errgroup.Group
	g.SetLimit(s.scanner.limit)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.cases.GetByID(ctx, id)
			if err != nil {
				s.log.Debug().Err(err).Str("case_id", id).Msg("case not populated")
				return nil
			}
			found[i] = c
			return nil
		})
	}
	_ = g.Wait()

	for _, h := range hearings {
		i, ok := index[h.CaseID]
		if !ok || found[i] == nil {
			continue
		}
		h.CaseNumber = found[i].CaseNumber
		h.ClientName = found[i].ClientName
	}
}

func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseHearingDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
