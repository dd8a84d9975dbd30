package hearing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-docket-backend/internal/legalcase"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

type stubCases struct {
	mu    sync.Mutex
	cases map[string]*legalcase.Case
	calls map[string]int
}

func newStubCases(cases ...*legalcase.Case) *stubCases {
	s := &stubCases{cases: map[string]*legalcase.Case{}, calls: map[string]int{}}
	for _, c := range cases {
		s.cases[c.ID] = c
	}
	return s
}

func (s *stubCases) GetByID(_ context.Context, id string) (*legalcase.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[id]++
	c, ok := s.cases[id]
	if !ok {
		return nil, legalcase.ErrNotFound
	}
	return c, nil
}

type failingFinder struct{ err error }

func (f failingFinder) Query(context.Context, []query.Filter, *query.Order, int) ([]*Hearing, error) {
	return nil, f.err
}

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func seed(t *testing.T, repo Repository, h *Hearing) *Hearing {
	t.Helper()
	if h.Owner == "" {
		h.Owner = "user-1"
	}
	if h.Status == "" {
		h.Status = StatusScheduled
	}
	require.NoError(t, repo.Create(context.Background(), h))
	return h
}

func newTestScanner(repo Finder, cases CaseReader, scopes string) *Scanner {
	return NewScanner(repo, cases, ScannerConfig{Scopes: ParseScopes(scopes)}, zerolog.Nop())
}

func candidate(start, end string, scope ResourceScope) ConflictQuery {
	return ConflictQuery{UserID: "user-1", Start: *at(start), End: *at(end), ResourceScope: scope}
}

func TestFindConflictsSameCourtroom(t *testing.T) {
	repo := NewMemoryRepository()
	cases := newStubCases(&legalcase.Case{ID: "case-1", CaseNumber: "CS-101/2024"})
	h1 := seed(t, repo, &Hearing{
		CaseID:        "case-1",
		StartAt:       at("2024-03-01T09:00:00Z"),
		EndAt:         at("2024-03-01T10:00:00Z"),
		ResourceScope: ResourceScope{CourtroomID: "C1"},
	})

	conflicts, err := newTestScanner(repo, cases, "").FindConflicts(context.Background(),
		candidate("2024-03-01T09:30:00Z", "2024-03-01T10:30:00Z", ResourceScope{CourtroomID: "C1"}))
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, h1.ID, c.HearingID)
	assert.Equal(t, "CS-101/2024", c.CaseNumber)
	assert.Equal(t, "Same courtroom", c.ConflictReason)
	assert.Equal(t, []string{"courtroom"}, c.ResourceScope)
	assert.Equal(t, *h1.StartAt, c.StartAt)
	assert.Equal(t, *h1.EndAt, c.EndAt)
}

func TestFindConflictsScopeGating(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, &Hearing{
		CaseID:        "case-1",
		StartAt:       at("2024-03-01T09:00:00Z"),
		EndAt:         at("2024-03-01T10:00:00Z"),
		ResourceScope: ResourceScope{CourtroomID: "C1"},
	})
	q := candidate("2024-03-01T09:30:00Z", "2024-03-01T10:30:00Z", ResourceScope{CourtroomID: "C2"})

	conflicts, err := newTestScanner(repo, nil, "courtroom,counsel").FindConflicts(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	conflicts, err = newTestScanner(repo, nil, "global").FindConflicts(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Time overlap", conflicts[0].ConflictReason)
	assert.Equal(t, []string{}, conflicts[0].ResourceScope)
}

func TestFindConflictsMultipleScopes(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, &Hearing{
		StartAt:       at("2024-03-01T09:00:00Z"),
		EndAt:         at("2024-03-01T10:00:00Z"),
		ResourceScope: ResourceScope{CourtroomID: "C1", CounselID: "K1", ClientID: "P1"},
	})
	q := candidate("2024-03-01T09:00:00Z", "2024-03-01T09:30:00Z", ResourceScope{CourtroomID: "C1", CounselID: "K1", ClientID: "P1"})

	conflicts, err := newTestScanner(repo, nil, "courtroom,counsel,client,global").FindConflicts(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Same courtroom, Same counsel, Same client", conflicts[0].ConflictReason)
	assert.Equal(t, []string{"courtroom", "counsel", "client"}, conflicts[0].ResourceScope)

	// Client is not tracked by default.
	conflicts, err = newTestScanner(repo, nil, "").FindConflicts(context.Background(),
		candidate("2024-03-01T09:00:00Z", "2024-03-01T09:30:00Z", ResourceScope{ClientID: "P1"}))
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsSkipsInactiveOtherOwnersAndTouching(t *testing.T) {
	repo := NewMemoryRepository()
	scope := ResourceScope{CourtroomID: "C1"}
	seed(t, repo, &Hearing{Status: StatusCancelled, StartAt: at("2024-03-01T09:00:00Z"), EndAt: at("2024-03-01T10:00:00Z"), ResourceScope: scope})
	seed(t, repo, &Hearing{Status: StatusCompleted, StartAt: at("2024-03-01T09:00:00Z"), EndAt: at("2024-03-01T10:00:00Z"), ResourceScope: scope})
	seed(t, repo, &Hearing{Owner: "user-2", StartAt: at("2024-03-01T09:00:00Z"), EndAt: at("2024-03-01T10:00:00Z"), ResourceScope: scope})
	seed(t, repo, &Hearing{StartAt: at("2024-03-01T10:00:00Z"), EndAt: at("2024-03-01T11:00:00Z"), ResourceScope: scope})
	adjourned := seed(t, repo, &Hearing{Status: StatusAdjourned, StartAt: at("2024-03-01T08:00:00Z"), EndAt: at("2024-03-01T09:30:00Z"), ResourceScope: scope})

	conflicts, err := newTestScanner(repo, nil, "").FindConflicts(context.Background(),
		candidate("2024-03-01T09:00:00Z", "2024-03-01T10:00:00Z", scope))
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, adjourned.ID, conflicts[0].HearingID)
}

func TestFindConflictsExcludesHearing(t *testing.T) {
	repo := NewMemoryRepository()
	scope := ResourceScope{CounselID: "K1"}
	h := seed(t, repo, &Hearing{StartAt: at("2024-03-01T09:00:00Z"), EndAt: at("2024-03-01T10:00:00Z"), ResourceScope: scope})

	q := candidate("2024-03-01T09:00:00Z", "2024-03-01T10:00:00Z", scope)
	q.ExcludeHearingID = h.ID

	conflicts, err := newTestScanner(repo, nil, "global").FindConflicts(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsLegacyHearings(t *testing.T) {
	repo := NewMemoryRepository()
	day := date(2024, 3, 1)
	// 15:00 in Asia/Kolkata is 09:30Z.
	legacy := seed(t, repo, &Hearing{HearingDate: &day, HearingTime: "15:00", Timezone: "Asia/Kolkata", Duration: 60, ResourceScope: ResourceScope{CourtroomID: "C1"}})
	seed(t, repo, &Hearing{HearingDate: &day, ResourceScope: ResourceScope{CourtroomID: "C1"}})
	seed(t, repo, &Hearing{ResourceScope: ResourceScope{CourtroomID: "C1"}})

	scanner := newTestScanner(repo, nil, "")
	q := candidate("2024-03-01T10:00:00Z", "2024-03-01T11:00:00Z", ResourceScope{CourtroomID: "C1"})

	first, err := scanner.FindConflicts(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, legacy.ID, first[0].HearingID)
	assert.Equal(t, *at("2024-03-01T09:30:00Z"), first[0].StartAt)
	assert.Equal(t, *at("2024-03-01T10:30:00Z"), first[0].EndAt)

	second, err := scanner.FindConflicts(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFindConflictsCaseLookupFailureUsesPlaceholder(t *testing.T) {
	repo := NewMemoryRepository()
	cases := newStubCases()
	scope := ResourceScope{CourtroomID: "C1"}
	for i := 0; i < 3; i++ {
		seed(t, repo, &Hearing{CaseID: "case-gone", StartAt: at("2024-03-01T09:00:00Z"), EndAt: at("2024-03-01T10:00:00Z"), ResourceScope: scope})
	}

	conflicts, err := newTestScanner(repo, cases, "").FindConflicts(context.Background(),
		candidate("2024-03-01T09:00:00Z", "2024-03-01T10:00:00Z", scope))
	require.NoError(t, err)
	require.Len(t, conflicts, 3)
	for _, c := range conflicts {
		assert.Equal(t, "Case case-gone", c.CaseNumber)
	}
	assert.Equal(t, 1, cases.calls["case-gone"], "each case is looked up once")
}

func TestFindConflictsStoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	scanner := newTestScanner(failingFinder{err: storeErr}, nil, "global")

	conflicts, err := scanner.FindConflicts(context.Background(),
		candidate("2024-03-01T09:00:00Z", "2024-03-01T10:00:00Z", ResourceScope{}))
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, conflicts)
}

func TestFindConflictsRejectsBadInput(t *testing.T) {
	scanner := newTestScanner(NewMemoryRepository(), nil, "")

	q := candidate("2024-03-01T10:00:00Z", "2024-03-01T10:00:00Z", ResourceScope{})
	_, err := scanner.FindConflicts(context.Background(), q)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	q = candidate("2024-03-01T09:00:00Z", "2024-03-01T10:00:00Z", ResourceScope{})
	q.UserID = ""
	_, err = scanner.FindConflicts(context.Background(), q)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
