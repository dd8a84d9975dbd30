package hearing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nekogravitycat/court-docket-backend/internal/legalcase"
	"github.com/nekogravitycat/court-docket-backend/internal/metrics"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

// Finder is the part of the hearing store the scanner reads from.
type Finder interface {
	Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Hearing, error)
}

// CaseReader resolves case ids for display.
type CaseReader interface {
	GetByID(ctx context.Context, id string) (*legalcase.Case, error)
}

// ConflictQuery describes a candidate slot.
type ConflictQuery struct {
	UserID           string
	Start            time.Time
	End              time.Time
	ResourceScope    ResourceScope
	ExcludeHearingID string
}

type ScannerConfig struct {
	Resolver          ZoneResolver
	Scopes            ScopeSet
	EnrichConcurrency int
}

// Scanner finds the active hearings of a user that clash with a candidate slot.
type Scanner struct {
	hearings Finder
	cases    CaseReader
	resolver ZoneResolver
	scopes   ScopeSet
	limit    int
	log      zerolog.Logger
}

func NewScanner(hearings Finder, cases CaseReader, cfg ScannerConfig, log zerolog.Logger) *Scanner {
	if cfg.Resolver == nil {
		cfg.Resolver = FixedOffsetResolver{}
	}
	if cfg.Scopes == nil {
		cfg.Scopes = ParseScopes("")
	}
	if cfg.EnrichConcurrency < 1 {
		cfg.EnrichConcurrency = 1
	}
	return &Scanner{
		hearings: hearings,
		cases:    cases,
		resolver: cfg.Resolver,
		scopes:   cfg.Scopes,
		limit:    cfg.EnrichConcurrency,
		log:      log.With().Str("component", "conflict_scanner").Logger(),
	}
}

// Scopes returns the active conflict scopes.
func (s *Scanner) Scopes() ScopeSet {
	return s.scopes
}

type scopeRule struct {
	scope Scope
	label string
	value func(ResourceScope) string
}

var scopeRules = []scopeRule{
	{ScopeCourtroom, "Same courtroom", func(r ResourceScope) string { return r.CourtroomID }},
	{ScopeCounsel, "Same counsel", func(r ResourceScope) string { return r.CounselID }},
	{ScopeClient, "Same client", func(r ResourceScope) string { return r.ClientID }},
}

// FindConflicts reports every active hearing of q.UserID overlapping [q.Start, q.End)
// on an active scope. A failing case lookup degrades to a placeholder case number;
// a failing hearing query fails the whole scan.
func (s *Scanner) FindConflicts(ctx context.Context, q ConflictQuery) ([]Conflict, error) {
	if q.UserID == "" {
		return nil, ErrInvalidInput
	}
	if !q.Start.Before(q.End) {
		return nil, ErrInvalidTimeRange
	}

	began := time.Now()

	existing, err := s.hearings.Query(ctx, []query.Filter{
		query.Where(FieldOwner, query.OpEq, q.UserID),
		query.Where(FieldStatus, query.OpIn, ActiveStatuses),
	}, nil, 0)
	if err != nil {
		metrics.ObserveConflictScan("error", 0, time.Since(began))
		return nil, fmt.Errorf("query active hearings: %w", err)
	}

	var conflicts []Conflict
	var caseIDs []string
	for _, h := range existing {
		if q.ExcludeHearingID != "" && h.ID == q.ExcludeHearingID {
			continue
		}

		start, end, ok := EffectiveTimes(s.resolver, h)
		if !ok {
			s.log.Debug().Str("hearing_id", h.ID).Msg("skipping hearing without usable times")
			continue
		}
		if !Overlaps(q.Start, q.End, start, end) {
			continue
		}

		var labels, dims []string
		for _, rule := range scopeRules {
			want := rule.value(q.ResourceScope)
			if s.scopes.Has(rule.scope) && want != "" && rule.value(h.ResourceScope) == want {
				labels = append(labels, rule.label)
				dims = append(dims, string(rule.scope))
			}
		}
		if len(labels) == 0 && !s.scopes.Has(ScopeGlobal) {
			continue
		}

		reason := "Time overlap"
		if len(labels) > 0 {
			reason = strings.Join(labels, ", ")
		}
		if dims == nil {
			dims = []string{}
		}

		conflicts = append(conflicts, Conflict{
			HearingID:      h.ID,
			StartAt:        start,
			EndAt:          end,
			ConflictReason: reason,
			ResourceScope:  dims,
		})
		caseIDs = append(caseIDs, h.CaseID)
	}

	s.enrich(ctx, conflicts, caseIDs)

	result := "clear"
	if len(conflicts) > 0 {
		result = "conflict"
	}
	metrics.ObserveConflictScan(result, len(conflicts), time.Since(began))

	return conflicts, nil
}

// enrich fills in case numbers with bounded parallel lookups, one per distinct case.
// Lookups never fail the scan.
func (s *Scanner) enrich(ctx context.Context, conflicts []Conflict, caseIDs []string) {
	if len(conflicts) == 0 {
		return
	}

	unique := make(map[string]int)
	var ids []string
	for _, id := range caseIDs {
		if _, seen := unique[id]; !seen {
			unique[id] = len(ids)
			ids = append(ids, id)
		}
	}

	numbers := make([]string, len(ids))
	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, id := range ids {
		g.Go(func() error {
			numbers[i] = s.caseNumber(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	for i := range conflicts {
		conflicts[i].CaseNumber = numbers[unique[caseIDs[i]]]
	}
}

func (s *Scanner) caseNumber(ctx context.Context, caseID string) string {
	placeholder := "Case " + caseID
	if s.cases == nil || caseID == "" {
		return placeholder
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		metrics.IncCaseLookupFailure()
		s.log.Warn().Err(err).Str("case_id", caseID).Msg("could not fetch case for conflict details")
		return placeholder
	}
	if c == nil || c.CaseNumber == "" {
		return placeholder
	}
	return c.CaseNumber
}
