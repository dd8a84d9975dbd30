package hearing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

type Repository interface {
	Finder
	GetByID(ctx context.Context, id string) (*Hearing, error)
	Create(ctx context.Context, h *Hearing) error
	Update(ctx context.Context, h *Hearing) error
	Delete(ctx context.Context, id string) error
	// DeleteByCase removes every hearing of a case. Deleting none is not an error.
	DeleteByCase(ctx context.Context, caseID string) error
}

var hearingColumns = query.Columns{
	FieldID:          "id",
	FieldOwner:       "owner_id",
	FieldCaseID:      "case_id",
	FieldStatus:      "status",
	FieldHearingDate: "hearing_date",
	FieldHearingTime: "hearing_time",
	FieldStartAt:     "start_at",
	FieldDocuments:   "documents_to_bring",
}

var hearingSelect = []string{
	"id", "owner_id", "case_id", "hearing_date", "hearing_time", "timezone",
	"start_at", "end_at", "duration", "status",
	"courtroom_id", "counsel_id", "client_id",
	"override_allowed", "override_reason", "override_by", "override_at", "override_hearings",
	"court_name", "judge_name", "hearing_type", "purpose", "court_instructions",
	"documents_to_bring", "proceedings", "next_hearing_date", "next_hearing_time",
	"adjournment_reason", "attendance", "orders", "notes", "created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func scanHearing(row pgx.Row) (*Hearing, error) {
	var h Hearing
	err := row.Scan(
		&h.ID, &h.Owner, &h.CaseID, &h.HearingDate, &h.HearingTime, &h.Timezone,
		&h.StartAt, &h.EndAt, &h.Duration, &h.Status,
		&h.ResourceScope.CourtroomID, &h.ResourceScope.CounselID, &h.ResourceScope.ClientID,
		&h.ConflictOverride.Allowed, &h.ConflictOverride.Reason, &h.ConflictOverride.OverriddenBy,
		&h.ConflictOverride.OverriddenAt, &h.ConflictOverride.ConflictingHearings,
		&h.CourtName, &h.JudgeName, &h.HearingType, &h.Purpose, &h.CourtInstructions,
		&h.DocumentsToBring, &h.Proceedings, &h.NextHearingDate, &h.NextHearingTime,
		&h.AdjournmentReason, &h.Attendance, &h.Orders, &h.Notes, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *pgxRepository) Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Hearing, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	b := psql.Select(hearingSelect...).From("public.hearings")

	b, err := hearingColumns.Apply(b, filters)
	if err != nil {
		return nil, err
	}
	if b, err = hearingColumns.OrderBy(b, order); err != nil {
		return nil, err
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query hearings failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query hearings failed: %w", err)
	}
	defer rows.Close()

	var hearings []*Hearing
	for rows.Next() {
		h, err := scanHearing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hearing failed: %w", err)
		}
		hearings = append(hearings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hearings failed: %w", err)
	}
	return hearings, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Hearing, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(hearingSelect...).
		From("public.hearings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get hearing query failed: %w", err)
	}

	h, err := scanHearing(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get hearing failed: %w", err)
	}
	return h, nil
}

func (r *pgxRepository) Create(ctx context.Context, h *Hearing) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	fillEmpty(h)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Insert("public.hearings").
		Columns(hearingSelect[:len(hearingSelect)-2]...).
		Values(
			h.ID, h.Owner, h.CaseID, h.HearingDate, h.HearingTime, h.Timezone,
			h.StartAt, h.EndAt, h.Duration, h.Status,
			h.ResourceScope.CourtroomID, h.ResourceScope.CounselID, h.ResourceScope.ClientID,
			h.ConflictOverride.Allowed, h.ConflictOverride.Reason, h.ConflictOverride.OverriddenBy,
			h.ConflictOverride.OverriddenAt, h.ConflictOverride.ConflictingHearings,
			h.CourtName, h.JudgeName, h.HearingType, h.Purpose, h.CourtInstructions,
			h.DocumentsToBring, h.Proceedings, h.NextHearingDate, h.NextHearingTime,
			h.AdjournmentReason, h.Attendance, h.Orders, h.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create hearing query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&h.CreatedAt, &h.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrCaseNotFound
		}
		return fmt.Errorf("create hearing failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Update(ctx context.Context, h *Hearing) error {
	fillEmpty(h)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Update("public.hearings").
		SetMap(map[string]any{
			"hearing_date":       h.HearingDate,
			"hearing_time":       h.HearingTime,
			"timezone":           h.Timezone,
			"start_at":           h.StartAt,
			"end_at":             h.EndAt,
			"duration":           h.Duration,
			"status":             h.Status,
			"courtroom_id":       h.ResourceScope.CourtroomID,
			"counsel_id":         h.ResourceScope.CounselID,
			"client_id":          h.ResourceScope.ClientID,
			"override_allowed":   h.ConflictOverride.Allowed,
			"override_reason":    h.ConflictOverride.Reason,
			"override_by":        h.ConflictOverride.OverriddenBy,
			"override_at":        h.ConflictOverride.OverriddenAt,
			"override_hearings":  h.ConflictOverride.ConflictingHearings,
			"court_name":         h.CourtName,
			"judge_name":         h.JudgeName,
			"hearing_type":       h.HearingType,
			"purpose":            h.Purpose,
			"court_instructions": h.CourtInstructions,
			"documents_to_bring": h.DocumentsToBring,
			"proceedings":        h.Proceedings,
			"next_hearing_date":  h.NextHearingDate,
			"next_hearing_time":  h.NextHearingTime,
			"adjournment_reason": h.AdjournmentReason,
			"attendance":         h.Attendance,
			"orders":             h.Orders,
			"notes":              h.Notes,
			"updated_at":         squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": h.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update hearing query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&h.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update hearing failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Delete("public.hearings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete hearing query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete hearing failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteByCase(ctx context.Context, caseID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	b, err := hearingColumns.ApplyDelete(psql.Delete("public.hearings"), []query.Filter{
		query.Where(FieldCaseID, query.OpEq, caseID),
	})
	if err != nil {
		return err
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build delete case hearings query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete case hearings failed: %w", err)
	}
	return nil
}

// fillEmpty replaces nil slices so NOT NULL array and json columns get empty values.
func fillEmpty(h *Hearing) {
	if h.DocumentsToBring == nil {
		h.DocumentsToBring = []string{}
	}
	if h.ConflictOverride.ConflictingHearings == nil {
		h.ConflictOverride.ConflictingHearings = []string{}
	}
	if h.Attendance.WitnessesPresent == nil {
		h.Attendance.WitnessesPresent = []string{}
	}
	if h.Orders == nil {
		h.Orders = []Order{}
	}
}

func touch(h *Hearing, created bool) {
	now := time.Now().UTC()
	if created {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
}
