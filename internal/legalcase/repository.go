package legalcase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

// Repository defines methods for accessing case data from storage.
type Repository interface {
	Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Case, error)
	GetByID(ctx context.Context, id string) (*Case, error)
	Create(ctx context.Context, c *Case) error
	Update(ctx context.Context, c *Case) error
	Delete(ctx context.Context, id string) error
}

var caseColumns = query.Columns{
	FieldOwner:      "owner_id",
	FieldStatus:     "status",
	FieldCaseNumber: "case_number",
	FieldPriority:   "priority",
	FieldCreatedAt:  "created_at",
}

var caseSelect = []string{
	"id", "owner_id", "case_number", "client_name", "opposing_party", "court_name",
	"judge_name", "status", "priority", "case_type", "description", "next_hearing",
	"notes", "created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(
		&c.ID, &c.Owner, &c.CaseNumber, &c.ClientName, &c.OpposingParty, &c.CourtName,
		&c.JudgeName, &c.Status, &c.Priority, &c.CaseType, &c.Description, &c.NextHearing,
		&c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgxRepository) Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Case, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	b := psql.Select(caseSelect...).From("public.cases")

	b, err := caseColumns.Apply(b, filters)
	if err != nil {
		return nil, err
	}
	if b, err = caseColumns.OrderBy(b, order); err != nil {
		return nil, err
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query cases failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases failed: %w", err)
	}
	defer rows.Close()

	var cases []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case failed: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases failed: %w", err)
	}
	return cases, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Case, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(caseSelect...).
		From("public.cases").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get case query failed: %w", err)
	}

	c, err := scanCase(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get case failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) Create(ctx context.Context, c *Case) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Insert("public.cases").
		Columns(
			"id", "owner_id", "case_number", "client_name", "opposing_party", "court_name",
			"judge_name", "status", "priority", "case_type", "description", "next_hearing", "notes",
		).
		Values(
			c.ID, c.Owner, c.CaseNumber, c.ClientName, c.OpposingParty, c.CourtName,
			c.JudgeName, c.Status, c.Priority, c.CaseType, c.Description, c.NextHearing, c.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create case query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("create case failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Update(ctx context.Context, c *Case) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Update("public.cases").
		Set("case_number", c.CaseNumber).
		Set("client_name", c.ClientName).
		Set("opposing_party", c.OpposingParty).
		Set("court_name", c.CourtName).
		Set("judge_name", c.JudgeName).
		Set("status", c.Status).
		Set("priority", c.Priority).
		Set("case_type", c.CaseType).
		Set("description", c.Description).
		Set("next_hearing", c.NextHearing).
		Set("notes", c.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update case query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update case failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Delete("public.cases").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete case query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete case failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func touch(c *Case, created bool) {
	now := time.Now().UTC()
	if created {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
