package client

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

// Repository defines methods for accessing client data from storage.
type Repository interface {
	Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Client, error)
	GetByID(ctx context.Context, id string) (*Client, error)
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id string) error
}

var clientColumns = query.Columns{
	FieldOwner:     "owner_id",
	FieldEmail:     "email",
	FieldCreatedAt: "created_at",
}

var clientSelect = []string{
	"id", "owner_id", "name", "email", "phone", "address", "pan_number",
	"aadhar_number", "notes", "created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.Owner, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PANNumber,
		&c.AadharNumber, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgxRepository) Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Client, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	b := psql.Select(clientSelect...).From("public.clients")

	b, err := clientColumns.Apply(b, filters)
	if err != nil {
		return nil, err
	}
	if b, err = clientColumns.OrderBy(b, order); err != nil {
		return nil, err
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query clients failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query clients failed: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client failed: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients failed: %w", err)
	}
	return clients, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Client, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(clientSelect...).
		From("public.clients").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get client query failed: %w", err)
	}

	c, err := scanClient(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get client failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) Create(ctx context.Context, c *Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Insert("public.clients").
		Columns("id", "owner_id", "name", "email", "phone", "address", "pan_number", "aadhar_number", "notes").
		Values(c.ID, c.Owner, c.Name, c.Email, c.Phone, c.Address, c.PANNumber, c.AadharNumber, c.Notes).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create client query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("create client failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Update(ctx context.Context, c *Client) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Update("public.clients").
		Set("name", c.Name).
		Set("email", c.Email).
		Set("phone", c.Phone).
		Set("address", c.Address).
		Set("pan_number", c.PANNumber).
		Set("aadhar_number", c.AadharNumber).
		Set("notes", c.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update client query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update client failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Delete("public.clients").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete client query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete client failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func touch(c *Client, created bool) {
	now := time.Now().UTC()
	if created {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
