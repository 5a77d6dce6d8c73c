package holder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists holders and role names.
type Repository interface {
	Create(ctx context.Context, h Holder) error
	Get(ctx context.Context, id string) (Holder, error)
	GetByUsername(ctx context.Context, username string) (Holder, error)
	Update(ctx context.Context, h Holder) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context, f Filter, page Page) ([]Holder, error)
	CreateRole(ctx context.Context, name string) error
	FilterRoles(ctx context.Context, names []string) ([]string, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed holder repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

// Create inserts a holder and its role assignments in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, h Holder) error {
	holderID, err := uuid.Parse(h.ID)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	_, err = tx.Exec(ctx, `INSERT INTO holders (id, username, password_hash, created_at)
        VALUES ($1, $2, $3, $4)`, holderID, h.Username, h.PasswordHash, h.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrExists
		}
		return err
	}
	if err := replaceRoles(ctx, tx, holderID, h.Roles); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Get fetches a holder by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Holder, error) {
	holderID, err := uuid.Parse(id)
	if err != nil {
		return Holder{}, ErrNotFound
	}
	return r.get(ctx, `WHERE id = $1`, holderID)
}

// GetByUsername fetches a holder by its unique username.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (Holder, error) {
	return r.get(ctx, `WHERE username = $1`, username)
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (Holder, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, password_hash, created_at FROM holders `+where, arg)
	var (
		h         Holder
		id        uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &h.Username, &h.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Holder{}, ErrNotFound
		}
		return Holder{}, err
	}
	h.ID = id.String()
	h.CreatedAt = createdAt.UTC()
	roles, err := r.rolesFor(ctx, id)
	if err != nil {
		return Holder{}, err
	}
	h.Roles = roles
	return h, nil
}

// Update rewrites the credential hash and role assignments.
func (r *PostgresRepository) Update(ctx context.Context, h Holder) error {
	holderID, err := uuid.Parse(h.ID)
	if err != nil {
		return ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE holders SET password_hash = $1 WHERE id = $2`, h.PasswordHash, holderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM holder_roles WHERE holder_id = $1`, holderID); err != nil {
		return err
	}
	if err := replaceRoles(ctx, tx, holderID, h.Roles); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a holder; absent holders are not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	holderID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	_, err = r.db.Exec(ctx, `DELETE FROM holders WHERE id = $1`, holderID)
	return err
}

// DeleteAll removes every holder.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM holders`)
	return err
}

// List returns the filtered page of holders in creation order.
func (r *PostgresRepository) List(ctx context.Context, f Filter, page Page) ([]Holder, error) {
	var (
		conds []string
		args  []any
	)
	if f.Username != "" {
		args = append(args, "%"+f.Username+"%")
		conds = append(conds, fmt.Sprintf("username LIKE $%d", len(args)))
	}
	if len(f.Roles) > 0 {
		args = append(args, f.Roles)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM holder_roles hr WHERE hr.holder_id = holders.id AND hr.role_name = ANY($%d))", len(args)))
	}

	query := `SELECT id, username, password_hash, created_at FROM holders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, id`
	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holders []Holder
	for rows.Next() {
		var (
			h         Holder
			id        uuid.UUID
			createdAt time.Time
		)
		if err := rows.Scan(&id, &h.Username, &h.PasswordHash, &createdAt); err != nil {
			return nil, err
		}
		h.ID = id.String()
		h.CreatedAt = createdAt.UTC()
		holders = append(holders, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range holders {
		id, _ := uuid.Parse(holders[i].ID)
		roles, err := r.rolesFor(ctx, id)
		if err != nil {
			return nil, err
		}
		holders[i].Roles = roles
	}
	return holders, nil
}

// CreateRole registers a role name; names are globally unique.
func (r *PostgresRepository) CreateRole(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO roles (name) VALUES ($1)`, name)
	if isUniqueViolation(err) {
		return ErrRoleExists
	}
	return err
}

// FilterRoles returns the subset of names that are registered roles.
// Unknown names are dropped, not rejected.
func (r *PostgresRepository) FilterRoles(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT name FROM roles WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) rolesFor(ctx context.Context, holderID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT role_name FROM holder_roles WHERE holder_id = $1 ORDER BY role_name`, holderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

func replaceRoles(ctx context.Context, tx pgx.Tx, holderID uuid.UUID, roles []string) error {
	for _, role := range roles {
		if _, err := tx.Exec(ctx, `INSERT INTO holder_roles (holder_id, role_name) VALUES ($1, $2)`, holderID, role); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
