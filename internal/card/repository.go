package card

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists cards. Transfer is the one compound mutation: both
// sides must be applied atomically relative to other writers of the same
// cards, so it lives behind the store rather than in the service.
type Repository interface {
	Create(ctx context.Context, c Card) error
	Get(ctx context.Context, id string) (Card, error)
	Update(ctx context.Context, c Card) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	ExistsByNumber(ctx context.Context, token string) (bool, error)
	List(ctx context.Context, f Filter, page Page) ([]Card, error)
	ListByHolder(ctx context.Context, holderID string, f Filter, page Page) ([]Card, error)
	Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (Card, Card, error)
}

// PostgresRepository stores cards in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const cardColumns = `id, number, holder_id, expiration_date, status, balance::text, created_at`

// Create inserts a card record.
func (r *PostgresRepository) Create(ctx context.Context, c Card) error {
	cardID, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	holderID, err := uuid.Parse(c.HolderID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO cards (id, number, holder_id, expiration_date, status, balance, created_at)
        VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)`,
		cardID, c.Number, holderID, dateOnly(c.Expiration), string(c.Status), c.Balance.String(), c.CreatedAt.UTC())
	return err
}

// Get fetches a card by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Card, error) {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return Card{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, cardID)
	return scanCard(row)
}

// Update writes every mutable card field.
func (r *PostgresRepository) Update(ctx context.Context, c Card) error {
	cardID, err := uuid.Parse(c.ID)
	if err != nil {
		return ErrNotFound
	}
	holderID, err := uuid.Parse(c.HolderID)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE cards SET holder_id = $1, expiration_date = $2, status = $3, balance = $4::numeric
        WHERE id = $5`,
		holderID, dateOnly(c.Expiration), string(c.Status), c.Balance.String(), cardID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a card unconditionally; deleting an absent card is not an
// error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	_, err = r.db.Exec(ctx, `DELETE FROM cards WHERE id = $1`, cardID)
	return err
}

// DeleteAll removes every card.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cards`)
	return err
}

// ExistsByNumber reports whether the encoded token is already in use. The
// issuance loop retries on true.
func (r *PostgresRepository) ExistsByNumber(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cards WHERE number = $1)`, token).Scan(&exists)
	return exists, err
}

// List returns the filtered page of cards in creation order.
func (r *PostgresRepository) List(ctx context.Context, f Filter, page Page) ([]Card, error) {
	return r.list(ctx, f, page, "", nil)
}

// ListByHolder restricts List to cards owned by the holder. The ownership
// condition is ANDed with the filter and cannot be relaxed by filter input.
func (r *PostgresRepository) ListByHolder(ctx context.Context, holderID string, f Filter, page Page) ([]Card, error) {
	hid, err := uuid.Parse(holderID)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.list(ctx, f, page, "holder_id", hid)
}

func (r *PostgresRepository) list(ctx context.Context, f Filter, page Page, ownerCol string, ownerVal any) ([]Card, error) {
	var (
		conds []string
		args  []any
	)
	if ownerCol != "" {
		args = append(args, ownerVal)
		conds = append(conds, fmt.Sprintf("%s = $%d", ownerCol, len(args)))
	}
	f.appendSQL(&conds, &args)

	query := `SELECT ` + cardColumns + ` FROM cards`
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

	var cards []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// Transfer debits fromID and credits toID as one transaction. Both rows are
// locked in a stable order, the source balance and both statuses are
// re-checked under the lock, and the two updates commit together, so
// concurrent transfers over the same cards serialize at the store.
func (r *PostgresRepository) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (Card, Card, error) {
	fromUUID, err := uuid.Parse(fromID)
	if err != nil {
		return Card{}, Card{}, ErrNotFound
	}
	toUUID, err := uuid.Parse(toID)
	if err != nil {
		return Card{}, Card{}, ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Card{}, Card{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock in id order so two opposite transfers cannot deadlock.
	first, second := fromUUID, toUUID
	if second.String() < first.String() {
		first, second = second, first
	}
	firstCard, err := lockCard(ctx, tx, first)
	if err != nil {
		return Card{}, Card{}, err
	}
	secondCard, err := lockCard(ctx, tx, second)
	if err != nil {
		return Card{}, Card{}, err
	}

	from, to := firstCard, secondCard
	if first != fromUUID {
		from, to = secondCard, firstCard
	}

	if from.Status != StatusActive || to.Status != StatusActive {
		return Card{}, Card{}, ErrInactiveCard
	}
	if from.Balance.LessThan(amount) {
		return Card{}, Card{}, ErrInsufficientFunds
	}

	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)

	if _, err := tx.Exec(ctx, `UPDATE cards SET balance = $1::numeric WHERE id = $2`, from.Balance.String(), fromUUID); err != nil {
		return Card{}, Card{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE cards SET balance = $1::numeric WHERE id = $2`, to.Balance.String(), toUUID); err != nil {
		return Card{}, Card{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Card{}, Card{}, err
	}
	return from, to, nil
}

func lockCard(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Card, error) {
	row := tx.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
	return scanCard(row)
}

func scanCard(row pgx.Row) (Card, error) {
	var (
		c          Card
		id         uuid.UUID
		holderID   uuid.UUID
		status     string
		balance    string
		expiration time.Time
		createdAt  time.Time
	)
	if err := row.Scan(&id, &c.Number, &holderID, &expiration, &status, &balance, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Card{}, ErrNotFound
		}
		return Card{}, err
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return Card{}, fmt.Errorf("parse stored balance: %w", err)
	}
	c.ID = id.String()
	c.HolderID = holderID.String()
	c.Expiration = dateOnly(expiration)
	c.Status = Status(status)
	c.Balance = bal
	c.CreatedAt = createdAt.UTC()
	return c, nil
}
