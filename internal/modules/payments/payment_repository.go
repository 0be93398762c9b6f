package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"user-profile-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool and pgx.Tx the repository needs, so the
// same repository code runs inside and outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RepositoryInterface defines storage operations on a user's payment
// method collection. Every write is scoped: it touches only the row (or,
// for ClearDefault, only the is_default column of sibling rows) it names,
// so rows holding legacy data are never read back or re-validated.
type RepositoryInterface interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	WithTx(tx pgx.Tx) RepositoryInterface

	List(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	FindByID(ctx context.Context, userID, methodID string) (*models.PaymentMethod, error)
	Insert(ctx context.Context, userID string, pm models.PaymentMethod) (*models.PaymentMethod, error)
	UpdateFields(ctx context.Context, userID, methodID string, data models.PaymentMethodCandidate) (*models.PaymentMethod, error)
	ClearDefault(ctx context.Context, userID, exceptID string) error
	Delete(ctx context.Context, userID, methodID string) error
}

type Repository struct {
	db DB
}

func NewRepository(db DB) RepositoryInterface {
	return &Repository{db: db}
}

// BeginTx starts a transaction on the underlying pool.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// WithTx returns a repository whose operations run inside the given
// transaction.
func (r *Repository) WithTx(tx pgx.Tx) RepositoryInterface {
	return &Repository{db: tx}
}

const paymentMethodColumns = `id, user_id, type, provider, last4, expiry_month, expiry_year, cardholder_name, nickname, is_default, is_active, created_at, updated_at`

func scanPaymentMethod(row pgx.Row) (*models.PaymentMethod, error) {
	pm := &models.PaymentMethod{}
	err := row.Scan(
		&pm.ID, &pm.UserID, &pm.Type, &pm.Provider, &pm.Last4,
		&pm.ExpiryMonth, &pm.ExpiryYear, &pm.CardholderName, &pm.Nickname,
		&pm.IsDefault, &pm.IsActive, &pm.CreatedAt, &pm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (r *Repository) List(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_methods WHERE user_id = $1 ORDER BY created_at`, paymentMethodColumns)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.List: %w", err)
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		pm, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.List: %w", err)
		}
		methods = append(methods, *pm)
	}
	return methods, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, userID, methodID string) (*models.PaymentMethod, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_methods WHERE user_id = $1 AND id = $2`, paymentMethodColumns)
	pm, err := scanPaymentMethod(r.db.QueryRow(ctx, query, userID, methodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return pm, nil
}

// Insert appends a normalized entry to the collection. The id and
// timestamps come back from the database so the returned entry is exactly
// what a later List will read.
func (r *Repository) Insert(ctx context.Context, userID string, pm models.PaymentMethod) (*models.PaymentMethod, error) {
	query := `
        INSERT INTO payment_methods (user_id, type, provider, last4, expiry_month, expiry_year, cardholder_name, nickname, is_default, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		userID, pm.Type, pm.Provider, pm.Last4, pm.ExpiryMonth, pm.ExpiryYear,
		pm.CardholderName, pm.Nickname, pm.IsDefault, pm.IsActive,
	).Scan(&pm.ID, &pm.CreatedAt, &pm.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.Insert: %w", err)
	}
	pm.UserID = userID
	return &pm, nil
}

// UpdateFields writes only the columns present in data, leaving every
// other column of the row (and every other row) untouched. The caller has
// already normalized the values; card_number and cvv never reach here.
func (r *Repository) UpdateFields(ctx context.Context, userID, methodID string, data models.PaymentMethodCandidate) (*models.PaymentMethod, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if data.Type != nil {
		set("type", *data.Type)
	}
	if data.Provider != nil {
		set("provider", *data.Provider)
	}
	if data.Last4 != nil {
		set("last4", *data.Last4)
	}
	if data.ExpiryMonth != nil {
		set("expiry_month", data.ExpiryMonth.Int())
	}
	if data.ExpiryYear != nil {
		set("expiry_year", data.ExpiryYear.Int())
	}
	if data.CardholderName != nil {
		set("cardholder_name", *data.CardholderName)
	}
	if data.Nickname != nil {
		set("nickname", *data.Nickname)
	}
	if data.IsDefault != nil {
		set("is_default", *data.IsDefault)
	}
	if data.IsActive != nil {
		set("is_active", *data.IsActive)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, userID, methodID)
	}

	set("updated_at", time.Now())
	args = append(args, userID, methodID)

	query := fmt.Sprintf(`UPDATE payment_methods SET %s WHERE user_id = $%d AND id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, paymentMethodColumns)

	pm, err := scanPaymentMethod(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateFields: %w", err)
	}
	return pm, nil
}

// ClearDefault flips is_default off for every entry in the collection
// except the one named by exceptID (pass "" to clear all, e.g. before an
// insert). Only the is_default column is written; sibling rows are never
// read, so entries with stale expiry data cannot fail the operation.
func (r *Repository) ClearDefault(ctx context.Context, userID, exceptID string) error {
	query := `UPDATE payment_methods SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`
	args := []any{userID}
	if exceptID != "" {
		query += ` AND id <> $2`
		args = append(args, exceptID)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("repository.ClearDefault: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, userID, methodID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM payment_methods WHERE user_id = $1 AND id = $2`, userID, methodID)
	if err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
