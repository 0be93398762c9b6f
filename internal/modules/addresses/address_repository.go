package addresses

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

// DB is the subset of pgxpool.Pool and pgx.Tx the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RepositoryInterface defines storage operations on a user's address
// collection. Writes are scoped to the row they name; ClearDefault touches
// only the is_default column of sibling rows.
type RepositoryInterface interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	WithTx(tx pgx.Tx) RepositoryInterface

	List(ctx context.Context, userID string) ([]models.Address, error)
	FindByID(ctx context.Context, userID, addressID string) (*models.Address, error)
	Insert(ctx context.Context, userID string, addr models.Address) (*models.Address, error)
	UpdateFields(ctx context.Context, userID, addressID string, data models.AddressCandidate) (*models.Address, error)
	ClearDefault(ctx context.Context, userID, exceptID string) error
	Delete(ctx context.Context, userID, addressID string) error
}

type Repository struct {
	db DB
}

func NewRepository(db DB) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

func (r *Repository) WithTx(tx pgx.Tx) RepositoryInterface {
	return &Repository{db: tx}
}

const addressColumns = `id, user_id, label, recipient_name, street_address, city, state, postal_code, country, phone, is_default, created_at, updated_at`

func scanAddress(row pgx.Row) (*models.Address, error) {
	addr := &models.Address{}
	err := row.Scan(
		&addr.ID, &addr.UserID, &addr.Label, &addr.RecipientName, &addr.StreetAddress,
		&addr.City, &addr.State, &addr.PostalCode, &addr.Country, &addr.Phone,
		&addr.IsDefault, &addr.CreatedAt, &addr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (r *Repository) List(ctx context.Context, userID string) ([]models.Address, error) {
	query := fmt.Sprintf(`SELECT %s FROM addresses WHERE user_id = $1 ORDER BY created_at`, addressColumns)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.List: %w", err)
	}
	defer rows.Close()

	var result []models.Address
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.List: %w", err)
		}
		result = append(result, *addr)
	}
	return result, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, userID, addressID string) (*models.Address, error) {
	query := fmt.Sprintf(`SELECT %s FROM addresses WHERE user_id = $1 AND id = $2`, addressColumns)
	addr, err := scanAddress(r.db.QueryRow(ctx, query, userID, addressID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return addr, nil
}

func (r *Repository) Insert(ctx context.Context, userID string, addr models.Address) (*models.Address, error) {
	query := `
        INSERT INTO addresses (user_id, label, recipient_name, street_address, city, state, postal_code, country, phone, is_default)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		userID, addr.Label, addr.RecipientName, addr.StreetAddress, addr.City,
		addr.State, addr.PostalCode, addr.Country, addr.Phone, addr.IsDefault,
	).Scan(&addr.ID, &addr.CreatedAt, &addr.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.Insert: %w", err)
	}
	addr.UserID = userID
	return &addr, nil
}

// UpdateFields writes only the columns present in data.
func (r *Repository) UpdateFields(ctx context.Context, userID, addressID string, data models.AddressCandidate) (*models.Address, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if data.Label != nil {
		set("label", *data.Label)
	}
	if data.RecipientName != nil {
		set("recipient_name", *data.RecipientName)
	}
	if data.StreetAddress != nil {
		set("street_address", *data.StreetAddress)
	}
	if data.City != nil {
		set("city", *data.City)
	}
	if data.State != nil {
		set("state", *data.State)
	}
	if data.PostalCode != nil {
		set("postal_code", *data.PostalCode)
	}
	if data.Country != nil {
		set("country", *data.Country)
	}
	if data.Phone != nil {
		set("phone", *data.Phone)
	}
	if data.IsDefault != nil {
		set("is_default", *data.IsDefault)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, userID, addressID)
	}

	set("updated_at", time.Now())
	args = append(args, userID, addressID)

	query := fmt.Sprintf(`UPDATE addresses SET %s WHERE user_id = $%d AND id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, addressColumns)

	addr, err := scanAddress(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateFields: %w", err)
	}
	return addr, nil
}

// ClearDefault flips is_default off for every address except exceptID
// (pass "" to clear all). Only the is_default column is written.
func (r *Repository) ClearDefault(ctx context.Context, userID, exceptID string) error {
	query := `UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`
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

func (r *Repository) Delete(ctx context.Context, userID, addressID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE user_id = $1 AND id = $2`, userID, addressID)
	if err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
