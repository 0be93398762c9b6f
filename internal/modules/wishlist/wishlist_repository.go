package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"user-profile-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines storage operations on a user's wishlist.
// The wishlist has no cross-entry invariant, so no transactional paths
// are needed.
type RepositoryInterface interface {
	List(ctx context.Context, userID string) ([]models.WishlistItem, error)
	FindByID(ctx context.Context, userID, itemID string) (*models.WishlistItem, error)
	Insert(ctx context.Context, userID string, item models.WishlistItem) (*models.WishlistItem, error)
	UpdateFields(ctx context.Context, userID, itemID string, data models.UpdateWishlistItemRequest) (*models.WishlistItem, error)
	Delete(ctx context.Context, userID, itemID string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const wishlistColumns = `id, user_id, product_id, product_name, image_url, note, created_at, updated_at`

func scanItem(row pgx.Row) (*models.WishlistItem, error) {
	item := &models.WishlistItem{}
	err := row.Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.ProductName,
		&item.ImageURL, &item.Note, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repository) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM wishlist_items WHERE user_id = $1 ORDER BY created_at`, wishlistColumns)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.List: %w", err)
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.List: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, userID, itemID string) (*models.WishlistItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM wishlist_items WHERE user_id = $1 AND id = $2`, wishlistColumns)
	item, err := scanItem(r.db.QueryRow(ctx, query, userID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return item, nil
}

func (r *Repository) Insert(ctx context.Context, userID string, item models.WishlistItem) (*models.WishlistItem, error) {
	query := `
        INSERT INTO wishlist_items (user_id, product_id, product_name, image_url, note)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		userID, item.ProductID, item.ProductName, item.ImageURL, item.Note,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.Insert: %w", err)
	}
	item.UserID = userID
	return &item, nil
}

func (r *Repository) UpdateFields(ctx context.Context, userID, itemID string, data models.UpdateWishlistItemRequest) (*models.WishlistItem, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if data.ProductName != nil {
		set("product_name", *data.ProductName)
	}
	if data.ImageURL != nil {
		set("image_url", *data.ImageURL)
	}
	if data.Note != nil {
		set("note", *data.Note)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, userID, itemID)
	}

	set("updated_at", time.Now())
	args = append(args, userID, itemID)

	query := fmt.Sprintf(`UPDATE wishlist_items SET %s WHERE user_id = $%d AND id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, wishlistColumns)

	item, err := scanItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateFields: %w", err)
	}
	return item, nil
}

func (r *Repository) Delete(ctx context.Context, userID, itemID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND id = $2`, userID, itemID)
	if err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Unique constraint on (user_id, product_id): the same product cannot be
// wishlisted twice.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
