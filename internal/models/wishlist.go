package models

import "time"

// WishlistItem is one entry in a user's wishlist. Unlike addresses and
// payment methods the wishlist has no exclusivity rule.
type WishlistItem struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"-" db:"user_id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	Note        string    `json:"note,omitempty" db:"note"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AddWishlistItemRequest defines the body for adding a wishlist item.
type AddWishlistItemRequest struct {
	ProductID   string `json:"product_id" validate:"required,max=100"`
	ProductName string `json:"product_name" validate:"required,max=200"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Note        string `json:"note" validate:"omitempty,max=500"`
}

// UpdateWishlistItemRequest defines the body for updating a wishlist item.
type UpdateWishlistItemRequest struct {
	ProductName *string `json:"product_name,omitempty" validate:"omitempty,max=200"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Note        *string `json:"note,omitempty" validate:"omitempty,max=500"`
}
