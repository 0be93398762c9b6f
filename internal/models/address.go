package models

import "time"

// Address labels.
const (
	AddressLabelShipping = "shipping"
	AddressLabelBilling  = "billing"
)

// Address is one entry in a user's address collection. At most one entry
// per user has IsDefault set.
type Address struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"-" db:"user_id"`
	Label         string    `json:"label,omitempty" db:"label"`
	RecipientName string    `json:"recipient_name" db:"recipient_name"`
	StreetAddress string    `json:"street_address" db:"street_address"`
	City          string    `json:"city" db:"city"`
	State         string    `json:"state,omitempty" db:"state"`
	PostalCode    string    `json:"postal_code" db:"postal_code"`
	Country       string    `json:"country" db:"country"`
	Phone         string    `json:"phone,omitempty" db:"phone"`
	IsDefault     bool      `json:"is_default" db:"is_default"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// AddressCandidate is the inbound shape for both add and update. Pointer
// fields let an update merge a partial body onto the stored entry before
// validating the merged candidate as a whole.
type AddressCandidate struct {
	Label         *string `json:"label,omitempty"`
	RecipientName *string `json:"recipient_name,omitempty"`
	StreetAddress *string `json:"street_address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	Country       *string `json:"country,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	IsDefault     *bool   `json:"is_default,omitempty"`
}

// SetsDefault reports whether the candidate explicitly asks to become the
// collection's default entry.
func (c AddressCandidate) SetsDefault() bool {
	return c.IsDefault != nil && *c.IsDefault
}
