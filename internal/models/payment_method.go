package models

import "time"

// Payment method types.
const (
	PaymentTypeCreditCard    = "credit_card"
	PaymentTypeDebitCard     = "debit_card"
	PaymentTypePayPal        = "paypal"
	PaymentTypeApplePay      = "apple_pay"
	PaymentTypeGooglePay     = "google_pay"
	PaymentTypeBankTransfer  = "bank_transfer"
	PaymentTypeDigitalWallet = "digital_wallet"
	PaymentTypeOther         = "other"
)

// Payment providers.
const (
	ProviderVisa       = "visa"
	ProviderMastercard = "mastercard"
	ProviderAmex       = "amex"
	ProviderDiscover   = "discover"
	ProviderPayPal     = "paypal"
	ProviderApple      = "apple"
	ProviderGoogle     = "google"
	ProviderBank       = "bank"
	ProviderOther      = "other"
)

// PaymentMethod is one entry in a user's stored payment method collection.
// Only the derived last4 survives validation; the raw card number and CVV
// are never persisted. At most one entry per user has IsDefault set.
type PaymentMethod struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"-" db:"user_id"`
	Type           string    `json:"type" db:"type"`
	Provider       string    `json:"provider" db:"provider"`
	Last4          string    `json:"last4" db:"last4"`
	ExpiryMonth    int       `json:"expiry_month,omitempty" db:"expiry_month"`
	ExpiryYear     int       `json:"expiry_year,omitempty" db:"expiry_year"`
	CardholderName string    `json:"cardholder_name" db:"cardholder_name"`
	Nickname       string    `json:"nickname,omitempty" db:"nickname"`
	IsDefault      bool      `json:"is_default" db:"is_default"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentMethodCandidate is the inbound shape for both add and update.
// Every field is a pointer so an update can merge a partial body onto the
// stored entry before the merged candidate is validated as a whole.
// CardNumber and CVV are accepted but discarded during normalization.
type PaymentMethodCandidate struct {
	Type           *string  `json:"type,omitempty"`
	Provider       *string  `json:"provider,omitempty"`
	CardNumber     *string  `json:"card_number,omitempty"`
	CVV            *string  `json:"cvv,omitempty"`
	Last4          *string  `json:"last4,omitempty"`
	ExpiryMonth    *FlexInt `json:"expiry_month,omitempty"`
	ExpiryYear     *FlexInt `json:"expiry_year,omitempty"`
	CardholderName *string  `json:"cardholder_name,omitempty"`
	Nickname       *string  `json:"nickname,omitempty"`
	IsDefault      *bool    `json:"is_default,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

// SetsDefault reports whether the candidate explicitly asks to become the
// collection's default entry.
func (c PaymentMethodCandidate) SetsDefault() bool {
	return c.IsDefault != nil && *c.IsDefault
}
