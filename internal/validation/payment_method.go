package validation

import (
	"time"

	"user-profile-service/internal/models"
)

var paymentTypes = map[string]bool{
	models.PaymentTypeCreditCard:    true,
	models.PaymentTypeDebitCard:     true,
	models.PaymentTypePayPal:        true,
	models.PaymentTypeApplePay:      true,
	models.PaymentTypeGooglePay:     true,
	models.PaymentTypeBankTransfer:  true,
	models.PaymentTypeDigitalWallet: true,
	models.PaymentTypeOther:         true,
}

var paymentProviders = map[string]bool{
	models.ProviderVisa:       true,
	models.ProviderMastercard: true,
	models.ProviderAmex:       true,
	models.ProviderDiscover:   true,
	models.ProviderPayPal:     true,
	models.ProviderApple:      true,
	models.ProviderGoogle:     true,
	models.ProviderBank:       true,
	models.ProviderOther:      true,
}

// Types whose provider is fixed. Submitting type=paypal with provider=visa
// is rejected as an incompatible combination.
var requiredProviderFor = map[string]string{
	models.PaymentTypePayPal:    models.ProviderPayPal,
	models.PaymentTypeApplePay:  models.ProviderApple,
	models.PaymentTypeGooglePay: models.ProviderGoogle,
}

// CardType reports whether the payment type is card-based and therefore
// requires expiry fields.
func CardType(t string) bool {
	return t == models.PaymentTypeCreditCard || t == models.PaymentTypeDebitCard
}

// How far in the future an expiry year may be.
const maxExpiryYearsAhead = 20

// ValidatePaymentMethod checks a complete candidate against every field
// rule and returns the normalized entry to persist. The ID, UserID and
// timestamp fields of the result are left for the repository to fill.
//
// Normalization: a raw card number is reduced to its trailing four digits
// and discarded together with the CVV; string-typed expiry values arrive
// already coerced to ints by models.FlexInt and are persisted as ints;
// is_active defaults to true when absent.
func ValidatePaymentMethod(c models.PaymentMethodCandidate, now time.Time) (models.PaymentMethod, error) {
	var ve errs
	var pm models.PaymentMethod

	if c.Type == nil || *c.Type == "" {
		ve.add("type", "is required")
	} else if !paymentTypes[*c.Type] {
		ve.add("type", "%q is not a supported payment type", *c.Type)
	} else {
		pm.Type = *c.Type
	}

	if c.Provider == nil || *c.Provider == "" {
		ve.add("provider", "is required")
	} else if !paymentProviders[*c.Provider] {
		ve.add("provider", "%q is not a supported provider", *c.Provider)
	} else {
		pm.Provider = *c.Provider
	}

	if pm.Type != "" && pm.Provider != "" {
		if want, ok := requiredProviderFor[pm.Type]; ok && pm.Provider != want {
			ve.add("provider", "type %q requires provider %q", pm.Type, want)
		}
	}

	// A raw card number is reduced to last4 and dropped. The CVV is never
	// stored in any form.
	switch {
	case c.CardNumber != nil && *c.CardNumber != "":
		n := *c.CardNumber
		if len(n) < 4 || !digitsRe.MatchString(n) {
			ve.add("card_number", "must be numeric and at least 4 digits")
		} else {
			pm.Last4 = n[len(n)-4:]
		}
	case c.Last4 != nil && *c.Last4 != "":
		if len(*c.Last4) != 4 || !digitsRe.MatchString(*c.Last4) {
			ve.add("last4", "must be exactly 4 digits")
		} else {
			pm.Last4 = *c.Last4
		}
	default:
		ve.add("last4", "is required")
	}

	if c.CardholderName == nil || *c.CardholderName == "" {
		ve.add("cardholder_name", "is required")
	} else if !validName(*c.CardholderName) {
		ve.add("cardholder_name", "may only contain letters, spaces, hyphens, apostrophes and periods, up to %d characters", maxNameLength)
	} else {
		pm.CardholderName = *c.CardholderName
	}

	// Expiry rules apply only to card-based types. Other types ignore any
	// submitted expiry rather than rejecting it.
	if CardType(pm.Type) {
		validateExpiry(&ve, &pm, c, now)
	}

	if c.Nickname != nil {
		if len(*c.Nickname) > maxNameLength {
			ve.add("nickname", "must be at most %d characters", maxNameLength)
		} else {
			pm.Nickname = *c.Nickname
		}
	}

	pm.IsDefault = c.IsDefault != nil && *c.IsDefault
	pm.IsActive = c.IsActive == nil || *c.IsActive

	if err := ve.err(); err != nil {
		return models.PaymentMethod{}, err
	}
	return pm, nil
}

func validateExpiry(ve *errs, pm *models.PaymentMethod, c models.PaymentMethodCandidate, now time.Time) {
	curYear, curMonth := now.Year(), int(now.Month())

	if c.ExpiryMonth == nil {
		ve.add("expiry_month", "is required for card payment types")
	} else if m := c.ExpiryMonth.Int(); m < 1 || m > 12 {
		ve.add("expiry_month", "must be between 1 and 12")
	} else {
		pm.ExpiryMonth = m
	}

	if c.ExpiryYear == nil {
		ve.add("expiry_year", "is required for card payment types")
	} else if y := c.ExpiryYear.Int(); y < curYear || y > curYear+maxExpiryYearsAhead {
		ve.add("expiry_year", "must be between %d and %d", curYear, curYear+maxExpiryYearsAhead)
	} else {
		pm.ExpiryYear = y
	}

	// Month-granularity check: a card expiring this month is still valid.
	if pm.ExpiryMonth != 0 && pm.ExpiryYear != 0 {
		if pm.ExpiryYear == curYear && pm.ExpiryMonth < curMonth {
			ve.add("expiry", "card expiry %02d/%d is in the past", pm.ExpiryMonth, pm.ExpiryYear)
		}
	}
}
