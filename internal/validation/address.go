package validation

import "user-profile-service/internal/models"

const (
	maxLabelLength      = 50
	maxStreetLength     = 200
	maxCityLength       = 100
	maxPostalCodeLength = 20
)

// ValidateAddress checks a complete candidate against every field rule and
// returns the normalized address to persist. The ID, UserID and timestamp
// fields of the result are left for the repository to fill.
func ValidateAddress(c models.AddressCandidate) (models.Address, error) {
	var ve errs
	var addr models.Address

	if c.Label != nil {
		if len(*c.Label) > maxLabelLength {
			ve.add("label", "must be at most %d characters", maxLabelLength)
		} else {
			addr.Label = *c.Label
		}
	}

	if c.RecipientName == nil || *c.RecipientName == "" {
		ve.add("recipient_name", "is required")
	} else if !validName(*c.RecipientName) {
		ve.add("recipient_name", "may only contain letters, spaces, hyphens, apostrophes and periods, up to %d characters", maxNameLength)
	} else {
		addr.RecipientName = *c.RecipientName
	}

	if c.StreetAddress == nil || *c.StreetAddress == "" {
		ve.add("street_address", "is required")
	} else if len(*c.StreetAddress) > maxStreetLength {
		ve.add("street_address", "must be at most %d characters", maxStreetLength)
	} else {
		addr.StreetAddress = *c.StreetAddress
	}

	if c.City == nil || *c.City == "" {
		ve.add("city", "is required")
	} else if len(*c.City) > maxCityLength {
		ve.add("city", "must be at most %d characters", maxCityLength)
	} else {
		addr.City = *c.City
	}

	if c.State != nil {
		if len(*c.State) > maxCityLength {
			ve.add("state", "must be at most %d characters", maxCityLength)
		} else {
			addr.State = *c.State
		}
	}

	if c.PostalCode == nil || *c.PostalCode == "" {
		ve.add("postal_code", "is required")
	} else if len(*c.PostalCode) > maxPostalCodeLength || !postalCodeRe.MatchString(*c.PostalCode) {
		ve.add("postal_code", "must be alphanumeric and at most %d characters", maxPostalCodeLength)
	} else {
		addr.PostalCode = *c.PostalCode
	}

	if c.Country == nil || *c.Country == "" {
		ve.add("country", "is required")
	} else if !countryRe.MatchString(*c.Country) {
		ve.add("country", "must be a two-letter uppercase country code")
	} else {
		addr.Country = *c.Country
	}

	if c.Phone != nil {
		addr.Phone = *c.Phone
	}

	addr.IsDefault = c.IsDefault != nil && *c.IsDefault

	if err := ve.err(); err != nil {
		return models.Address{}, err
	}
	return addr, nil
}
