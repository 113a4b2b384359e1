package utils

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	namePattern    = regexp.MustCompile(`^[A-Za-z]{2,30}$`)
	zipcodePattern = regexp.MustCompile(`^[0-9]{5}$`)
)

// NormalizeEmail trims and lower-cases an email for case-insensitive lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func RequireNotBlank(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "must not be blank")
	}
	return nil
}

func ValidateEmail(email string) error {
	if err := RequireNotBlank("email", email); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return NewValidationError("email", "must be a valid address")
	}
	return nil
}

// ValidateName enforces letters only, 2 to 30 characters.
func ValidateName(field, name string) error {
	if !namePattern.MatchString(name) {
		return NewValidationError(field, "must be 2-30 letters")
	}
	return nil
}

func ValidateShares(shares decimal.Decimal) error {
	if shares.IsNegative() {
		return NewValidationError("shares", "must not be negative")
	}
	return nil
}

func ValidateZipcode(zipcode string) error {
	if !zipcodePattern.MatchString(zipcode) {
		return NewValidationError("zipcode", "must be 5 digits")
	}
	return nil
}
