package validator

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrNotANumber = errors.New("amount is empty or not a number")
	ErrNotPositive       = errors.New("amount must be positive")
	ErrBelowMinimum      = errors.New("amount below minimum")
	ErrAboveMaximum      = errors.New("amount above maximum")
)

var (
	MinAmount = decimal.NewFromInt(100_000)
	MaxAmount = decimal.NewFromInt(1_000_000_000)
)

// AmountValidator parses raw user input into a monetary amount within the
// investable bounds. Grouping separators ("150,000") are accepted.
type AmountValidator struct {
	min decimal.Decimal
	max decimal.Decimal
}

func NewAmountValidator() *AmountValidator {
	return &AmountValidator{min: MinAmount, max: MaxAmount}
}

var groupingSeparators = strings.NewReplacer(",", "", " ", "", "_", "")

// Parse checks the rules in order, first failure wins: not a number,
// not positive, below minimum, above maximum.
func (v *AmountValidator) Parse(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(groupingSeparators.Replace(raw))
	if cleaned == "" {
		return decimal.Zero, ErrEmptyOrNotANumber
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrEmptyOrNotANumber
	}

	switch {
	case amount.LessThanOrEqual(decimal.Zero):
		return decimal.Zero, ErrNotPositive
	case amount.LessThan(v.min):
		return decimal.Zero, ErrBelowMinimum
	case amount.GreaterThan(v.max):
		return decimal.Zero, ErrAboveMaximum
	}

	return amount, nil
}

func (v *AmountValidator) Validate(raw string) error {
	_, err := v.Parse(raw)
	return err
}
