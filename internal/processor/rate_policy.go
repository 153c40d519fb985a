package processor

import (
	"github.com/shopspring/decimal"

	"investment_manager/internal/domain"
)

// RatePolicy maps an investment category to its annualized return rate.
type RatePolicy struct {
	rates       map[domain.Category]decimal.Decimal
	defaultRate decimal.Decimal
}

func NewRatePolicy() *RatePolicy {
	return &RatePolicy{
		rates: map[domain.Category]decimal.Decimal{
			domain.CategoryStocks:      decimal.RequireFromString("0.15"),
			domain.CategoryMutualFunds: decimal.RequireFromString("0.12"),
			domain.CategoryBonds:       decimal.RequireFromString("0.07"),
		},
		defaultRate: decimal.RequireFromString("0.10"),
	}
}

// RateFor returns the rate for the category. Unrecognized categories get the
// default rate; there is no failure mode.
func (p *RatePolicy) RateFor(category domain.Category) decimal.Decimal {
	if rate, ok := p.rates[category]; ok {
		return rate
	}
	return p.defaultRate
}
