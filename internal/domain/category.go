package domain

type Category string

const (
	CategoryStocks      Category = "stocks"
	CategoryMutualFunds Category = "mutual_funds"
	CategoryBonds       Category = "bonds"
	CategoryOther       Category = "other"
)

func (c Category) Known() bool {
	switch c {
	case CategoryStocks, CategoryMutualFunds, CategoryBonds, CategoryOther:
		return true
	}
	return false
}

func (c Category) Label() string {
	switch c {
	case CategoryStocks:
		return "Stocks"
	case CategoryMutualFunds:
		return "Mutual Funds"
	case CategoryBonds:
		return "Bonds"
	default:
		return "Other"
	}
}
