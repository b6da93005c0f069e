// Package currency resolves exchange rates and converts amounts between
// currencies. A missing rate is an error; amounts are never silently
// passed through at 1:1 between different currencies.
package currency

import (
	"errors"
	"fmt"
	"time"

	"accounting-ledger-backend/internal/repository"

	"github.com/shopspring/decimal"
)

var ErrRateNotFound = errors.New("no exchange rate found for currency pair")

// Resolution describes how a rate was obtained.
type Resolution struct {
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source"`
}

type Converter struct {
	rates *repository.ExchangeRateRepository
}

func NewConverter(rates *repository.ExchangeRateRepository) *Converter {
	return &Converter{rates: rates}
}

// Rate resolves the exchange rate from one currency to another as of a date:
// identity pairs are 1, then the latest stored direct rate on or before asOf,
// then the inverse of a stored reverse rate rounded to 6 decimal places.
func (c *Converter) Rate(from, to string, asOf time.Time) (*Resolution, error) {
	if from == to {
		return &Resolution{Rate: decimal.NewFromInt(1), Source: "identity"}, nil
	}

	direct, err := c.rates.LatestOnOrBefore(from, to, asOf)
	if err != nil {
		return nil, err
	}
	if direct != nil {
		return &Resolution{Rate: direct.Rate, Source: direct.Source}, nil
	}

	reverse, err := c.rates.LatestOnOrBefore(to, from, asOf)
	if err != nil {
		return nil, err
	}
	if reverse != nil && reverse.Rate.IsPositive() {
		inverted := decimal.NewFromInt(1).DivRound(reverse.Rate, 6)
		return &Resolution{Rate: inverted, Source: fmt.Sprintf("inverse of %s", reverse.Source)}, nil
	}

	return nil, fmt.Errorf("%w: %s/%s as of %s", ErrRateNotFound, from, to, asOf.Format("2006-01-02"))
}

// Convert converts an amount between currencies, rounding the result to
// 2 decimal places.
func (c *Converter) Convert(amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error) {
	res, err := c.Rate(from, to, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(res.Rate).Round(2), nil
}
