package ledger

import (
	// Go Internal Packages
	"fmt"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"github.com/shopspring/decimal"
)

// Converter turns transaction amounts into the company currency.
// Rates are expressed as company currency units per one unit of the foreign currency.
type Converter struct {
	Company models.Currency
	Rates   map[string]decimal.Decimal
}

func NewConverter(company models.Currency, rates map[string]string) (*Converter, error) {
	parsed := make(map[string]decimal.Decimal, len(rates))
	for code, r := range rates {
		d, err := decimal.NewFromString(r)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", code)
		}
		parsed[code] = d
	}
	return &Converter{Company: company, Rates: parsed}, nil
}

// Foreign reports whether c differs from the company currency.
func (c *Converter) Foreign(cur models.Currency) bool {
	return cur.Code != c.Company.Code
}

func (c *Converter) Convert(amount decimal.Decimal, from models.Currency) (decimal.Decimal, error) {
	if !c.Foreign(from) {
		return amount, nil
	}
	rate, ok := c.Rates[from.Code]
	if !ok {
		return decimal.Zero, errors.RecoverableLedgerErr(fmt.Sprintf("no rate configured for %s", from.Code), nil)
	}
	return c.Company.Round(amount.Mul(rate)), nil
}
