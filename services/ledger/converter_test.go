package ledger

import (
	// Go Internal Packages
	"testing"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	usd := models.Currency{Code: "USD", Digits: 2}
	c, err := NewConverter(usd, map[string]string{"EUR": "1.0837", "JPY": "0.0067"})
	require.NoError(t, err)

	got, err := c.Convert(decimal.RequireFromString("12.34"), usd)
	require.NoError(t, err)
	assert.Equal(t, "12.34", got.String())
	assert.False(t, c.Foreign(usd))

	eur := models.Currency{Code: "EUR", Digits: 2}
	got, err = c.Convert(decimal.RequireFromString("100"), eur)
	require.NoError(t, err)
	assert.Equal(t, "108.37", got.String())
	assert.True(t, c.Foreign(eur))

	got, err = c.Convert(decimal.RequireFromString("1999"), models.Currency{Code: "JPY"})
	require.NoError(t, err)
	assert.Equal(t, "13.39", got.String())

	_, err = c.Convert(decimal.NewFromInt(1), models.Currency{Code: "GBP", Digits: 2})
	assert.True(t, errors.Is(errors.RecoverableLedger, err))
}

func TestNewConverterRejectsBadRates(t *testing.T) {
	usd := models.Currency{Code: "USD", Digits: 2}

	_, err := NewConverter(usd, map[string]string{"EUR": "abc"})
	assert.Error(t, err)

	_, err = NewConverter(usd, map[string]string{"EUR": "0"})
	assert.Error(t, err)
}
