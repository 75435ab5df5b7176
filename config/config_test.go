package config

import (
	// Go Internal Packages
	"testing"
	"time"

	// External Packages
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, overrides ...string) Config {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()))
	for _, o := range overrides {
		require.NoError(t, k.Load(rawbytes.Provider([]byte(o)), yaml.Parser()))
	}

	var c Config
	require.NoError(t, k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "koanf"}))
	return c
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := load(t)

	require.NoError(t, c.Validate())
	require.NoError(t, c.ValidateConsumer())
	assert.Equal(t, "memory", c.Storage)
	assert.Equal(t, "USD", c.Ledger.CompanyCurrency.Code)
	assert.Equal(t, int32(2), c.Ledger.CompanyCurrency.Digits)
	assert.Equal(t, 30*time.Second, c.Redis.LockExpiry)
	assert.Len(t, c.Catalog.Gateways, 1)
	assert.True(t, c.Catalog.Accounts[1].PartyRequired)
}

func TestOverrides(t *testing.T) {
	c := load(t, `
storage: "mongo"
lock: "redis"
ledger:
  closed_periods: ["2026-01"]
  rates:
    EUR: "1.08"
`)

	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"2026-01"}, c.Ledger.ClosedPeriods)
	assert.Equal(t, "1.08", c.Ledger.Rates["EUR"])
}

func TestValidate(t *testing.T) {
	c := load(t, `
application: ""
storage: "sqlite"
lock: "redis"
redis:
  uri: ""
ledger:
  closed_periods: ["January"]
`)

	err := c.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "application cannot be empty")
	assert.Contains(t, msg, "storage must be memory or mongo")
	assert.Contains(t, msg, "redis.uri cannot be empty")
	assert.Contains(t, msg, "ledger.closed_periods must be formatted as YYYY-MM")
}
