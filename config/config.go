package config

import (
	// Go Internal Packages
	"time"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"
)

var DefaultConfig = []byte(`
application: "paygate"

logger:
  level: "debug"

is_prod_mode: false

# memory | mongo
storage: "memory"
# memory | redis
lock: "memory"

mongo:
  uri: "mongodb://localhost:27017"
  database: "paygate"

redis:
  uri: "localhost:6379"
  password: ""
  db: 0
  lock_expiry: "30s"
  lock_tries: 20
  lock_retry_delay: "100ms"

kafka:
  brokers:
    - "localhost:9092"
  topic: "payment-commands"
  records_per_poll: 500
  consumer_name: "paygate-commands"

ledger:
  company_currency:
    code: "USD"
    digits: 2
  closed_periods: []
  rates: {}

providers:
  dummy: false

metrics:
  addr: ":9090"
  namespace: "paygate"

catalog:
  accounts:
    - code: "1000"
      name: "Cash"
      kind: "cash"
    - code: "1100"
      name: "Accounts Receivable"
      kind: "receivable"
      party_required: true
  journals:
    - id: "CASH"
      name: "Cash"
      debit_account: "1000"
  gateways:
    - id: "cash-desk"
      name: "Cash desk"
      provider: "self"
      method: "manual"
      journal_id: "CASH"
`)

type Config struct {
	Application string    `koanf:"application"`
	Logger      Logger    `koanf:"logger"`
	IsProdMode  bool      `koanf:"is_prod_mode"`
	Storage     string    `koanf:"storage"`
	Lock        string    `koanf:"lock"`
	Mongo       Mongo     `koanf:"mongo"`
	Redis       Redis     `koanf:"redis"`
	Kafka       Kafka     `koanf:"kafka"`
	Ledger      Ledger    `koanf:"ledger"`
	Providers   Providers `koanf:"providers"`
	Metrics     Metrics   `koanf:"metrics"`
	Catalog     Catalog   `koanf:"catalog"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Mongo struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type Redis struct {
	URI            string        `koanf:"uri"`
	Password       string        `koanf:"password"`
	DB             int           `koanf:"db"`
	LockExpiry     time.Duration `koanf:"lock_expiry"`
	LockTries      int           `koanf:"lock_tries"`
	LockRetryDelay time.Duration `koanf:"lock_retry_delay"`
}

type Kafka struct {
	Brokers        []string `koanf:"brokers"`
	Topic          string   `koanf:"topic"`
	RecordsPerPoll int      `koanf:"records_per_poll"`
	ConsumerName   string   `koanf:"consumer_name"`
}

type Ledger struct {
	CompanyCurrency models.Currency   `koanf:"company_currency"`
	ClosedPeriods   []string          `koanf:"closed_periods"`
	Rates           map[string]string `koanf:"rates"`
}

type Providers struct {
	// Dummy registers the test provider. Never enable it in production.
	Dummy bool `koanf:"dummy"`
}

type Metrics struct {
	Addr      string `koanf:"addr"`
	Namespace string `koanf:"namespace"`
}

// Catalog is the chart of accounts, journals and gateways loaded at start.
type Catalog struct {
	Accounts []Account `koanf:"accounts"`
	Journals []Journal `koanf:"journals"`
	Gateways []Gateway `koanf:"gateways"`
}

type Account struct {
	Code          string `koanf:"code"`
	Name          string `koanf:"name"`
	Kind          string `koanf:"kind"`
	PartyRequired bool   `koanf:"party_required"`
}

type Journal struct {
	ID           string `koanf:"id"`
	Name         string `koanf:"name"`
	DebitAccount string `koanf:"debit_account"`
}

type Gateway struct {
	ID        string `koanf:"id"`
	Name      string `koanf:"name"`
	Provider  string `koanf:"provider"`
	Method    string `koanf:"method"`
	JournalID string `koanf:"journal_id"`
	Test      bool   `koanf:"test"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}

	switch c.Storage {
	case "memory":
	case "mongo":
		if c.Mongo.URI == "" {
			ve.Add("mongo.uri", "cannot be empty")
		}
		if c.Mongo.Database == "" {
			ve.Add("mongo.database", "cannot be empty")
		}
	default:
		ve.Add("storage", "must be memory or mongo")
	}

	switch c.Lock {
	case "memory":
	case "redis":
		if c.Redis.URI == "" {
			ve.Add("redis.uri", "cannot be empty")
		}
		if c.Redis.LockExpiry <= 0 {
			ve.Add("redis.lock_expiry", "must be positive")
		}
		if c.Redis.LockTries <= 0 {
			ve.Add("redis.lock_tries", "must be positive")
		}
	default:
		ve.Add("lock", "must be memory or redis")
	}

	if c.Ledger.CompanyCurrency.Code == "" {
		ve.Add("ledger.company_currency.code", "cannot be empty")
	}
	if c.Ledger.CompanyCurrency.Digits < 0 {
		ve.Add("ledger.company_currency.digits", "cannot be negative")
	}
	for _, p := range c.Ledger.ClosedPeriods {
		if _, err := time.Parse("2006-01", p); err != nil {
			ve.Add("ledger.closed_periods", "must be formatted as YYYY-MM")
			break
		}
	}

	for _, g := range c.Catalog.Gateways {
		if g.ID == "" || g.JournalID == "" {
			ve.Add("catalog.gateways", "id and journal_id cannot be empty")
			break
		}
	}

	return ve.Err()
}

// ValidateConsumer checks the settings only the kafka commands need.
func (c *Config) ValidateConsumer() error {
	ve := errors.ValidationErrs()
	if len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty")
	}
	if c.Kafka.Topic == "" {
		ve.Add("kafka.topic", "cannot be empty")
	}
	if c.Kafka.ConsumerName == "" {
		ve.Add("kafka.consumer_name", "cannot be empty")
	}
	if c.Kafka.RecordsPerPoll <= 0 {
		ve.Add("kafka.records_per_poll", "must be positive")
	}
	return ve.Err()
}
