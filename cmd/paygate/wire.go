package main

import (
	// Go Internal Packages
	"context"
	"fmt"

	// Local Packages
	config "paygate/config"
	metrics "paygate/metrics"
	models "paygate/models"
	providers "paygate/providers"
	dummy "paygate/providers/dummy"
	manual "paygate/providers/manual"
	memory "paygate/repositories/memory"
	mongodb "paygate/repositories/mongodb"
	redis "paygate/repositories/redis"
	audit "paygate/services/audit"
	gateways "paygate/services/gateways"
	ledger "paygate/services/ledger"
	profiles "paygate/services/profiles"
	transactions "paygate/services/transactions"

	// External Packages
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// store is everything the services persist. Both the memory and the mongo
// stores implement it.
type store interface {
	transactions.TxRepository
	transactions.Catalog
	ledger.EntryRepository
	ledger.AccountRepository
	audit.LogRepository
	gateways.Repository
	profiles.Repository
}

// app holds the wired services of one process.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    store
	redis    *goredis.Client
	metrics  *metrics.Metrics
	machine  *transactions.Machine
	audit    *audit.Log
	gateways *gateways.Service
	profiles *profiles.Service
	closers  []func(context.Context)
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	switch cfg.Storage {
	case "mongo":
		client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, fmt.Errorf("cannot create mongo client: %w", err)
		}
		a.closers = append(a.closers, func(ctx context.Context) { _ = client.Disconnect(ctx) })
		s := mongodb.NewStore(client, cfg.Mongo.Database)
		if err := s.EnsureIndexes(ctx); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("cannot create mongo indexes: %w", err)
		}
		a.store = s
	default:
		a.store = memory.NewStore()
	}

	var locker transactions.Locker = memory.NewLocker()
	if cfg.Lock == "redis" {
		client, err := a.redisClient(ctx)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		locker = redis.NewLocker(client, redis.LockOptions{
			Expiry:     cfg.Redis.LockExpiry,
			Tries:      cfg.Redis.LockTries,
			RetryDelay: cfg.Redis.LockRetryDelay,
		}, logger)
	}

	registry := providers.NewRegistry()
	if err := registry.Register(manual.Provider()); err != nil {
		a.close(ctx)
		return nil, err
	}
	if cfg.Providers.Dummy {
		logger.Warn("dummy provider enabled")
		if err := registry.Register(dummy.Provider()); err != nil {
			a.close(ctx)
			return nil, err
		}
	}

	converter, err := ledger.NewConverter(cfg.Ledger.CompanyCurrency, cfg.Ledger.Rates)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("invalid ledger rates: %w", err)
	}

	a.metrics, err = metrics.New(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	a.gateways = gateways.NewService(logger, a.store, registry)
	a.profiles = profiles.NewService(logger, a.store, registry)
	if err := a.gateways.Import(ctx, catalogAccounts(cfg.Catalog), catalogJournals(cfg.Catalog), catalogGateways(cfg.Catalog)); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("cannot import catalog: %w", err)
	}

	a.audit = audit.NewLog(logger, a.store)
	a.machine = transactions.NewMachine(logger, transactions.Deps{
		Repo:      a.store,
		Catalog:   a.store,
		Registry:  registry,
		Ledger:    ledger.NewBook(logger, a.store, a.store, cfg.Ledger.ClosedPeriods),
		Audit:     a.audit,
		Locker:    locker,
		Converter: converter,
		Metrics:   a.metrics,
	})
	return a, nil
}

// redisClient connects lazily; it is shared by the locker and the dead letter
// queue.
func (a *app) redisClient(ctx context.Context) (*goredis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client, err := redis.Connect(ctx, a.cfg.Redis.URI, a.cfg.Redis.Password, a.cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("cannot create redis client: %w", err)
	}
	a.redis = client
	a.closers = append(a.closers, func(context.Context) { _ = client.Close() })
	return client, nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
	a.closers = nil
}

func catalogAccounts(c config.Catalog) []models.Account {
	res := make([]models.Account, 0, len(c.Accounts))
	for _, acc := range c.Accounts {
		res = append(res, models.Account{
			Code:          acc.Code,
			Name:          acc.Name,
			Kind:          models.AccountKind(acc.Kind),
			PartyRequired: acc.PartyRequired,
		})
	}
	return res
}

func catalogJournals(c config.Catalog) []models.Journal {
	res := make([]models.Journal, 0, len(c.Journals))
	for _, j := range c.Journals {
		res = append(res, models.Journal{ID: j.ID, Name: j.Name, DebitAccount: j.DebitAccount})
	}
	return res
}

func catalogGateways(c config.Catalog) []models.Gateway {
	res := make([]models.Gateway, 0, len(c.Gateways))
	for _, g := range c.Gateways {
		res = append(res, models.Gateway{
			ID:        g.ID,
			Name:      g.Name,
			Provider:  g.Provider,
			Method:    g.Method,
			JournalID: g.JournalID,
			Test:      g.Test,
		})
	}
	return res
}
