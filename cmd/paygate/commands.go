package main

import (
	// Go Internal Packages
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	// Local Packages
	config "paygate/config"
	errors "paygate/errors"
	helpers "paygate/helpers"
	kafka "paygate/kafka"
	models "paygate/models"
	redis "paygate/repositories/redis"
	processors "paygate/services/processors"
	transactions "paygate/services/transactions"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

var (
	consumeCmd = kingpin.Command("consume", "Apply batch commands read from the command topic")

	submitCmd       = kingpin.Command("submit", "Publish a batch command to the command topic")
	submitOperation = submitCmd.Arg("operation", "Operation to run").Required().String()
	submitIDs       = submitCmd.Arg("ids", "Transaction ids").Required().Strings()
	submitAmount    = submitCmd.Flag("amount", "Refund amount for create-refund").String()

	runCmd       = kingpin.Command("run", "Run a batch operation and print the outcome of every transaction")
	runOperation = runCmd.Arg("operation", "Operation to run").Required().String()
	runIDs       = runCmd.Arg("ids", "Transaction ids").Required().Strings()
	runAmount    = runCmd.Flag("amount", "Refund amount for create-refund").String()

	createCmd         = kingpin.Command("create", "Create a draft transaction")
	createType        = createCmd.Flag("type", "charge or refund").Default("charge").Enum("charge", "refund")
	createAmount      = createCmd.Flag("amount", "Amount").Required().String()
	createCurrency    = createCmd.Flag("currency", "Currency code").Default("USD").String()
	createDigits      = createCmd.Flag("digits", "Currency decimal digits").Default("2").Int32()
	createGateway     = createCmd.Flag("gateway", "Gateway id").Required().String()
	createParty       = createCmd.Flag("party", "Party id").Required().String()
	createAddress     = createCmd.Flag("address", "Billing address id").Required().String()
	createAccount     = createCmd.Flag("account", "Customer account code").Required().String()
	createDescription = createCmd.Flag("description", "Description").String()
	createProfile     = createCmd.Flag("profile", "Payment profile id").String()

	refundCmd    = kingpin.Command("refund", "Create a draft refund for a charge")
	refundID     = refundCmd.Arg("id", "Charge transaction id").Required().String()
	refundAmount = refundCmd.Flag("amount", "Refund amount, defaults to the full charge").String()

	checkCmd = kingpin.Command("check-gateway", "Test the posting configuration of gateways")
	checkIDs = checkCmd.Arg("ids", "Gateway ids").Required().Strings()

	profileCmd     = kingpin.Command("add-profile", "Store a card as a payment profile")
	profileParty   = profileCmd.Flag("party", "Party id").Required().String()
	profileAddress = profileCmd.Flag("address", "Billing address id").Required().String()
	profileGateway = profileCmd.Flag("gateway", "Gateway id").Required().String()
	profileSwipe   = profileCmd.Flag("swipe", "Magnetic stripe data").String()
	profileOwner   = profileCmd.Flag("owner", "Card owner").String()
	profileNumber  = profileCmd.Flag("number", "Card number").String()
	profileMonth   = profileCmd.Flag("expiry-month", "Expiry month").String()
	profileYear    = profileCmd.Flag("expiry-year", "Expiry year").String()

	deadLettersCmd = kingpin.Command("dead-letters", "List commands that could not be applied")
)

// outcomeView is an Outcome with its error printable.
type outcomeView struct {
	transactions.Outcome
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func (a *app) run(ctx context.Context, command string) error {
	switch command {
	case consumeCmd.FullCommand():
		return a.consume(ctx)
	case runCmd.FullCommand():
		if card := runCard(); card != nil {
			o, err := a.runWithCard(ctx, *runOperation, *runIDs, card)
			if err != nil {
				return err
			}
			return printOutcomes([]transactions.Outcome{o})
		}
		amount, err := parseAmount(*runAmount)
		if err != nil {
			return err
		}
		outcomes, err := a.machine.Execute(ctx, models.Command{Operation: *runOperation, IDs: *runIDs, Amount: amount})
		if err != nil {
			return err
		}
		return printOutcomes(outcomes)
	case createCmd.FullCommand():
		amount, err := decimal.NewFromString(*createAmount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		tx, err := a.machine.Create(ctx, transactions.NewTransaction{
			Type:             models.TxType(*createType),
			Description:      *createDescription,
			Amount:           amount,
			Currency:         models.Currency{Code: *createCurrency, Digits: *createDigits},
			GatewayID:        *createGateway,
			PartyID:          *createParty,
			AddressID:        *createAddress,
			CreditAccount:    *createAccount,
			PaymentProfileID: *createProfile,
		})
		if err != nil {
			return err
		}
		return helpers.PrintStruct(os.Stdout, tx)
	case refundCmd.FullCommand():
		amount, err := parseAmount(*refundAmount)
		if err != nil {
			return err
		}
		id, err := a.machine.CreateRefund(ctx, *refundID, amount)
		if err != nil {
			return err
		}
		return helpers.PrintStruct(os.Stdout, map[string]string{"refund_id": id})
	case checkCmd.FullCommand():
		out, err := a.gateways.TestConfiguration(ctx, *checkIDs)
		if err != nil {
			return err
		}
		return helpers.PrintStruct(os.Stdout, out)
	case profileCmd.FullCommand():
		card := &models.CardEntry{
			CardPresent: *profileSwipe != "",
			SwipeData:   *profileSwipe,
			Owner:       *profileOwner,
			Number:      *profileNumber,
			ExpiryMonth: *profileMonth,
			ExpiryYear:  *profileYear,
		}
		p, err := a.profiles.AddProfile(ctx, *profileParty, *profileAddress, *profileGateway, card)
		if err != nil {
			return err
		}
		return helpers.PrintStruct(os.Stdout, p)
	case deadLettersCmd.FullCommand():
		client, err := a.redisClient(ctx)
		if err != nil {
			return err
		}
		letters, err := redis.NewDeadLetterQueue(client, a.logger).List(ctx)
		if err != nil {
			return err
		}
		return helpers.PrintStruct(os.Stdout, letters)
	}
	if handled, err := a.runOperator(ctx, command); handled {
		return err
	}
	return fmt.Errorf("unknown command %q", command)
}

// consume applies commands from kafka until ctx is cancelled. Failed items go
// to the redis dead-letter queue.
func (a *app) consume(ctx context.Context) error {
	if err := a.cfg.ValidateConsumer(); err != nil {
		return err
	}

	client, err := a.redisClient(ctx)
	if err != nil {
		return err
	}
	dlq := redis.NewDeadLetterQueue(client, a.logger)
	processor := processors.NewCommandProcessor(a.logger, a.machine, dlq)
	processor.Metrics = a.metrics

	conf := &kafka.ConsumerConfig{
		Brokers:        a.cfg.Kafka.Brokers,
		Name:           a.cfg.Kafka.ConsumerName,
		Topic:          a.cfg.Kafka.Topic,
		RecordsPerPoll: a.cfg.Kafka.RecordsPerPoll,
	}
	kafkaMetrics := kprom.NewMetrics(a.cfg.Metrics.Namespace)
	consumer, err := kafka.NewCommandConsumer(conf, processor, kafkaMetrics, a.logger)
	if err != nil {
		return fmt.Errorf("cannot create command consumer: %w", err)
	}

	srv := a.metricsServer(kafkaMetrics.Handler())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return consumer.Poll(ctx)
}

// metricsServer serves the transaction metrics and the kafka client metrics,
// which kprom keeps in its own registry.
func (a *app) metricsServer(kafkaMetrics http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/metrics/kafka", kafkaMetrics)
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.IsErr(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}

func submit(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		return errors.E(errors.Invalid, "kafka brokers and topic are required", nil)
	}
	amount, err := parseAmount(*submitAmount)
	if err != nil {
		return err
	}

	producer, err := kafka.NewCommandProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, nil, logger)
	if err != nil {
		return err
	}
	defer producer.Close()

	return producer.Publish(ctx, models.Command{Operation: *submitOperation, IDs: *submitIDs, Amount: amount})
}

func parseAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return &d, nil
}

func outcomeViews(outcomes []transactions.Outcome) []outcomeView {
	views := make([]outcomeView, 0, len(outcomes))
	for _, o := range outcomes {
		v := outcomeView{Outcome: o}
		if o.Err != nil {
			v.Error = o.Err.Error()
			v.Kind = errors.KindOf(o.Err).String()
		}
		views = append(views, v)
	}
	return views
}

func printOutcomes(outcomes []transactions.Outcome) error {
	return helpers.PrintStruct(os.Stdout, outcomeViews(outcomes))
}
