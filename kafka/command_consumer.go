package kafka

import (
	// Go Internal Packages
	"context"
	"errors"
	"fmt"

	// Local Packages
	models "paygate/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers        []string
	Name           string
	Topic          string
	RecordsPerPoll int
}

type Consumer struct {
	Client    *kgo.Client
	Config    *ConsumerConfig
	Processor CommandProcessor
	Logger    *zap.Logger
}

type CommandProcessor interface {
	ProcessRecords(ctx context.Context, records []models.Record) error
}

// NewCommandConsumer creates a consumer of the command topic (PS: Must call
// Poll to start consuming the records)
func NewCommandConsumer(conf *ConsumerConfig, processor CommandProcessor, metrics *kprom.Metrics, logger *zap.Logger) (*Consumer, error) {
	c := &Consumer{Config: conf, Processor: processor, Logger: logger}

	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...), // Connects to Kafka brokers
		kgo.ConsumerGroup(conf.Name),     // Specifies the consumer group
		kgo.ConsumeTopics(conf.Topic),    // Specifies the command topic
		kgo.DisableAutoCommit(),          // Offsets are committed after processing
		kgo.BlockRebalanceOnPoll(),       // Blocks rebalancing until the batch is handled
	}
	if metrics != nil {
		opts = append(opts, kgo.WithHooks(metrics)) // Attaches monitoring hooks
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	c.Client = client
	return c, nil
}

// Poll fetches command records until ctx is done. A batch is committed only
// after the processor accepted it.
func (c *Consumer) Poll(ctx context.Context) error {
	defer c.Client.Close()

	for {
		// Check if the context is canceled before polling
		if ctx.Err() != nil {
			c.Logger.Warn("polling stopped: context canceled")
			return ctx.Err()
		}

		c.Logger.Debug(fmt.Sprintf("%s: polling for records", c.Config.Name))
		fetches := c.Client.PollRecords(ctx, c.Config.RecordsPerPoll)

		// Handle client shutdown
		if fetches.IsClientClosed() {
			return errors.New("kafka client closed")
		}
		if errors.Is(fetches.Err0(), context.Canceled) {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.Logger.Error("fetch failed",
				zap.String("topic", topic),
				zap.Int32("partition", partition),
				zap.Error(err))
		})

		// Hand the batch to the processor; an error keeps the offsets uncommitted
		records := Records(fetches.Records())
		if err := c.Processor.ProcessRecords(ctx, records); err != nil {
			c.Logger.Error("failed to process records", zap.Error(err))
			c.Client.AllowRebalance()
			continue
		}

		if err := c.Client.CommitRecords(ctx, fetches.Records()...); err != nil {
			c.Logger.Error("failed to commit records", zap.Error(err))
		}
		c.Client.AllowRebalance()
	}
}

// Records converts fetched kafka records into the local record type.
func Records(in []*kgo.Record) []models.Record {
	out := make([]models.Record, len(in))
	for i, r := range in {
		out[i] = models.Record{Key: r.Key, Value: r.Value, Topic: r.Topic}
	}
	return out
}
