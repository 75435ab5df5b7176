package kafka

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"strings"

	// Local Packages
	models "paygate/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

// Producer publishes batch commands for the consumers to apply.
type Producer struct {
	Client *kgo.Client
	Topic  string
	Logger *zap.Logger
}

func NewCommandProducer(brokers []string, topic string, metrics *kprom.Metrics, logger *zap.Logger) (*Producer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),        // Connects to Kafka brokers
		kgo.DefaultProduceTopic(topic),     // Commands go to a single topic
		kgo.RequiredAcks(kgo.AllISRAcks()), // Waits for every in-sync replica
	}
	if metrics != nil {
		opts = append(opts, kgo.WithHooks(metrics))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return &Producer{Client: client, Topic: topic, Logger: logger}, nil
}

// Publish writes cmd and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, cmd models.Command) error {
	record, err := CommandRecord(p.Topic, cmd)
	if err != nil {
		return err
	}
	if err := p.Client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return err
	}

	p.Logger.Info("command published",
		zap.String("operation", cmd.Operation),
		zap.Int("count", len(cmd.IDs)))
	return nil
}

func (p *Producer) Close() {
	p.Client.Close()
}

// CommandRecord encodes cmd. The key keeps commands touching the same first
// transaction on one partition.
func CommandRecord(topic string, cmd models.Command) (*kgo.Record, error) {
	value, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	key := cmd.Operation
	if len(cmd.IDs) > 0 {
		key = strings.Join([]string{cmd.Operation, cmd.IDs[0]}, ":")
	}
	return &kgo.Record{Topic: topic, Key: []byte(key), Value: value}, nil
}
