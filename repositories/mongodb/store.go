// Package mongodb persists transactions, ledger entries, audit logs and the
// gateway catalog in MongoDB.
package mongodb

import (
	// Go Internal Packages
	"context"
	"fmt"

	// Local Packages
	errors "paygate/errors"

	// External Packages
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	transactionsColl = "transactions"
	entriesColl      = "ledger_entries"
	countersColl     = "ledger_counters"
	logsColl         = "transaction_logs"
	gatewaysColl     = "gateways"
	journalsColl     = "journals"
	accountsColl     = "accounts"
	profilesColl     = "payment_profiles"
)

type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewStore(client *mongo.Client, database string) *Store {
	return &Store{Client: client, DB: client.Database(database)}
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.DB.Collection(name)
}

// EnsureIndexes creates the indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		transactionsColl: {
			{Keys: bson.D{{Key: "uuid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "state", Value: 1}}},
		},
		entriesColl: {
			{Keys: bson.D{{Key: "origin", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		logsColl: {
			{Keys: bson.D{{Key: "transaction_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		profilesColl: {
			{Keys: bson.D{{Key: "party_id", Value: 1}, {Key: "sequence", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.coll(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// mapErr turns driver errors into the local error kinds.
func mapErr(err error, what, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.IsErr(err, mongo.ErrNoDocuments):
		return errors.NotFoundErr(what, id)
	case mongo.IsDuplicateKeyError(err):
		return errors.E(errors.Conflict, fmt.Sprintf("%s %s already exists", what, id), err)
	}
	return errors.E(errors.Internal, fmt.Sprintf("%s %s", what, id), err)
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, errors.E(errors.Invalid, fmt.Sprintf("amount %s cannot be stored", d), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}
