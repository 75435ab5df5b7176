package mongodb

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type logDoc struct {
	ID              string    `bson:"_id"`
	TransactionID   string    `bson:"transaction_id"`
	Timestamp       time.Time `bson:"timestamp"`
	Message         string    `bson:"message"`
	SystemGenerated bool      `bson:"system_generated"`
}

func (d logDoc) model() models.LogEntry {
	return models.LogEntry(d)
}

func (s *Store) InsertLog(ctx context.Context, entry models.LogEntry) error {
	_, err := s.coll(logsColl).InsertOne(ctx, logDoc(entry))
	return mapErr(err, "log", entry.ID)
}

func (s *Store) GetLog(ctx context.Context, id string) (models.LogEntry, error) {
	var doc logDoc
	if err := s.coll(logsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return models.LogEntry{}, mapErr(err, "log", id)
	}
	return doc.model(), nil
}

// UpdateLog only rewrites the message; the rest of an entry is immutable.
func (s *Store) UpdateLog(ctx context.Context, entry models.LogEntry) error {
	res, err := s.coll(logsColl).UpdateOne(ctx,
		bson.M{"_id": entry.ID},
		bson.M{"$set": bson.M{"message": entry.Message}})
	if err != nil {
		return mapErr(err, "log", entry.ID)
	}
	if res.MatchedCount == 0 {
		return errors.NotFoundErr("log", entry.ID)
	}
	return nil
}

func (s *Store) ListLogs(ctx context.Context, transactionID string) ([]models.LogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll(logsColl).Find(ctx, bson.M{"transaction_id": transactionID}, opts)
	if err != nil {
		return nil, mapErr(err, "logs of transaction", transactionID)
	}
	var docs []logDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(err, "logs of transaction", transactionID)
	}

	out := make([]models.LogEntry, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}
