package mongodb

import (
	// Go Internal Packages
	"context"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type gatewayDoc struct {
	ID         string `bson:"_id"`
	Name       string `bson:"name"`
	Provider   string `bson:"provider"`
	Method     string `bson:"method"`
	JournalID  string `bson:"journal_id"`
	Test       bool   `bson:"test"`
	Active     bool   `bson:"active"`
	Configured bool   `bson:"configured"`
}

type journalDoc struct {
	ID           string `bson:"_id"`
	Name         string `bson:"name"`
	DebitAccount string `bson:"debit_account"`
}

type accountDoc struct {
	Code          string `bson:"_id"`
	Name          string `bson:"name"`
	Kind          string `bson:"kind"`
	PartyRequired bool   `bson:"party_required"`
}

type profileDoc struct {
	ID                string `bson:"_id"`
	PartyID           string `bson:"party_id"`
	AddressID         string `bson:"address_id"`
	GatewayID         string `bson:"gateway_id"`
	ProviderReference string `bson:"provider_reference"`
	LastFour          string `bson:"last_four"`
	ExpiryMonth       string `bson:"expiry_month"`
	ExpiryYear        string `bson:"expiry_year"`
	Sequence          int    `bson:"sequence"`
	Active            bool   `bson:"active"`
}

func (s *Store) InsertGateway(ctx context.Context, g models.Gateway) error {
	_, err := s.coll(gatewaysColl).InsertOne(ctx, gatewayDoc(g))
	return mapErr(err, "gateway", g.ID)
}

func (s *Store) GetGateway(ctx context.Context, id string) (models.Gateway, error) {
	var doc gatewayDoc
	if err := s.coll(gatewaysColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return models.Gateway{}, mapErr(err, "gateway", id)
	}
	return models.Gateway(doc), nil
}

func (s *Store) UpdateGateway(ctx context.Context, g models.Gateway) error {
	res, err := s.coll(gatewaysColl).ReplaceOne(ctx, bson.M{"_id": g.ID}, gatewayDoc(g))
	if err != nil {
		return mapErr(err, "gateway", g.ID)
	}
	if res.MatchedCount == 0 {
		return errors.NotFoundErr("gateway", g.ID)
	}
	return nil
}

func (s *Store) ListGateways(ctx context.Context) ([]models.Gateway, error) {
	cur, err := s.coll(gatewaysColl).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapErr(err, "gateways", "")
	}
	var docs []gatewayDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(err, "gateways", "")
	}
	out := make([]models.Gateway, len(docs))
	for i, d := range docs {
		out[i] = models.Gateway(d)
	}
	return out, nil
}

func (s *Store) PutJournal(ctx context.Context, j models.Journal) error {
	_, err := s.coll(journalsColl).ReplaceOne(ctx, bson.M{"_id": j.ID}, journalDoc(j), options.Replace().SetUpsert(true))
	return mapErr(err, "journal", j.ID)
}

func (s *Store) GetJournal(ctx context.Context, id string) (models.Journal, error) {
	var doc journalDoc
	if err := s.coll(journalsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return models.Journal{}, mapErr(err, "journal", id)
	}
	return models.Journal(doc), nil
}

func (s *Store) PutAccount(ctx context.Context, a models.Account) error {
	doc := accountDoc{Code: a.Code, Name: a.Name, Kind: string(a.Kind), PartyRequired: a.PartyRequired}
	_, err := s.coll(accountsColl).ReplaceOne(ctx, bson.M{"_id": a.Code}, doc, options.Replace().SetUpsert(true))
	return mapErr(err, "account", a.Code)
}

func (s *Store) GetAccount(ctx context.Context, code string) (models.Account, error) {
	var doc accountDoc
	if err := s.coll(accountsColl).FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		return models.Account{}, mapErr(err, "account", code)
	}
	return models.Account{Code: doc.Code, Name: doc.Name, Kind: models.AccountKind(doc.Kind), PartyRequired: doc.PartyRequired}, nil
}

func (s *Store) InsertProfile(ctx context.Context, p models.PaymentProfile) error {
	_, err := s.coll(profilesColl).InsertOne(ctx, profileDoc(p))
	return mapErr(err, "payment profile", p.ID)
}

func (s *Store) GetProfile(ctx context.Context, id string) (models.PaymentProfile, error) {
	var doc profileDoc
	if err := s.coll(profilesColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return models.PaymentProfile{}, mapErr(err, "payment profile", id)
	}
	return models.PaymentProfile(doc), nil
}

// ListProfiles returns the profiles of a party ordered by sequence.
func (s *Store) ListProfiles(ctx context.Context, partyID string) ([]models.PaymentProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll(profilesColl).Find(ctx, bson.M{"party_id": partyID}, opts)
	if err != nil {
		return nil, mapErr(err, "payment profiles of", partyID)
	}
	var docs []profileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(err, "payment profiles of", partyID)
	}
	out := make([]models.PaymentProfile, len(docs))
	for i, d := range docs {
		out[i] = models.PaymentProfile(d)
	}
	return out, nil
}
