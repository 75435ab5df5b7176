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
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txDoc struct {
	ID                string               `bson:"_id"`
	UUID              string               `bson:"uuid"`
	Type              string               `bson:"type"`
	State             string               `bson:"state"`
	Description       string               `bson:"description,omitempty"`
	Date              time.Time            `bson:"date"`
	Amount            primitive.Decimal128 `bson:"amount"`
	CurrencyCode      string               `bson:"currency_code"`
	CurrencyDigits    int32                `bson:"currency_digits"`
	GatewayID         string               `bson:"gateway_id"`
	PartyID           string               `bson:"party_id"`
	AddressID         string               `bson:"address_id"`
	CreditAccount     string               `bson:"credit_account"`
	PaymentProfileID  string               `bson:"payment_profile_id,omitempty"`
	ProviderReference string               `bson:"provider_reference,omitempty"`
	LastFourDigits    string               `bson:"last_four_digits,omitempty"`
	LedgerEntryID     string               `bson:"ledger_entry_id,omitempty"`
	Origin            string               `bson:"origin,omitempty"`
	Version           int64                `bson:"version"`
	CreatedAt         time.Time            `bson:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

func newTxDoc(tx *models.Transaction) (txDoc, error) {
	amount, err := toDecimal128(tx.Amount)
	if err != nil {
		return txDoc{}, err
	}
	return txDoc{
		ID:                tx.ID,
		UUID:              tx.UUID,
		Type:              string(tx.Type),
		State:             string(tx.State),
		Description:       tx.Description,
		Date:              tx.Date,
		Amount:            amount,
		CurrencyCode:      tx.Currency.Code,
		CurrencyDigits:    tx.Currency.Digits,
		GatewayID:         tx.GatewayID,
		PartyID:           tx.PartyID,
		AddressID:         tx.AddressID,
		CreditAccount:     tx.CreditAccount,
		PaymentProfileID:  tx.PaymentProfileID,
		ProviderReference: tx.ProviderReference,
		LastFourDigits:    tx.LastFourDigits,
		LedgerEntryID:     tx.LedgerEntryID,
		Origin:            tx.Origin,
		Version:           tx.Version,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}, nil
}

func (d txDoc) model() (models.Transaction, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return models.Transaction{}, errors.E(errors.Internal, "bad amount on transaction "+d.ID, err)
	}
	return models.Transaction{
		ID:                d.ID,
		UUID:              d.UUID,
		Type:              models.TxType(d.Type),
		State:             models.State(d.State),
		Description:       d.Description,
		Date:              d.Date,
		Amount:            amount,
		Currency:          models.Currency{Code: d.CurrencyCode, Digits: d.CurrencyDigits},
		GatewayID:         d.GatewayID,
		PartyID:           d.PartyID,
		AddressID:         d.AddressID,
		CreditAccount:     d.CreditAccount,
		PaymentProfileID:  d.PaymentProfileID,
		ProviderReference: d.ProviderReference,
		LastFourDigits:    d.LastFourDigits,
		LedgerEntryID:     d.LedgerEntryID,
		Origin:            d.Origin,
		Version:           d.Version,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

// InsertTransaction inserts a new transaction with version 1.
func (s *Store) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	doc, err := newTxDoc(tx)
	if err != nil {
		return err
	}
	doc.Version = 1
	if _, err := s.coll(transactionsColl).InsertOne(ctx, doc); err != nil {
		return mapErr(err, "transaction", tx.ID)
	}
	tx.Version = 1
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	return s.findTransaction(ctx, bson.M{"_id": id}, id)
}

func (s *Store) FindTransactionByUUID(ctx context.Context, uuid string) (models.Transaction, error) {
	return s.findTransaction(ctx, bson.M{"uuid": uuid}, uuid)
}

func (s *Store) findTransaction(ctx context.Context, filter bson.M, id string) (models.Transaction, error) {
	var doc txDoc
	if err := s.coll(transactionsColl).FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.Transaction{}, mapErr(err, "transaction", id)
	}
	return doc.model()
}

// UpdateTransaction replaces the transaction only if nobody wrote it since it
// was read, then bumps tx.Version.
func (s *Store) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	doc, err := newTxDoc(tx)
	if err != nil {
		return err
	}
	doc.Version = tx.Version + 1

	res, err := s.coll(transactionsColl).ReplaceOne(ctx, versionFilter(tx.ID, tx.Version), doc)
	if err != nil {
		return mapErr(err, "transaction", tx.ID)
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetTransaction(ctx, tx.ID); err != nil {
			return err
		}
		return errors.ConcurrentModificationErr(tx.ID, nil)
	}
	tx.Version++
	return nil
}

func versionFilter(id string, version int64) bson.M {
	return bson.M{"_id": id, "version": version}
}
