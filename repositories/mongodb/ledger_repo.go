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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type lineDoc struct {
	Account              string               `bson:"account"`
	Party                string               `bson:"party,omitempty"`
	Description          string               `bson:"description,omitempty"`
	Debit                primitive.Decimal128 `bson:"debit"`
	Credit               primitive.Decimal128 `bson:"credit"`
	AmountSecondCurrency primitive.Decimal128 `bson:"amount_second_currency"`
	SecondCurrency       string               `bson:"second_currency,omitempty"`
}

type entryDoc struct {
	ID        string    `bson:"_id"`
	Number    string    `bson:"number,omitempty"`
	JournalID string    `bson:"journal_id"`
	Date      time.Time `bson:"date"`
	Origin    string    `bson:"origin"`
	Lines     []lineDoc `bson:"lines"`
	Posted    bool      `bson:"posted"`
	PostedAt  time.Time `bson:"posted_at,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func newEntryDoc(e models.LedgerEntry) (entryDoc, error) {
	doc := entryDoc{
		ID:        e.ID,
		Number:    e.Number,
		JournalID: e.JournalID,
		Date:      e.Date,
		Origin:    e.Origin,
		Posted:    e.Posted,
		PostedAt:  e.PostedAt,
		CreatedAt: e.CreatedAt,
		Lines:     make([]lineDoc, 0, len(e.Lines)),
	}
	for _, l := range e.Lines {
		debit, err := toDecimal128(l.Debit)
		if err != nil {
			return entryDoc{}, err
		}
		credit, err := toDecimal128(l.Credit)
		if err != nil {
			return entryDoc{}, err
		}
		second, err := toDecimal128(l.AmountSecondCurrency)
		if err != nil {
			return entryDoc{}, err
		}
		doc.Lines = append(doc.Lines, lineDoc{
			Account:              l.Account,
			Party:                l.Party,
			Description:          l.Description,
			Debit:                debit,
			Credit:               credit,
			AmountSecondCurrency: second,
			SecondCurrency:       l.SecondCurrency,
		})
	}
	return doc, nil
}

func (d entryDoc) model() (models.LedgerEntry, error) {
	e := models.LedgerEntry{
		ID:        d.ID,
		Number:    d.Number,
		JournalID: d.JournalID,
		Date:      d.Date,
		Origin:    d.Origin,
		Posted:    d.Posted,
		PostedAt:  d.PostedAt,
		CreatedAt: d.CreatedAt,
		Lines:     make([]models.LedgerLine, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		debit, err := fromDecimal128(l.Debit)
		if err != nil {
			return models.LedgerEntry{}, errors.E(errors.Internal, "bad debit on ledger entry "+d.ID, err)
		}
		credit, err := fromDecimal128(l.Credit)
		if err != nil {
			return models.LedgerEntry{}, errors.E(errors.Internal, "bad credit on ledger entry "+d.ID, err)
		}
		second, err := fromDecimal128(l.AmountSecondCurrency)
		if err != nil {
			return models.LedgerEntry{}, errors.E(errors.Internal, "bad second currency amount on ledger entry "+d.ID, err)
		}
		e.Lines = append(e.Lines, models.LedgerLine{
			Account:              l.Account,
			Party:                l.Party,
			Description:          l.Description,
			Debit:                debit,
			Credit:               credit,
			AmountSecondCurrency: second,
			SecondCurrency:       l.SecondCurrency,
		})
	}
	return e, nil
}

func (s *Store) InsertEntry(ctx context.Context, entry models.LedgerEntry) error {
	doc, err := newEntryDoc(entry)
	if err != nil {
		return err
	}
	_, err = s.coll(entriesColl).InsertOne(ctx, doc)
	return mapErr(err, "ledger entry", entry.ID)
}

func (s *Store) GetEntry(ctx context.Context, id string) (models.LedgerEntry, error) {
	var doc entryDoc
	if err := s.coll(entriesColl).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return models.LedgerEntry{}, mapErr(err, "ledger entry", id)
	}
	return doc.model()
}

func (s *Store) UpdateEntry(ctx context.Context, entry models.LedgerEntry) error {
	doc, err := newEntryDoc(entry)
	if err != nil {
		return err
	}
	res, err := s.coll(entriesColl).ReplaceOne(ctx, bson.M{"_id": entry.ID}, doc)
	if err != nil {
		return mapErr(err, "ledger entry", entry.ID)
	}
	if res.MatchedCount == 0 {
		return errors.NotFoundErr("ledger entry", entry.ID)
	}
	return nil
}

// DeleteEntry removes an entry that is still unposted. Posted entries are
// never matched.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.coll(entriesColl).DeleteOne(ctx, bson.M{"_id": id, "posted": false})
	if err != nil {
		return mapErr(err, "ledger entry", id)
	}
	if res.DeletedCount == 0 {
		return errors.NotFoundErr("unposted ledger entry", id)
	}
	return nil
}

// FindEntries returns the entries created for an origin, oldest first.
func (s *Store) FindEntries(ctx context.Context, origin string) ([]models.LedgerEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.coll(entriesColl).Find(ctx, bson.M{"origin": origin}, opts)
	if err != nil {
		return nil, mapErr(err, "ledger entries of", origin)
	}
	var docs []entryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapErr(err, "ledger entries of", origin)
	}

	out := make([]models.LedgerEntry, 0, len(docs))
	for _, d := range docs {
		e, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// NextEntryNumber hands out the journal sequence with an atomic counter.
func (s *Store) NextEntryNumber(ctx context.Context, journalID string) (int, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := s.coll(countersColl).
		FindOneAndUpdate(ctx, bson.M{"_id": journalID}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, mapErr(err, "journal counter", journalID)
	}
	return counter.Seq, nil
}
