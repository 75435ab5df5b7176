package transactions

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	errors "paygate/errors"
	models "paygate/models"

	// External Packages
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NewTransaction is the input of Create.
type NewTransaction struct {
	Type             models.TxType
	Description      string
	Date             time.Time
	Amount           decimal.Decimal
	Currency         models.Currency
	GatewayID        string
	PartyID          string
	AddressID        string
	CreditAccount    string
	PaymentProfileID string
}

// DraftPatch lists the fields that may change while a transaction is a draft.
// Nil fields are left as they are.
type DraftPatch struct {
	Description      *string
	Date             *time.Time
	Amount           *decimal.Decimal
	AddressID        *string
	CreditAccount    *string
	PaymentProfileID *string
}

// Create validates in and stores it as a draft transaction.
func (m *Machine) Create(ctx context.Context, in NewTransaction) (models.Transaction, error) {
	if in.Type == "" {
		in.Type = models.TypeCharge
	}

	ve := errors.ValidationErrs()
	if in.Type != models.TypeCharge && in.Type != models.TypeRefund {
		ve.Add("type", "must be charge or refund")
	}
	if in.Currency.Code == "" {
		ve.Add("currency", "cannot be empty")
	}
	if !in.Amount.IsPositive() {
		ve.Add("amount", "must be positive")
	} else if !in.Currency.Round(in.Amount).Equal(in.Amount) {
		ve.Add("amount", "has more decimals than the currency allows")
	}
	if in.GatewayID == "" {
		ve.Add("gateway_id", "cannot be empty")
	}
	if in.PartyID == "" {
		ve.Add("party_id", "cannot be empty")
	}
	if in.AddressID == "" {
		ve.Add("address_id", "cannot be empty")
	}
	if in.CreditAccount == "" {
		ve.Add("credit_account", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return models.Transaction{}, err
	}

	gateway, err := m.Catalog.GetGateway(ctx, in.GatewayID)
	if err != nil {
		return models.Transaction{}, err
	}
	if !gateway.Active {
		return models.Transaction{}, errors.E(errors.Invalid, "gateway "+gateway.Name+" is not active", nil)
	}

	now := m.Now().UTC()
	tx := models.Transaction{
		ID:            models.NewID(),
		UUID:          models.NewID(),
		Type:          in.Type,
		State:         models.StateDraft,
		Description:   in.Description,
		Date:          in.Date,
		Amount:        in.Amount,
		Currency:      in.Currency,
		GatewayID:     in.GatewayID,
		PartyID:       in.PartyID,
		AddressID:     in.AddressID,
		CreditAccount: in.CreditAccount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	if in.PaymentProfileID != "" {
		if err := m.useProfile(ctx, &tx, in.PaymentProfileID); err != nil {
			return models.Transaction{}, err
		}
	}

	if err := m.Repo.InsertTransaction(ctx, &tx); err != nil {
		return models.Transaction{}, err
	}
	m.Logger.Info("transaction created",
		zap.String("transaction_id", tx.ID),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()))
	return tx, nil
}

// useProfile links a stored payment profile. It must belong to the same party
// and gateway as the transaction.
func (m *Machine) useProfile(ctx context.Context, tx *models.Transaction, profileID string) error {
	p, err := m.Catalog.GetProfile(ctx, profileID)
	if err != nil {
		return err
	}
	if p.PartyID != tx.PartyID || p.GatewayID != tx.GatewayID {
		return errors.E(errors.Invalid, "payment profile does not belong to the party and gateway", nil)
	}
	if !p.Active {
		return errors.E(errors.Invalid, "payment profile is not active", nil)
	}
	tx.PaymentProfileID = p.ID
	tx.LastFourDigits = p.LastFour
	return nil
}

// UpdateDraft edits a draft transaction. Anything past draft is frozen.
func (m *Machine) UpdateDraft(ctx context.Context, id string, patch DraftPatch) Outcome {
	return m.runOne(ctx, "update", id, func(ctx context.Context, s *session, tx *models.Transaction) error {
		if tx.State != models.StateDraft {
			return errors.InvalidTransitionErr("edit", string(tx.State))
		}
		if patch.Description != nil {
			tx.Description = *patch.Description
		}
		if patch.Date != nil {
			tx.Date = *patch.Date
		}
		if patch.Amount != nil {
			if !patch.Amount.IsPositive() || !tx.Currency.Round(*patch.Amount).Equal(*patch.Amount) {
				return errors.E(errors.Invalid, "amount must be positive and fit the currency", nil)
			}
			tx.Amount = *patch.Amount
		}
		if patch.AddressID != nil {
			tx.AddressID = *patch.AddressID
		}
		if patch.CreditAccount != nil {
			tx.CreditAccount = *patch.CreditAccount
		}
		if patch.PaymentProfileID != nil {
			tx.PaymentProfileID, tx.LastFourDigits = "", ""
			if *patch.PaymentProfileID != "" {
				if err := m.useProfile(ctx, tx, *patch.PaymentProfileID); err != nil {
					return err
				}
			}
		}
		return s.Save(ctx, tx)
	})
}
