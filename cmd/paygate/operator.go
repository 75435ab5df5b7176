package main

import (
	// Go Internal Packages
	"context"
	"os"
	"time"

	// Local Packages
	errors "paygate/errors"
	helpers "paygate/helpers"
	models "paygate/models"
	redis "paygate/repositories/redis"
	transactions "paygate/services/transactions"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Commands an operator uses to look after gateways, drafts, notes and the
// dead-letter queue.
var (
	gatewaysCmd = kingpin.Command("gateways", "List gateways")

	deactivateCmd = kingpin.Command("deactivate-gateway", "Take a gateway out of service")
	deactivateID  = deactivateCmd.Arg("id", "Gateway id").Required().String()

	defaultProfileCmd   = kingpin.Command("default-profile", "Show the payment profile used by default for a party")
	defaultProfileParty = defaultProfileCmd.Arg("party", "Party id").Required().String()

	draftCmd         = kingpin.Command("update-draft", "Edit a draft transaction")
	draftID          = draftCmd.Arg("id", "Transaction id").Required().String()
	draftDescription = draftCmd.Flag("description", "Description").IsSetByUser(&draftSet.description).String()
	draftAmount      = draftCmd.Flag("amount", "Amount").IsSetByUser(&draftSet.amount).String()
	draftDate        = draftCmd.Flag("date", "Date as YYYY-MM-DD").IsSetByUser(&draftSet.date).String()
	draftAddress     = draftCmd.Flag("address", "Billing address id").IsSetByUser(&draftSet.address).String()
	draftAccount     = draftCmd.Flag("account", "Customer account code").IsSetByUser(&draftSet.account).String()
	draftProfile     = draftCmd.Flag("profile", "Payment profile id, empty to unlink").IsSetByUser(&draftSet.profile).String()

	logsCmd = kingpin.Command("logs", "List the audit log of a transaction")
	logsID  = logsCmd.Arg("id", "Transaction id").Required().String()

	noteCmd     = kingpin.Command("note", "Add a note to a transaction")
	noteID      = noteCmd.Arg("id", "Transaction id").Required().String()
	noteMessage = noteCmd.Arg("message", "Note").Required().String()

	editNoteCmd     = kingpin.Command("edit-note", "Change a note")
	editNoteID      = editNoteCmd.Arg("log-id", "Log entry id").Required().String()
	editNoteMessage = editNoteCmd.Arg("message", "Note").Required().String()

	replayCmd  = kingpin.Command("replay-dead-letter", "Apply dead letters again and drop the ones that succeed")
	replayKeys = replayCmd.Arg("keys", "Record keys or transaction ids, all letters when empty").Strings()

	runSwipe      = runCmd.Flag("swipe", "Magnetic stripe data for authorize or capture").String()
	runCardOwner  = runCmd.Flag("card-owner", "Card owner").String()
	runCardNumber = runCmd.Flag("card-number", "Card number for authorize or capture").String()
	runCardMonth  = runCmd.Flag("card-expiry-month", "Card expiry month").String()
	runCardYear   = runCmd.Flag("card-expiry-year", "Card expiry year").String()
	runCardCSC    = runCmd.Flag("card-csc", "Card security code").String()
)

// draftSet records which update-draft flags were given.
var draftSet struct{ description, amount, date, address, account, profile bool }

func (a *app) runOperator(ctx context.Context, command string) (bool, error) {
	switch command {
	case gatewaysCmd.FullCommand():
		out, err := a.gateways.List(ctx)
		if err != nil {
			return true, err
		}
		return true, helpers.PrintStruct(os.Stdout, out)
	case deactivateCmd.FullCommand():
		return true, a.gateways.Deactivate(ctx, *deactivateID)
	case defaultProfileCmd.FullCommand():
		p, ok, err := a.profiles.DefaultProfile(ctx, *defaultProfileParty)
		if err != nil {
			return true, err
		}
		if !ok {
			return true, errors.NotFoundErr("payment profile for party", *defaultProfileParty)
		}
		return true, helpers.PrintStruct(os.Stdout, p)
	case draftCmd.FullCommand():
		patch, err := draftPatch()
		if err != nil {
			return true, err
		}
		return true, printOutcomes([]transactions.Outcome{a.machine.UpdateDraft(ctx, *draftID, patch)})
	case logsCmd.FullCommand():
		logs, err := a.audit.List(ctx, *logsID)
		if err != nil {
			return true, err
		}
		return true, helpers.PrintStruct(os.Stdout, logs)
	case noteCmd.FullCommand():
		entry, err := a.audit.AddNote(ctx, *noteID, *noteMessage)
		if err != nil {
			return true, err
		}
		return true, helpers.PrintStruct(os.Stdout, entry)
	case editNoteCmd.FullCommand():
		return true, a.audit.EditNote(ctx, *editNoteID, *editNoteMessage)
	case replayCmd.FullCommand():
		client, err := a.redisClient(ctx)
		if err != nil {
			return true, err
		}
		results, err := a.replayDeadLetters(ctx, redis.NewDeadLetterQueue(client, a.logger), *replayKeys)
		if err != nil {
			return true, err
		}
		return true, helpers.PrintStruct(os.Stdout, results)
	}
	return false, nil
}

func draftPatch() (transactions.DraftPatch, error) {
	var patch transactions.DraftPatch
	if draftSet.description {
		patch.Description = draftDescription
	}
	if draftSet.amount {
		amount, err := decimal.NewFromString(*draftAmount)
		if err != nil {
			return patch, errors.InvalidParamsErr(err)
		}
		patch.Amount = &amount
	}
	if draftSet.date {
		date, err := time.Parse(time.DateOnly, *draftDate)
		if err != nil {
			return patch, errors.InvalidParamsErr(err)
		}
		patch.Date = &date
	}
	if draftSet.address {
		patch.AddressID = draftAddress
	}
	if draftSet.account {
		patch.CreditAccount = draftAccount
	}
	if draftSet.profile {
		patch.PaymentProfileID = draftProfile
	}
	return patch, nil
}

// runCard returns the card given on the run command, if any.
func runCard() *models.CardEntry {
	if *runSwipe == "" && *runCardNumber == "" {
		return nil
	}
	return &models.CardEntry{
		CardPresent: *runSwipe != "",
		SwipeData:   *runSwipe,
		Owner:       *runCardOwner,
		Number:      *runCardNumber,
		ExpiryMonth: *runCardMonth,
		ExpiryYear:  *runCardYear,
		CSC:         *runCardCSC,
	}
}

// runWithCard authorizes or captures a single transaction with card data.
func (a *app) runWithCard(ctx context.Context, op string, ids []string, card *models.CardEntry) (transactions.Outcome, error) {
	defer card.Clear()
	if len(ids) != 1 {
		return transactions.Outcome{}, errors.E(errors.Invalid, "card data applies to exactly one transaction", nil)
	}
	if card.SwipeData != "" {
		if err := card.ParseSwipe(); err != nil {
			return transactions.Outcome{}, errors.InvalidParamsErr(err)
		}
	}

	switch op {
	case transactions.OpAuthorize:
		return a.machine.AuthorizeWithCard(ctx, ids[0], card), nil
	case transactions.OpCapture:
		return a.machine.CaptureWithCard(ctx, ids[0], card), nil
	}
	return transactions.Outcome{}, errors.E(errors.Invalid, "card data is only used by authorize and capture", nil)
}

// replayResult is what replaying one dead letter did.
type replayResult struct {
	Key           string        `json:"key"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Replayed      bool          `json:"replayed"`
	Outcomes      []outcomeView `json:"outcomes,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// replayDeadLetters runs the queued letters matching keys again. A letter is
// removed only when every transaction it names succeeded; each replay is
// recorded in the audit log of the transactions it touched.
func (a *app) replayDeadLetters(ctx context.Context, dlq *redis.DeadLetterQueue, keys []string) ([]replayResult, error) {
	letters, err := dlq.List(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	var results []replayResult
	for _, letter := range letters {
		if len(wanted) > 0 && !wanted[letter.Key] && !wanted[letter.TransactionID] {
			continue
		}

		cmd := letter.Command
		if letter.TransactionID != "" {
			cmd.IDs = []string{letter.TransactionID}
		}
		if letter.Operation != "" {
			cmd.Operation = letter.Operation
		}

		res := replayResult{Key: letter.Key, TransactionID: letter.TransactionID}
		outcomes, err := a.machine.Execute(ctx, cmd)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		res.Outcomes = outcomeViews(outcomes)

		ok := true
		for _, o := range outcomes {
			if o.Err != nil {
				ok = false
			}
			if errors.Is(errors.NotFound, o.Err) {
				continue
			}
			record := map[string]string{
				"dead_letter": letter.Key,
				"operation":   cmd.Operation,
				"reason":      letter.Reason,
				"result":      "ok",
			}
			if o.Err != nil {
				record["result"] = o.Err.Error()
			}
			if _, err := a.audit.AppendStructured(ctx, o.ID, record); err != nil {
				a.logger.Warn("cannot record replay", zap.String("transaction_id", o.ID), zap.Error(err))
			}
		}

		if ok {
			if err := dlq.Remove(ctx, letter); err != nil {
				return results, err
			}
			res.Replayed = true
		}
		results = append(results, res)
	}
	return results, nil
}
