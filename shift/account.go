// Package shift tracks the cash drawer of one terminal from the opening fund
// to the cash cut.
package shift

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/session"
)

const DefaultTopN = 5

type Ledger interface {
	RecordCashTransaction(ctx context.Context, tx *models.CashTransaction) error
	RecordCashCut(ctx context.Context, cut *models.CashCut) error
	QueryOrdersSince(ctx context.Context, since time.Time) ([]models.Order, error)
	QueryTransactionsSince(ctx context.Context, since time.Time, types ...models.TransactionType) ([]models.CashTransaction, error)
}

// StateStore keeps the open shift across restarts. session.Store satisfies it.
type StateStore interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

// State is the cash fund of the open shift.
type State struct {
	Amount    decimal.Decimal `json:"amount"`
	IsSet     bool            `json:"is_set"`
	StartedAt time.Time       `json:"started_at"`
}

type Options struct {
	TopN  int
	Clock func() time.Time
}

type Account struct {
	ledger Ledger
	states StateStore
	log    logrus.FieldLogger
	topN   int
	clock  func() time.Time

	mu    sync.Mutex
	state State
}

func NewAccount(ledger Ledger, states StateStore, log logrus.FieldLogger, opts Options) *Account {
	a := &Account{ledger: ledger, states: states, log: log, topN: opts.TopN, clock: opts.Clock}
	if a.topN <= 0 {
		a.topN = DefaultTopN
	}
	if a.clock == nil {
		a.clock = func() time.Time { return time.Now().UTC() }
	}
	return a
}

// Restore reloads an open shift saved before a restart.
func (a *Account) Restore(ctx context.Context) error {
	if a.states == nil {
		return nil
	}
	var st State
	ok, err := a.states.Get(ctx, session.KeyCashFund, &st)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if ok && st.IsSet {
		a.state = st
		a.log.WithField("started_at", st.StartedAt).Info("Restored open cash shift")
	}
	return nil
}

func (a *Account) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Account) IsOpen() bool {
	return a.State().IsSet
}

// Open starts a shift with an initial fund of zero or more.
func (a *Account) Open(ctx context.Context, initialFund decimal.Decimal) (State, error) {
	if initialFund.IsNegative() {
		return State{}, apperrors.Invalid("amount", "initial fund cannot be negative")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.IsSet {
		return State{}, apperrors.ErrShiftAlreadyOpen
	}

	now := a.clock()
	tx := &models.CashTransaction{
		Type:      models.TxInitialFund,
		Amount:    initialFund,
		Notes:     "Initial cash fund",
		CreatedAt: now,
	}
	if err := a.ledger.RecordCashTransaction(ctx, tx); err != nil {
		return State{}, &apperrors.PersistenceError{Op: "open shift", Err: err}
	}

	a.state = State{Amount: initialFund, IsSet: true, StartedAt: now}
	a.saveState(ctx)
	a.log.WithFields(logrus.Fields{"amount": initialFund.StringFixed(2)}).Info("Cash shift opened")
	return a.state, nil
}

func (a *Account) AddFund(ctx context.Context, amount decimal.Decimal, notes string) (models.CashTransaction, error) {
	if !amount.IsPositive() {
		return models.CashTransaction{}, apperrors.Invalid("amount", "amount must be greater than zero")
	}
	return a.record(ctx, models.TxAddFund, amount, "", notes)
}

func (a *Account) RecordExpense(ctx context.Context, amount decimal.Decimal, category, notes string) (models.CashTransaction, error) {
	if !amount.IsPositive() {
		return models.CashTransaction{}, apperrors.Invalid("amount", "amount must be greater than zero")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return models.CashTransaction{}, apperrors.Invalid("category", "expense category is required")
	}
	return a.record(ctx, models.TxExpense, amount, category, notes)
}

func (a *Account) RecordWithdrawal(ctx context.Context, amount decimal.Decimal, notes string) (models.CashTransaction, error) {
	if !amount.IsPositive() {
		return models.CashTransaction{}, apperrors.Invalid("amount", "amount must be greater than zero")
	}
	return a.record(ctx, models.TxWithdrawal, amount, "", notes)
}

func (a *Account) record(ctx context.Context, typ models.TransactionType, amount decimal.Decimal, category, notes string) (models.CashTransaction, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.IsSet {
		return models.CashTransaction{}, apperrors.ErrShiftNotOpen
	}
	tx := models.CashTransaction{
		Type:      typ,
		Amount:    amount,
		Category:  category,
		Notes:     notes,
		CreatedAt: a.clock(),
	}
	if err := a.ledger.RecordCashTransaction(ctx, &tx); err != nil {
		return models.CashTransaction{}, &apperrors.PersistenceError{Op: "record " + string(typ), Err: err}
	}
	a.log.WithFields(logrus.Fields{
		"type":   typ,
		"amount": amount.StringFixed(2),
	}).Info("Cash movement recorded")
	return tx, nil
}

// Cut closes the shift against the counted cash. Nothing is written when the
// shift data cannot be loaded.
func (a *Account) Cut(ctx context.Context, countedCash decimal.Decimal, notes string) (models.CashCut, error) {
	if countedCash.IsNegative() {
		return models.CashCut{}, apperrors.Invalid("final_cash_in_box", "counted cash cannot be negative")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.IsSet {
		return models.CashCut{}, apperrors.ErrShiftNotOpen
	}

	sum, err := a.summarize(ctx)
	if err != nil {
		return models.CashCut{}, err
	}

	cut := sum.CashCut(countedCash, notes)
	if err := a.ledger.RecordCashCut(ctx, &cut); err != nil {
		return models.CashCut{}, &apperrors.PersistenceError{Op: "save cash cut", Err: err}
	}

	a.state = State{}
	if a.states != nil {
		if err := a.states.Delete(ctx, session.KeyCashFund); err != nil {
			a.log.WithError(err).Error("Failed to clear saved cash shift")
		}
	}
	a.log.WithFields(logrus.Fields{
		"cut_id":     cut.ID,
		"expected":   cut.ExpectedCash.StringFixed(2),
		"counted":    cut.CountedCash.StringFixed(2),
		"difference": cut.Difference.StringFixed(2),
	}).Info("Cash cut completed")
	return cut, nil
}

func (a *Account) saveState(ctx context.Context) {
	if a.states == nil {
		return
	}
	if err := a.states.Set(ctx, session.KeyCashFund, a.state); err != nil {
		a.log.WithError(err).Error("Failed to save cash shift state")
	}
}
