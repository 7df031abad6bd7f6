package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// AccountType distinguishes spendable accounts from tracked assets.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCash     AccountType = "cash"
	AccountTypeTracking AccountType = "tracking"
)

// LiquidAccountTypes are the account types whose balances count towards
// liquid net worth and the monthly cashflow.
var LiquidAccountTypes = []AccountType{AccountTypeChecking, AccountTypeSavings, AccountTypeCash}

// Account represents an asset account, e.g. a bank account.
type Account struct {
	DefaultModel
	Name     string `gorm:"uniqueIndex:account_name"`
	Type     AccountType
	Currency string
	Note     string
	Archived bool
}

var (
	ErrAccountNameNotUnique = errors.New("the account name must be unique")
	ErrAccountNameEmpty     = errors.New("the account name must not be empty")
	ErrAccountType          = errors.New("the account type must be one of checking, savings, cash, tracking")
)

// BeforeSave ensures consistency for the account.
//
// It trims whitespace from all strings and validates the type.
func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))

	if a.Name == "" {
		return ErrAccountNameEmpty
	}

	switch a.Type {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash, AccountTypeTracking:
	default:
		return fmt.Errorf("%w, got %q", ErrAccountType, a.Type)
	}

	return nil
}

// Liquid reports whether the account's balance is spendable money.
func (a Account) Liquid() bool {
	return slices.Contains(LiquidAccountTypes, a.Type)
}

// Balances holds the all-time balance of an account, split by cleared
// state.
type Balances struct {
	Balance        int64
	ClearedBalance int64
	PendingBalance int64
	LastPostedAt   *time.Time
}

// Balances sums all transactions of the account. The cleared balance
// covers cleared and reconciled transactions, the pending balance what
// remains.
func (a Account) Balances(db *gorm.DB) (Balances, error) {
	var result struct {
		Balance        int64
		ClearedBalance int64
		PendingBalance int64
		LastPostedAt   *time.Time
	}

	err := db.Model(&Transaction{}).
		Select(
			"COALESCE(SUM(amount), 0) AS balance",
			"COALESCE(SUM(CASE WHEN cleared IN ('cleared', 'reconciled') THEN amount ELSE 0 END), 0) AS cleared_balance",
			"COALESCE(SUM(CASE WHEN cleared = 'pending' THEN amount ELSE 0 END), 0) AS pending_balance",
			"MAX(posted_at) AS last_posted_at",
		).
		Where("account_id = ?", a.ID).
		Scan(&result).Error
	if err != nil {
		return Balances{}, err
	}

	return Balances{
		Balance:        result.Balance,
		ClearedBalance: result.ClearedBalance,
		PendingBalance: result.PendingBalance,
		LastPostedAt:   result.LastPostedAt,
	}, nil
}

// ReconcilePreview is the delta between an account's cleared balance
// and a statement balance.
type ReconcilePreview struct {
	AccountID        uuid.UUID `json:"accountId"`
	AccountName      string    `json:"accountName"`
	ClearedBalance   int64     `json:"clearedBalance"`
	StatementBalance int64     `json:"statementBalance"`
	Delta            int64     `json:"delta"`
}

// PreviewReconcile computes the adjustment a reconcile would make
// without writing anything.
func (a Account) PreviewReconcile(db *gorm.DB, statementBalance int64) (ReconcilePreview, error) {
	balances, err := a.Balances(db)
	if err != nil {
		return ReconcilePreview{}, err
	}

	return ReconcilePreview{
		AccountID:        a.ID,
		AccountName:      a.Name,
		ClearedBalance:   balances.ClearedBalance,
		StatementBalance: statementBalance,
		Delta:            statementBalance - balances.ClearedBalance,
	}, nil
}

// Reconcile brings the account's cleared balance in line with a
// statement balance.
//
// When the balances differ, an adjustment transaction over the delta is
// created with a split against the TBB envelope so the money stays
// accounted for. All currently cleared transactions are then marked
// reconciled. Both steps happen in one database transaction.
func (a Account) Reconcile(db *gorm.DB, statementBalance int64, date time.Time) (ReconcilePreview, *Transaction, error) {
	preview, err := a.PreviewReconcile(db, statementBalance)
	if err != nil {
		return ReconcilePreview{}, nil, err
	}

	var adjustment *Transaction
	err = db.Transaction(func(tx *gorm.DB) error {
		if preview.Delta != 0 {
			tbb, err := TBB(tx)
			if err != nil {
				return err
			}

			transaction := Transaction{
				AccountID: a.ID,
				PostedAt:  date.UTC(),
				Amount:    preview.Delta,
				PayeeName: "Reconciliation Adjustment",
				Memo:      "Auto adjustment to match statement balance",
				Cleared:   ClearedReconciled,
				Splits: []TransactionSplit{
					{EnvelopeID: tbb.ID, Amount: preview.Delta, Note: "reconcile adjustment"},
				},
			}

			err = transaction.Create(tx)
			if err != nil {
				return err
			}
			adjustment = &transaction
		}

		return tx.Model(&Transaction{}).
			Where("account_id = ? AND cleared = ?", a.ID, ClearedCleared).
			Update("cleared", ClearedReconciled).Error
	})
	if err != nil {
		return ReconcilePreview{}, nil, err
	}

	return preview, adjustment, nil
}
