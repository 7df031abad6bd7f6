package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cleared is the clearing state of a transaction.
type Cleared string

const (
	ClearedPending    Cleared = "pending"
	ClearedCleared    Cleared = "cleared"
	ClearedReconciled Cleared = "reconciled"
)

// Transaction represents money entering or leaving an account. The
// amount is in integer minor units, negative for outflows.
type Transaction struct {
	DefaultModel
	Account    Account `json:"-"`
	AccountID  uuid.UUID
	PostedAt   time.Time
	Amount     int64
	Payee      *Payee `json:"-"`
	PayeeID    *uuid.UUID
	PayeeName  string
	Memo       string
	Cleared    Cleared
	SkipBudget bool

	// Imports use the external ID for duplicate detection.
	ExternalID *string `gorm:"uniqueIndex:transaction_external_id"`

	// Both sides of a transfer share a group ID and point at each other.
	TransferGroupID *uuid.UUID
	TransferPeerID  *uuid.UUID

	Splits []TransactionSplit
}

// TransactionSplit attributes a part of a transaction to an envelope.
type TransactionSplit struct {
	DefaultModel
	TransactionID uuid.UUID `gorm:"index"`
	Envelope      Envelope  `json:"-"`
	EnvelopeID    uuid.UUID `gorm:"index"`
	Amount        int64
	Note          string
}

var (
	ErrTransactionAmountZero = errors.New("the transaction amount must not be zero")
	ErrClearedState          = errors.New("the cleared state must be one of pending, cleared, reconciled")
	ErrSplitSum              = errors.New("the split amounts must sum to the transaction amount")
	ErrExternalIDNotUnique   = errors.New("a transaction with this external ID already exists")
	ErrTransferSameAccount   = errors.New("a transfer needs two different accounts")
	ErrTransferAmount        = errors.New("the transfer amount must be positive")
)

// BeforeSave trims whitespace and validates the cleared state.
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.PayeeName = strings.TrimSpace(t.PayeeName)
	t.Memo = strings.TrimSpace(t.Memo)

	if t.Cleared == "" {
		t.Cleared = ClearedCleared
	}

	switch t.Cleared {
	case ClearedPending, ClearedCleared, ClearedReconciled:
	default:
		return fmt.Errorf("%w, got %q", ErrClearedState, t.Cleared)
	}

	return nil
}

// Create validates and stores the transaction with its splits in one
// database transaction.
//
// When splits are present their amounts must sum to the transaction
// amount. This is enforced at write time; the aggregation layers treat
// an already stored mismatch as data corruption and never rebalance it.
func (t *Transaction) Create(db *gorm.DB) error {
	if t.Amount == 0 {
		return ErrTransactionAmountZero
	}

	if err := checkSplitSum(t.Amount, t.Splits); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(t).Error
	})
}

func checkSplitSum(amount int64, splits []TransactionSplit) error {
	if len(splits) == 0 {
		return nil
	}

	var sum int64
	for _, split := range splits {
		sum += split.Amount
	}

	if sum != amount {
		return fmt.Errorf("%w: %d != %d", ErrSplitSum, sum, amount)
	}

	return nil
}

// CreateTransfer moves money between two accounts by creating a linked
// pair of transactions atomically. Transfers never carry splits, they
// do not touch any envelope.
func CreateTransfer(db *gorm.DB, from, to Account, amount int64, postedAt time.Time, memo string) (Transaction, Transaction, error) {
	if from.ID == to.ID {
		return Transaction{}, Transaction{}, ErrTransferSameAccount
	}
	if amount <= 0 {
		return Transaction{}, Transaction{}, ErrTransferAmount
	}

	group := uuid.New()

	outflow := Transaction{
		AccountID:       from.ID,
		PostedAt:        postedAt.UTC(),
		Amount:          -amount,
		PayeeName:       fmt.Sprintf("Transfer to %s", to.Name),
		Memo:            memo,
		Cleared:         ClearedCleared,
		TransferGroupID: &group,
	}
	inflow := Transaction{
		AccountID:       to.ID,
		PostedAt:        postedAt.UTC(),
		Amount:          amount,
		PayeeName:       fmt.Sprintf("Transfer from %s", from.Name),
		Memo:            memo,
		Cleared:         ClearedCleared,
		TransferGroupID: &group,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&outflow).Error; err != nil {
			return err
		}
		if err := tx.Create(&inflow).Error; err != nil {
			return err
		}

		// Link the two sides to each other
		if err := tx.Model(&outflow).Update("transfer_peer_id", inflow.ID).Error; err != nil {
			return err
		}
		return tx.Model(&inflow).Update("transfer_peer_id", outflow.ID).Error
	})
	if err != nil {
		return Transaction{}, Transaction{}, err
	}

	outflow.TransferPeerID = &inflow.ID
	inflow.TransferPeerID = &outflow.ID
	return outflow, inflow, nil
}
