package models

import (
	"errors"

	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BudgetMonth groups the allocations and moves of one calendar month.
type BudgetMonth struct {
	DefaultModel
	Month    types.Month `gorm:"uniqueIndex:budget_month_month"`
	Currency string
}

// AllocationSource records what created an allocation.
type AllocationSource string

const (
	AllocationManual     AllocationSource = "manual"
	AllocationAdjustment AllocationSource = "adjustment"
)

// Allocation assigns money to an envelope for one month. The mirror
// row on the TBB envelope carries the negative sum of a batch, so all
// allocations of a month sum to zero.
type Allocation struct {
	DefaultModel
	BudgetMonth   BudgetMonth `json:"-"`
	BudgetMonthID uuid.UUID   `gorm:"index"`
	Envelope      Envelope    `json:"-"`
	EnvelopeID    uuid.UUID   `gorm:"index"`
	Amount        int64
	Source        AllocationSource
	Note          string
}

// EnvelopeMove shifts available money between two envelopes within a
// month. The amount is always positive.
type EnvelopeMove struct {
	DefaultModel
	BudgetMonth    BudgetMonth `json:"-"`
	BudgetMonthID  uuid.UUID   `gorm:"index"`
	FromEnvelope   Envelope    `json:"-"`
	FromEnvelopeID uuid.UUID
	ToEnvelope     Envelope    `json:"-"`
	ToEnvelopeID   uuid.UUID
	Amount         int64
	Note           string
}

var (
	ErrBudgetMonthExists = errors.New("a budget month for this month already exists")
	ErrAllocationEmpty   = errors.New("at least one allocation is required")
	ErrMoveAmount        = errors.New("the move amount must be positive")
	ErrMoveSameEnvelope  = errors.New("the source and destination envelope must be different")
)

// GetOrCreateBudgetMonth returns the budget month row for a month,
// creating it on first use.
func GetOrCreateBudgetMonth(db *gorm.DB, month types.Month) (BudgetMonth, error) {
	var budgetMonth BudgetMonth
	err := db.Where(&BudgetMonth{Month: month}).First(&budgetMonth).Error
	if err == nil {
		return budgetMonth, nil
	}
	if !errors.Is(err, ErrResourceNotFound) {
		return BudgetMonth{}, err
	}

	currency, err := Currency(db)
	if err != nil {
		return BudgetMonth{}, err
	}

	budgetMonth = BudgetMonth{Month: month, Currency: currency}
	err = db.Create(&budgetMonth).Error
	if err != nil {
		return BudgetMonth{}, err
	}

	return budgetMonth, nil
}

// AllocationItem is one envelope assignment of an allocation batch.
type AllocationItem struct {
	EnvelopeID uuid.UUID
	Amount     int64
}

// Allocate writes a batch of allocations for a month and mirrors the
// negative total on the TBB envelope in the same database transaction,
// keeping the sum of all allocations of the month at zero.
func Allocate(db *gorm.DB, month types.Month, items []AllocationItem, note string) ([]Allocation, error) {
	if len(items) == 0 {
		return nil, ErrAllocationEmpty
	}

	tbb, err := TBB(db)
	if err != nil {
		return nil, err
	}

	budgetMonth, err := GetOrCreateBudgetMonth(db, month)
	if err != nil {
		return nil, err
	}

	var total int64
	allocations := make([]Allocation, 0, len(items)+1)
	for _, item := range items {
		total += item.Amount
		allocations = append(allocations, Allocation{
			BudgetMonthID: budgetMonth.ID,
			EnvelopeID:    item.EnvelopeID,
			Amount:        item.Amount,
			Source:        AllocationManual,
			Note:          note,
		})
	}

	if total != 0 {
		allocations = append(allocations, Allocation{
			BudgetMonthID: budgetMonth.ID,
			EnvelopeID:    tbb.ID,
			Amount:        -total,
			Source:        AllocationManual,
			Note:          "TBB offset",
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range allocations {
			// Referenced envelopes must exist
			if err := tx.First(&Envelope{}, allocations[i].EnvelopeID).Error; err != nil {
				return err
			}
			if err := tx.Create(&allocations[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return allocations, nil
}

// Move shifts available money from one envelope to another within a
// month.
func Move(db *gorm.DB, month types.Month, from, to uuid.UUID, amount int64, note string) (EnvelopeMove, error) {
	if amount <= 0 {
		return EnvelopeMove{}, ErrMoveAmount
	}
	if from == to {
		return EnvelopeMove{}, ErrMoveSameEnvelope
	}

	budgetMonth, err := GetOrCreateBudgetMonth(db, month)
	if err != nil {
		return EnvelopeMove{}, err
	}

	move := EnvelopeMove{
		BudgetMonthID:  budgetMonth.ID,
		FromEnvelopeID: from,
		ToEnvelopeID:   to,
		Amount:         amount,
		Note:           note,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Envelope{}, from).Error; err != nil {
			return err
		}
		if err := tx.First(&Envelope{}, to).Error; err != nil {
			return err
		}
		return tx.Create(&move).Error
	})
	if err != nil {
		return EnvelopeMove{}, err
	}

	return move, nil
}
