// Package targets computes how underfunded an envelope is relative to
// its goal. All amounts are integer minor units.
package targets

import (
	"errors"

	"github.com/Tantanok221/agentbudget/internal/types"
)

// Type is the semantics of a target.
type Type string

const (
	// TypeMonthly wants a fixed amount budgeted every month.
	TypeMonthly Type = "monthly"

	// TypeNeededForSpending wants a fixed amount available for spending
	// every month, so rollover counts towards it.
	TypeNeededForSpending Type = "needed_for_spending"

	// TypeByDate wants a total amount saved by a month, spread evenly
	// over the months that remain.
	TypeByDate Type = "by_date"
)

var (
	ErrTargetType   = errors.New("the target type must be one of monthly, needed_for_spending, by_date")
	ErrTargetAmount = errors.New("the target amount must be positive")
	ErrTargetMonths = errors.New("the target month must not be before the start month")
)

// Target is an envelope's goal. Amount is used by the monthly and
// needed_for_spending types, the remaining fields by by_date.
type Target struct {
	Type         Type        `json:"type"`
	Amount       int64       `json:"amount,omitempty"`
	TargetAmount int64       `json:"targetAmount,omitempty"`
	TargetMonth  types.Month `json:"targetMonth,omitempty"`
	StartMonth   types.Month `json:"startMonth,omitempty"`
}

// Validate checks the target for consistency.
func (t Target) Validate() error {
	switch t.Type {
	case TypeMonthly, TypeNeededForSpending:
		if t.Amount <= 0 {
			return ErrTargetAmount
		}

	case TypeByDate:
		if t.TargetAmount <= 0 {
			return ErrTargetAmount
		}
		if t.TargetMonth.Before(t.StartMonth) {
			return ErrTargetMonths
		}

	default:
		return ErrTargetType
	}

	return nil
}

// Underfunded returns how much is still missing to meet the target in
// the given month. The result is never negative; a fully funded target
// reports zero.
//
// For by_date targets the remaining amount is spread evenly over the
// months up to and including the target month. The inclusive month
// count and ceiling division guarantee the goal is fully funded by the
// target month even when the remainder does not divide evenly.
func Underfunded(month types.Month, target Target, budgetedThisMonth, availableStart int64) int64 {
	switch target.Type {
	case TypeMonthly:
		return max(0, target.Amount-budgetedThisMonth)

	case TypeNeededForSpending:
		return max(0, target.Amount-(availableStart+budgetedThisMonth))

	case TypeByDate:
		if month.Before(target.StartMonth) || month.After(target.TargetMonth) {
			return 0
		}

		remaining := max(0, target.TargetAmount-availableStart)
		monthsRemaining := int64(month.MonthsUntilInclusive(target.TargetMonth))
		return (remaining + monthsRemaining - 1) / monthsRemaining
	}

	return 0
}
