// Package overview composes the month dashboard from the outputs of
// the other engines. It is pure: all data including the "today"
// reference comes in through Input, nothing is read from the clock or
// the database here.
package overview

import (
	"cmp"
	"time"

	"github.com/Tantanok221/agentbudget/internal/ledger"
	"github.com/Tantanok221/agentbudget/internal/targets"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// topN is how many rows the ranked overview lists carry at most.
const topN = 5

// Account is one account with its balances as of now. Balance splits
// into the cleared part and the part still pending.
type Account struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Balance        int64      `json:"balance"`
	ClearedBalance int64      `json:"clearedBalance"`
	PendingBalance int64      `json:"pendingBalance"`
	LastPostedAt   *time.Time `json:"lastPostedAt"`
}

// Spending is one row of a spending ranking. Spent is the outflow
// magnitude, always positive.
type Spending struct {
	EnvelopeID uuid.UUID `json:"envelopeId"`
	Name       string    `json:"name"`
	Spent      int64     `json:"spent"`
}

// PayeeSpending is one row of the per-payee spending ranking. PayeeID
// is nil for transactions without a payee.
type PayeeSpending struct {
	PayeeID *uuid.UUID `json:"payeeId"`
	Name    string     `json:"name"`
	Spent   int64      `json:"spent"`
}

// DueOccurrence is one unposted schedule occurrence found by the due
// scan.
type DueOccurrence struct {
	OccurrenceID string     `json:"occurrenceId"`
	ScheduleID   uuid.UUID  `json:"scheduleId"`
	Date         types.Date `json:"date"`
	Name         string     `json:"name"`
	Amount       int64      `json:"amount"`
	AccountID    uuid.UUID  `json:"accountId"`
	EnvelopeID   *uuid.UUID `json:"envelopeId"`
}

// Input is everything the composer needs. Summary must be computed
// with hidden envelopes included; Due must hold every unposted
// occurrence from each schedule's start date up to Today plus seven
// days.
type Input struct {
	Today           types.Date
	Summary         ledger.Summary
	Targets         map[uuid.UUID]targets.Target
	Accounts        []Account
	CashflowAmounts []int64
	Spending        []Spending
	PayeeSpending   []PayeeSpending
	Due             []DueOccurrence
	Warnings        []string
}

// Flags are the headline conditions of the month.
type Flags struct {
	Overbudget bool `json:"overbudget"`
	Overspent  bool `json:"overspent"`
	HasPending bool `json:"hasPending"`
}

// EnvelopeBalance is an envelope with its available balance.
type EnvelopeBalance struct {
	EnvelopeID uuid.UUID `json:"envelopeId"`
	Name       string    `json:"name"`
	Available  int64     `json:"available"`
}

// Budget is the budget section of the overview.
type Budget struct {
	ToBeBudgeted         ledger.TBB        `json:"toBeBudgeted"`
	OverspentEnvelopes   []EnvelopeBalance `json:"overspentEnvelopes"`
	TopNegativeEnvelopes []EnvelopeBalance `json:"topNegativeEnvelopes"`
}

// Underfunded is one envelope's gap towards its target.
type Underfunded struct {
	EnvelopeID  uuid.UUID      `json:"envelopeId"`
	Name        string         `json:"name"`
	Target      targets.Target `json:"target"`
	Budgeted    int64          `json:"budgeted"`
	Underfunded int64          `json:"underfunded"`
}

// Goals is the goals section of the overview.
type Goals struct {
	UnderfundedTotal int64         `json:"underfundedTotal"`
	TopUnderfunded   []Underfunded `json:"topUnderfunded"`
}

// Window is the date range the schedule digest covers.
type Window struct {
	From types.Date `json:"from"`
	To   types.Date `json:"to"`
}

// ScheduleCounts splits the unposted occurrences into those already
// overdue and those due within the window.
type ScheduleCounts struct {
	Overdue int `json:"overdue"`
	DueSoon int `json:"dueSoon"`
}

// Schedules is the schedule digest of the overview.
type Schedules struct {
	Window Window          `json:"window"`
	Counts ScheduleCounts  `json:"counts"`
	TopDue []DueOccurrence `json:"topDue"`
}

// NetWorth splits account balances into spendable money and tracked
// assets.
type NetWorth struct {
	Liquid   int64 `json:"liquid"`
	Tracking int64 `json:"tracking"`
	Total    int64 `json:"total"`
}

// Cashflow sums the month's inflows and outflows.
type Cashflow struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

// Reports is the reporting section of the overview.
type Reports struct {
	Cashflow           Cashflow        `json:"cashflow"`
	TopSpending        []Spending      `json:"topSpending"`
	TopSpendingByPayee []PayeeSpending `json:"topSpendingByPayee"`
}

// Overview is the composed month dashboard.
type Overview struct {
	Month     types.Month `json:"month"`
	Currency  string      `json:"currency"`
	Flags     Flags       `json:"flags"`
	Budget    Budget      `json:"budget"`
	Goals     Goals       `json:"goals"`
	Schedules Schedules   `json:"schedules"`
	NetWorth  NetWorth    `json:"netWorth"`
	Accounts  []Account   `json:"accounts"`
	Reports   Reports     `json:"reports"`
	Warnings  []string    `json:"warnings"`
}

// liquidTypes are the account types whose balances count as spendable.
var liquidTypes = []string{"checking", "savings", "cash"}

// Compose builds the overview. All ranked lists are sorted and cut to
// the top five rows; the underlying counts and totals always cover the
// full data.
func Compose(input Input) Overview {
	summary := input.Summary

	overview := Overview{
		Month:    summary.Month,
		Currency: summary.Currency,
		Accounts: input.Accounts,
		Warnings: append([]string{}, input.Warnings...),
	}

	overview.Budget = composeBudget(summary)
	overview.Goals = composeGoals(summary, input.Targets)
	overview.Schedules = composeSchedules(input.Today, input.Due)
	overview.NetWorth = composeNetWorth(input.Accounts)
	overview.Reports = composeReports(input)

	overview.Flags = Flags{
		Overbudget: summary.TBB.Available < 0,
		Overspent:  len(overview.Budget.OverspentEnvelopes) > 0,
		HasPending: slices.ContainsFunc(input.Accounts, func(a Account) bool {
			return a.PendingBalance != 0
		}),
	}

	return overview
}

func composeBudget(summary ledger.Summary) Budget {
	budget := Budget{
		ToBeBudgeted:         summary.TBB,
		OverspentEnvelopes:   []EnvelopeBalance{},
		TopNegativeEnvelopes: []EnvelopeBalance{},
	}

	byAvailable := make([]EnvelopeBalance, 0, len(summary.Envelopes))
	for _, e := range summary.Envelopes {
		byAvailable = append(byAvailable, EnvelopeBalance{
			EnvelopeID: e.EnvelopeID,
			Name:       e.Name,
			Available:  e.Available,
		})
	}
	slices.SortStableFunc(byAvailable, func(a, b EnvelopeBalance) int {
		return cmp.Compare(a.Available, b.Available)
	})

	for _, e := range byAvailable {
		if e.Available < 0 {
			budget.OverspentEnvelopes = append(budget.OverspentEnvelopes, e)
		}
	}

	// The top negative list always names the tightest budgets, even
	// when none of them is actually overspent.
	budget.TopNegativeEnvelopes = truncate(byAvailable)

	return budget
}

func composeGoals(summary ledger.Summary, byEnvelope map[uuid.UUID]targets.Target) Goals {
	goals := Goals{TopUnderfunded: []Underfunded{}}

	for _, e := range summary.Envelopes {
		target, ok := byEnvelope[e.EnvelopeID]
		if !ok {
			continue
		}

		underfunded := targets.Underfunded(summary.Month, target, e.Budgeted, e.AvailableStart)
		goals.UnderfundedTotal += underfunded
		goals.TopUnderfunded = append(goals.TopUnderfunded, Underfunded{
			EnvelopeID:  e.EnvelopeID,
			Name:        e.Name,
			Target:      target,
			Budgeted:    e.Budgeted,
			Underfunded: underfunded,
		})
	}

	slices.SortStableFunc(goals.TopUnderfunded, func(a, b Underfunded) int {
		return cmp.Compare(b.Underfunded, a.Underfunded)
	})
	goals.TopUnderfunded = truncate(goals.TopUnderfunded)

	return goals
}

func composeSchedules(today types.Date, due []DueOccurrence) Schedules {
	schedules := Schedules{
		Window: Window{From: today, To: today.AddDays(7)},
		TopDue: []DueOccurrence{},
	}

	sorted := append([]DueOccurrence{}, due...)
	slices.SortStableFunc(sorted, func(a, b DueOccurrence) int {
		return a.Date.Compare(b.Date)
	})

	for _, occurrence := range sorted {
		if occurrence.Date.Before(today) {
			schedules.Counts.Overdue++
		} else {
			schedules.Counts.DueSoon++
		}
	}
	schedules.TopDue = truncate(sorted)

	return schedules
}

func composeNetWorth(accounts []Account) NetWorth {
	var netWorth NetWorth
	for _, a := range accounts {
		if slices.Contains(liquidTypes, a.Type) {
			netWorth.Liquid += a.Balance
		} else {
			netWorth.Tracking += a.Balance
		}
	}
	netWorth.Total = netWorth.Liquid + netWorth.Tracking
	return netWorth
}

func composeReports(input Input) Reports {
	reports := Reports{
		TopSpending:        []Spending{},
		TopSpendingByPayee: []PayeeSpending{},
	}

	for _, amount := range input.CashflowAmounts {
		if amount > 0 {
			reports.Cashflow.Income += amount
		} else {
			reports.Cashflow.Expense += -amount
		}
	}
	reports.Cashflow.Net = reports.Cashflow.Income - reports.Cashflow.Expense

	spending := append([]Spending{}, input.Spending...)
	slices.SortStableFunc(spending, func(a, b Spending) int {
		return cmp.Compare(b.Spent, a.Spent)
	})
	reports.TopSpending = truncate(spending)

	payeeSpending := append([]PayeeSpending{}, input.PayeeSpending...)
	slices.SortStableFunc(payeeSpending, func(a, b PayeeSpending) int {
		return cmp.Compare(b.Spent, a.Spent)
	})
	reports.TopSpendingByPayee = truncate(payeeSpending)

	return reports
}

func truncate[T any](s []T) []T {
	if len(s) > topN {
		return s[:topN]
	}
	return s
}
