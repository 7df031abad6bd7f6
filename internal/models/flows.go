package models

import (
	"time"

	"github.com/Tantanok221/agentbudget/internal/ledger"
	"github.com/Tantanok221/agentbudget/internal/overview"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sumRow is the shape of all flow aggregation queries.
type sumRow struct {
	Key uuid.UUID
	Sum int64
}

func sumMap(rows []sumRow) map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Sum
	}
	return out
}

// activitySums returns the per-envelope split sums for transactions
// posted in [from, to).
func activitySums(db *gorm.DB, from, to time.Time) (map[uuid.UUID]int64, error) {
	var rows []sumRow
	q := db.Model(&TransactionSplit{}).
		Select("transaction_splits.envelope_id AS key, SUM(transaction_splits.amount) AS sum").
		Joins("JOIN transactions ON transactions.id = transaction_splits.transaction_id").
		Group("transaction_splits.envelope_id")

	if !from.IsZero() {
		q = q.Where("transactions.posted_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("transactions.posted_at < ?", to)
	}

	err := q.Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return sumMap(rows), nil
}

// allocationSums returns the per-envelope allocation sums for budget
// months matching the condition.
func allocationSums(db *gorm.DB, condition string, month types.Month) (map[uuid.UUID]int64, error) {
	var rows []sumRow
	err := db.Model(&Allocation{}).
		Select("allocations.envelope_id AS key, SUM(allocations.amount) AS sum").
		Joins("JOIN budget_months ON budget_months.id = allocations.budget_month_id").
		Where("budget_months.month "+condition+" ?", month).
		Group("allocations.envelope_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return sumMap(rows), nil
}

// moveSums returns the per-envelope move sums over the given direction
// column for budget months matching the condition.
func moveSums(db *gorm.DB, column, condition string, month types.Month) (map[uuid.UUID]int64, error) {
	var rows []sumRow
	err := db.Model(&EnvelopeMove{}).
		Select("envelope_moves."+column+" AS key, SUM(envelope_moves.amount) AS sum").
		Joins("JOIN budget_months ON budget_months.id = envelope_moves.budget_month_id").
		Where("budget_months.month "+condition+" ?", month).
		Group("envelope_moves." + column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return sumMap(rows), nil
}

// EnvelopeFlows aggregates all budgeting, activity and move sums for a
// month, split into prior history and the month itself.
func EnvelopeFlows(db *gorm.DB, month types.Month) (ledger.Flows, error) {
	var flows ledger.Flows
	var err error

	if flows.PriorActivity, err = activitySums(db, time.Time{}, month.Start()); err != nil {
		return ledger.Flows{}, err
	}
	if flows.CurrentActivity, err = activitySums(db, month.Start(), month.End()); err != nil {
		return ledger.Flows{}, err
	}
	if flows.PriorBudgeted, err = allocationSums(db, "<", month); err != nil {
		return ledger.Flows{}, err
	}
	if flows.CurrentBudgeted, err = allocationSums(db, "=", month); err != nil {
		return ledger.Flows{}, err
	}
	if flows.PriorMovedIn, err = moveSums(db, "to_envelope_id", "<", month); err != nil {
		return ledger.Flows{}, err
	}
	if flows.CurrentMovedIn, err = moveSums(db, "to_envelope_id", "=", month); err != nil {
		return ledger.Flows{}, err
	}
	if flows.PriorMovedOut, err = moveSums(db, "from_envelope_id", "<", month); err != nil {
		return ledger.Flows{}, err
	}
	if flows.CurrentMovedOut, err = moveSums(db, "from_envelope_id", "=", month); err != nil {
		return ledger.Flows{}, err
	}

	return flows, nil
}

// MonthSummary computes the availability of all envelopes for a month
// from the persisted flows.
func MonthSummary(db *gorm.DB, month types.Month, includeHidden bool) (ledger.Summary, error) {
	envelopes, err := LedgerEnvelopes(db)
	if err != nil {
		return ledger.Summary{}, err
	}

	flows, err := EnvelopeFlows(db, month)
	if err != nil {
		return ledger.Summary{}, err
	}

	currency, err := Currency(db)
	if err != nil {
		return ledger.Summary{}, err
	}

	return ledger.Summarize(month, currency, envelopes, flows, includeHidden)
}

// AccountOverview returns all accounts with their balances, ordered by
// name.
func AccountOverview(db *gorm.DB) ([]overview.Account, error) {
	var accounts []Account
	err := db.Order("accounts.name ASC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	out := make([]overview.Account, 0, len(accounts))
	for _, account := range accounts {
		balances, err := account.Balances(db)
		if err != nil {
			return nil, err
		}

		out = append(out, overview.Account{
			ID:             account.ID,
			Name:           account.Name,
			Type:           string(account.Type),
			Balance:        balances.Balance,
			ClearedBalance: balances.ClearedBalance,
			PendingBalance: balances.PendingBalance,
			LastPostedAt:   balances.LastPostedAt,
		})
	}

	return out, nil
}

// CashflowAmounts returns the amounts of all transactions posted in the
// month on liquid accounts, excluding transfers.
func CashflowAmounts(db *gorm.DB, month types.Month) ([]int64, error) {
	var amounts []int64
	err := db.Model(&Transaction{}).
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("transactions.posted_at >= ? AND transactions.posted_at < ?", month.Start(), month.End()).
		Where("transactions.transfer_group_id IS NULL").
		Where("accounts.type IN ?", LiquidAccountTypes).
		Pluck("transactions.amount", &amounts).Error
	if err != nil {
		return nil, err
	}

	return amounts, nil
}

// SpendingByEnvelope sums the month's outflows per envelope. System
// envelopes are left out, spending is reported as positive magnitude.
func SpendingByEnvelope(db *gorm.DB, month types.Month) ([]overview.Spending, error) {
	var rows []struct {
		Key  uuid.UUID
		Name string
		Sum  int64
	}
	err := db.Model(&TransactionSplit{}).
		Select("transaction_splits.envelope_id AS key, envelopes.name AS name, SUM(transaction_splits.amount) AS sum").
		Joins("JOIN transactions ON transactions.id = transaction_splits.transaction_id").
		Joins("JOIN envelopes ON envelopes.id = transaction_splits.envelope_id").
		Where("transactions.posted_at >= ? AND transactions.posted_at < ?", month.Start(), month.End()).
		Where("envelopes.system = ?", false).
		Group("transaction_splits.envelope_id, envelopes.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := []overview.Spending{}
	for _, row := range rows {
		if row.Sum >= 0 {
			continue
		}
		out = append(out, overview.Spending{
			EnvelopeID: row.Key,
			Name:       row.Name,
			Spent:      -row.Sum,
		})
	}

	return out, nil
}

// SpendingByPayee sums the month's outflows per payee on liquid
// accounts, excluding transfers. Transactions without a payee are
// grouped under "(no payee)".
func SpendingByPayee(db *gorm.DB, month types.Month) ([]overview.PayeeSpending, error) {
	var rows []struct {
		PayeeID   *uuid.UUID
		PayeeName string
		Sum       int64
	}
	err := db.Model(&Transaction{}).
		Select("transactions.payee_id AS payee_id, transactions.payee_name AS payee_name, SUM(transactions.amount) AS sum").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("transactions.posted_at >= ? AND transactions.posted_at < ?", month.Start(), month.End()).
		Where("transactions.transfer_group_id IS NULL").
		Where("accounts.type IN ?", LiquidAccountTypes).
		Group("transactions.payee_id, transactions.payee_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := []overview.PayeeSpending{}
	for _, row := range rows {
		if row.Sum >= 0 {
			continue
		}

		name := row.PayeeName
		if name == "" {
			name = "(no payee)"
		}
		out = append(out, overview.PayeeSpending{
			PayeeID: row.PayeeID,
			Name:    name,
			Spent:   -row.Sum,
		})
	}

	return out, nil
}

// scheduleScanStart is the lower bound of the overview's schedule scan.
// Scanning from here means every unposted occurrence since a schedule's
// start date counts as overdue.
var scheduleScanStart = types.NewDate(1970, time.January, 1)

// BuildOverview gathers all inputs for the month dashboard and composes
// it. The today reference is explicit so callers and tests control it.
func BuildOverview(db *gorm.DB, month types.Month, today types.Date) (overview.Overview, error) {
	summary, err := MonthSummary(db, month, true)
	if err != nil {
		return overview.Overview{}, err
	}

	activeTargets, err := ActiveTargets(db)
	if err != nil {
		return overview.Overview{}, err
	}

	accounts, err := AccountOverview(db)
	if err != nil {
		return overview.Overview{}, err
	}

	amounts, err := CashflowAmounts(db, month)
	if err != nil {
		return overview.Overview{}, err
	}

	spending, err := SpendingByEnvelope(db, month)
	if err != nil {
		return overview.Overview{}, err
	}

	payeeSpending, err := SpendingByPayee(db, month)
	if err != nil {
		return overview.Overview{}, err
	}

	due, warnings, err := DueOccurrences(db, scheduleScanStart, today.AddDays(7))
	if err != nil {
		return overview.Overview{}, err
	}

	dueInput := make([]overview.DueOccurrence, 0, len(due))
	for _, occurrence := range due {
		dueInput = append(dueInput, overview.DueOccurrence{
			OccurrenceID: occurrence.OccurrenceID,
			ScheduleID:   occurrence.ScheduleID,
			Date:         occurrence.Date,
			Name:         occurrence.Name,
			Amount:       occurrence.Amount,
			AccountID:    occurrence.AccountID,
			EnvelopeID:   occurrence.EnvelopeID,
		})
	}

	input := overview.Input{
		Today:           today,
		Summary:         summary,
		Targets:         activeTargets,
		Accounts:        accounts,
		CashflowAmounts: amounts,
		Spending:        spending,
		PayeeSpending:   payeeSpending,
		Due:             dueInput,
		Warnings:        append(summary.Warnings, warnings...),
	}

	return overview.Compose(input), nil
}
