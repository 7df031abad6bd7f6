package v1_test

import (
	"net/http"

	v1 "github.com/Tantanok221/agentbudget/internal/controllers/v1"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/recurrence"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/Tantanok221/agentbudget/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestOverviewMissingTBB() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/overview?month=2026-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusPreconditionFailed)

	var response struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "MISSING_TBB", response.Code)
}

func (suite *TestSuiteStandard) TestOverview() {
	system := suite.initSystem()
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries"})

	// 2000.00 income on TBB
	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-01T00:00:00Z"),
		Amount:    decimal.NewFromInt(2000),
		Cleared:   models.ClearedCleared,
		Splits: []v1.SplitEditable{
			{EnvelopeID: system.ID, Amount: decimal.NewFromInt(2000)},
		},
	})

	// 25.00 spent on groceries, nothing budgeted: the envelope is
	// overspent
	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-05T00:00:00Z"),
		Amount:    decimal.RequireFromString("-25.00"),
		PayeeName: "Grocery Mart",
		Cleared:   models.ClearedCleared,
		Splits: []v1.SplitEditable{
			{EnvelopeID: groceries.Data.ID, Amount: decimal.RequireFromString("-25.00")},
		},
	})

	// A schedule due on the 1st: unposted, so overdue on the 15th
	_ = createTestSchedule(suite.T(), v1.ScheduleEditable{
		Name:      "Rent",
		AccountID: account.Data.ID,
		Amount:    decimal.NewFromInt(-1500),
		Rule:      recurrence.Rule{Freq: recurrence.FrequencyMonthly, Interval: 1, MonthDay: 1},
		StartDate: types.NewDate(2026, 3, 1),
	})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/overview?month=2026-03&today=2026-03-15", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.OverviewResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)
	overview := *response.Data

	assert.Equal(suite.T(), "2026-03", overview.Month.String())
	assert.Equal(suite.T(), "MYR", overview.Currency)

	// TBB holds the income, Groceries is overspent
	assert.Equal(suite.T(), int64(200000), overview.Budget.ToBeBudgeted.Available)
	require.Len(suite.T(), overview.Budget.OverspentEnvelopes, 1)
	assert.Equal(suite.T(), groceries.Data.ID, overview.Budget.OverspentEnvelopes[0].EnvelopeID)
	assert.Equal(suite.T(), int64(-2500), overview.Budget.OverspentEnvelopes[0].Available)

	assert.False(suite.T(), overview.Flags.Overbudget)
	assert.True(suite.T(), overview.Flags.Overspent)

	// One overdue occurrence from the unposted schedule
	assert.Equal(suite.T(), 1, overview.Schedules.Counts.Overdue)
	assert.Equal(suite.T(), 0, overview.Schedules.Counts.DueSoon)
	require.Len(suite.T(), overview.Schedules.TopDue, 1)
	assert.Equal(suite.T(), "2026-03-01", overview.Schedules.TopDue[0].Date.String())

	// Net worth and cashflow from the two transactions
	assert.Equal(suite.T(), int64(197500), overview.NetWorth.Liquid)
	assert.Equal(suite.T(), int64(197500), overview.NetWorth.Total)
	assert.Equal(suite.T(), int64(200000), overview.Reports.Cashflow.Income)
	assert.Equal(suite.T(), int64(2500), overview.Reports.Cashflow.Expense)

	// Spending rankings
	require.Len(suite.T(), overview.Reports.TopSpending, 1)
	assert.Equal(suite.T(), "Groceries", overview.Reports.TopSpending[0].Name)
	require.Len(suite.T(), overview.Reports.TopSpendingByPayee, 1)
	assert.Equal(suite.T(), "Grocery Mart", overview.Reports.TopSpendingByPayee[0].Name)

	assert.Empty(suite.T(), overview.Warnings)
}
