package v1_test

import (
	"net/http"

	v1 "github.com/Tantanok221/agentbudget/internal/controllers/v1"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestMonthMissingTBB() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/months?month=2026-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusPreconditionFailed)

	var response struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "MISSING_TBB", response.Code)
}

func (suite *TestSuiteStandard) TestMonthRequiresMonth() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/months", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/months?month=notamonth", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

// A funded month: income arrives on TBB, money is allocated to an
// envelope, the summary reflects both and balances to zero overall.
func (suite *TestSuiteStandard) TestMonthSummary() {
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

	// Allocate 800.00 to Groceries
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budget/allocations", v1.AllocationRequest{
		Month: "2026-03",
		Allocations: []v1.AllocationItem{
			{EnvelopeID: groceries.Data.ID, Amount: decimal.NewFromInt(800)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/months?month=2026-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MonthResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	summary := *response.Data
	assert.Equal(suite.T(), "2026-03", summary.Month.String())
	assert.Equal(suite.T(), system.ID, summary.System.TBBEnvelopeID)

	// TBB: 200000 activity, -80000 budgeted via the mirror row
	assert.Equal(suite.T(), int64(200000), summary.TBB.Activity)
	assert.Equal(suite.T(), int64(-80000), summary.TBB.Budgeted)
	assert.Equal(suite.T(), int64(120000), summary.TBB.Available)

	require.Len(suite.T(), summary.Envelopes, 1)
	assert.Equal(suite.T(), "Groceries", summary.Envelopes[0].Name)
	assert.Equal(suite.T(), int64(80000), summary.Envelopes[0].Budgeted)
	assert.Equal(suite.T(), int64(80000), summary.Envelopes[0].Available)

	// Totals include the TBB row, so budgeted nets to zero
	assert.Equal(suite.T(), int64(0), summary.Totals.Budgeted)
	assert.Equal(suite.T(), int64(200000), summary.Totals.Available)
}

func (suite *TestSuiteStandard) TestMonthHiddenEnvelopes() {
	_ = suite.initSystem()
	_ = createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Visible"})
	_ = createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Hidden", Hidden: true})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/months?month=2026-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MonthResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data.Envelopes, 1)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/months?month=2026-03&hidden=true", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data.Envelopes, 2)
}
