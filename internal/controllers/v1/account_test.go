package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/Tantanok221/agentbudget/internal/controllers/v1"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestAccountsCreateInvalidType() {
	_ = createTestAccount(suite.T(), v1.AccountEditable{Name: "Broker", Type: "brokerage"}, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestAccountBalances() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-01T00:00:00Z"),
		Amount:    decimal.NewFromInt(1000),
		Cleared:   models.ClearedCleared,
	})
	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-05T00:00:00Z"),
		Amount:    decimal.NewFromInt(-120),
		Cleared:   models.ClearedPending,
	})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/accounts/%s", account.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.AccountResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), int64(88000), response.Data.Balance)
	assert.Equal(suite.T(), int64(100000), response.Data.ClearedBalance)
	assert.Equal(suite.T(), int64(-12000), response.Data.PendingBalance)
}

func (suite *TestSuiteStandard) TestAccountReconcile() {
	system := suite.initSystem()
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-01T00:00:00Z"),
		Amount:    decimal.NewFromInt(1000),
		Cleared:   models.ClearedCleared,
	})

	// Preview against a statement of 980.00: delta -20.00
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/accounts/%s/reconcile?statementBalance=980.00", account.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var preview v1.ReconcilePreviewResponse
	test.DecodeResponse(suite.T(), &r, &preview)
	assert.Equal(suite.T(), int64(100000), preview.Data.ClearedBalance)
	assert.Equal(suite.T(), int64(-2000), preview.Data.Delta)

	// Reconcile writes the adjustment on the system envelope
	r = test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/accounts/%s/reconcile", account.Data.ID), v1.ReconcileRequest{
		StatementBalance: decimal.RequireFromString("980.00"),
		Date:             parseTime(suite.T(), "2026-03-31T00:00:00Z"),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var result v1.ReconcileResponse
	test.DecodeResponse(suite.T(), &r, &result)
	require.NotNil(suite.T(), result.Data.Adjustment)
	assert.Equal(suite.T(), int64(-2000), result.Data.Adjustment.Amount)
	assert.Equal(suite.T(), models.ClearedReconciled, result.Data.Adjustment.Cleared)
	require.Len(suite.T(), result.Data.Adjustment.Splits, 1)
	assert.Equal(suite.T(), system.ID, result.Data.Adjustment.Splits[0].EnvelopeID)

	// The cleared balance now matches the statement
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/accounts/%s", account.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.AccountResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), int64(98000), response.Data.ClearedBalance)
}

func (suite *TestSuiteStandard) TestAccountReconcileNoDelta() {
	_ = suite.initSystem()
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-01T00:00:00Z"),
		Amount:    decimal.NewFromInt(1000),
		Cleared:   models.ClearedCleared,
	})

	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/accounts/%s/reconcile", account.Data.ID), v1.ReconcileRequest{
		StatementBalance: decimal.NewFromInt(1000),
		Date:             parseTime(suite.T(), "2026-03-31T00:00:00Z"),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var result v1.ReconcileResponse
	test.DecodeResponse(suite.T(), &r, &result)
	assert.Nil(suite.T(), result.Data.Adjustment)
	assert.Equal(suite.T(), int64(0), result.Data.Delta)
}
