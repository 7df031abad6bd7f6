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

func (suite *TestSuiteStandard) TestTransactionsCreateResolvesPayee() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	transaction := createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-05T00:00:00Z"),
		Amount:    decimal.RequireFromString("-52.50"),
		PayeeName: "Grocery Mart",
	})

	assert.Equal(suite.T(), int64(-5250), transaction.Data.Amount)
	require.NotNil(suite.T(), transaction.Data.PayeeID)

	// The payee was created
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/payees?name=Grocery%20Mart", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var payees v1.PayeeListResponse
	test.DecodeResponse(suite.T(), &r, &payees)
	require.Len(suite.T(), payees.Data, 1)
	assert.Equal(suite.T(), *transaction.Data.PayeeID, payees.Data[0].ID)

	// A second transaction with the same payee name reuses it
	second := createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-06T00:00:00Z"),
		Amount:    decimal.RequireFromString("-10.00"),
		PayeeName: "Grocery Mart",
	})
	assert.Equal(suite.T(), *transaction.Data.PayeeID, *second.Data.PayeeID)
}

func (suite *TestSuiteStandard) TestTransactionsCreateSplitSum() {
	_ = suite.initSystem()
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	envelope := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries"})

	// Splits that do not sum to the amount are rejected
	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-05T00:00:00Z"),
		Amount:    decimal.RequireFromString("-52.50"),
		Splits: []v1.SplitEditable{
			{EnvelopeID: envelope.Data.ID, Amount: decimal.RequireFromString("-40.00")},
		},
	}, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTransactionsList() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	other := createTestAccount(suite.T(), v1.AccountEditable{Name: "Savings"})

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-05T00:00:00Z"),
		Amount:    decimal.NewFromInt(-10),
	})
	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: other.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-06T00:00:00Z"),
		Amount:    decimal.NewFromInt(-20),
	})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?account=%s", account.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 1)
	assert.Equal(suite.T(), account.Data.ID, response.Data[0].AccountID)

	// Date window filter
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?fromDate=2026-03-06", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 1)
}

func (suite *TestSuiteStandard) TestTransfers() {
	checking := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	savings := createTestAccount(suite.T(), v1.AccountEditable{Name: "Savings", Type: models.AccountTypeSavings})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions/transfers", v1.TransferEditable{
		FromAccountID: checking.Data.ID,
		ToAccountID:   savings.Data.ID,
		Amount:        decimal.NewFromInt(500),
		PostedAt:      parseTime(suite.T(), "2026-03-10T00:00:00Z"),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.TransferResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	assert.Equal(suite.T(), int64(-50000), response.Data.Outflow.Amount)
	assert.Equal(suite.T(), int64(50000), response.Data.Inflow.Amount)
	assert.Equal(suite.T(), checking.Data.ID, response.Data.Outflow.AccountID)
	assert.Equal(suite.T(), savings.Data.ID, response.Data.Inflow.AccountID)

	// Both sides carry the same transfer group and reference each other
	require.NotNil(suite.T(), response.Data.Outflow.TransferGroupID)
	assert.Equal(suite.T(), *response.Data.Outflow.TransferGroupID, *response.Data.Inflow.TransferGroupID)
	assert.Equal(suite.T(), response.Data.Inflow.ID, *response.Data.Outflow.TransferPeerID)
	assert.Equal(suite.T(), response.Data.Outflow.ID, *response.Data.Inflow.TransferPeerID)
}

func (suite *TestSuiteStandard) TestTransfersSameAccount() {
	checking := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions/transfers", v1.TransferEditable{
		FromAccountID: checking.Data.ID,
		ToAccountID:   checking.Data.ID,
		Amount:        decimal.NewFromInt(500),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTransactionDelete() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	transaction := createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-05T00:00:00Z"),
		Amount:    decimal.NewFromInt(-10),
	})

	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/transactions/%s", transaction.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions/%s", transaction.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
