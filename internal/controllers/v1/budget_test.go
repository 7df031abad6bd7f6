package v1_test

import (
	"net/http"

	v1 "github.com/Tantanok221/agentbudget/internal/controllers/v1"
	"github.com/Tantanok221/agentbudget/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestAllocationsRequireTBB() {
	envelope := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budget/allocations", v1.AllocationRequest{
		Month: "2026-03",
		Allocations: []v1.AllocationItem{
			{EnvelopeID: envelope.Data.ID, Amount: decimal.NewFromInt(100)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusPreconditionFailed)
}

func (suite *TestSuiteStandard) TestAllocationsMirror() {
	system := suite.initSystem()
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries"})
	rent := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Rent"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budget/allocations", v1.AllocationRequest{
		Month: "2026-03",
		Allocations: []v1.AllocationItem{
			{EnvelopeID: groceries.Data.ID, Amount: decimal.NewFromInt(800)},
			{EnvelopeID: rent.Data.ID, Amount: decimal.NewFromInt(1500)},
		},
		Note: "March funding",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.AllocationResponse
	test.DecodeResponse(suite.T(), &r, &response)

	// Two requested rows plus the balancing row on the system envelope
	require.Len(suite.T(), response.Data, 3)

	var sum int64
	for _, allocation := range response.Data {
		sum += allocation.Amount
	}
	assert.Equal(suite.T(), int64(0), sum)

	mirror := response.Data[2]
	assert.Equal(suite.T(), system.ID, mirror.EnvelopeID)
	assert.Equal(suite.T(), int64(-230000), mirror.Amount)
}

func (suite *TestSuiteStandard) TestAllocationsInvalidMonth() {
	_ = suite.initSystem()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budget/allocations", map[string]any{
		"month":       "March 2026",
		"allocations": []map[string]any{},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestMove() {
	_ = suite.initSystem()
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries"})
	dining := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Dining"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budget/moves", v1.MoveRequest{
		Month:          "2026-03",
		FromEnvelopeID: groceries.Data.ID,
		ToEnvelopeID:   dining.Data.ID,
		Amount:         decimal.NewFromInt(20),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.MoveResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), int64(2000), response.Data.Amount)

	// The month summary reflects the move
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/months?month=2026-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var month v1.MonthResponse
	test.DecodeResponse(suite.T(), &r, &month)
	require.Len(suite.T(), month.Data.Envelopes, 2)

	// Envelopes are ordered by group, then name
	assert.Equal(suite.T(), "Dining", month.Data.Envelopes[0].Name)
	assert.Equal(suite.T(), int64(2000), month.Data.Envelopes[0].MovedIn)
	assert.Equal(suite.T(), "Groceries", month.Data.Envelopes[1].Name)
	assert.Equal(suite.T(), int64(2000), month.Data.Envelopes[1].MovedOut)
}

func (suite *TestSuiteStandard) TestMoveSameEnvelope() {
	_ = suite.initSystem()
	groceries := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Groceries"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budget/moves", v1.MoveRequest{
		Month:          "2026-03",
		FromEnvelopeID: groceries.Data.ID,
		ToEnvelopeID:   groceries.Data.ID,
		Amount:         decimal.NewFromInt(20),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
