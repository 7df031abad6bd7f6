package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/Tantanok221/agentbudget/internal/controllers/v1"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPayee(t *testing.T, editable v1.PayeeEditable, expectedStatus ...int) v1.PayeeResponse {
	if editable.Name == "" {
		editable.Name = t.Name()
	}

	body := []v1.PayeeEditable{editable}

	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/payees", body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.PayeeCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.PayeeResponse{}
}

func createTestMatchRule(t *testing.T, editable v1.MatchRuleEditable, expectedStatus ...int) v1.MatchRuleResponse {
	body := []v1.MatchRuleEditable{editable}

	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/match-rules", body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.MatchRuleCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.MatchRuleResponse{}
}

func (suite *TestSuiteStandard) TestPayeesCreateAndGet() {
	payee := createTestPayee(suite.T(), v1.PayeeEditable{Name: "Grocery Mart", Note: "Supermarket"})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/payees/%s", payee.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.PayeeResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "Grocery Mart", response.Data.Name)
	assert.Equal(suite.T(), "Supermarket", response.Data.Note)
}

func (suite *TestSuiteStandard) TestPayeesDuplicateName() {
	_ = createTestPayee(suite.T(), v1.PayeeEditable{Name: "Landlord"})
	_ = createTestPayee(suite.T(), v1.PayeeEditable{Name: "Landlord"}, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestMatchRulesCreate() {
	payee := createTestPayee(suite.T(), v1.PayeeEditable{Name: "Grocery Mart"})

	rule := createTestMatchRule(suite.T(), v1.MatchRuleEditable{
		Priority: 10,
		Match:    models.MatchGlob,
		Pattern:  "grocery*",
		PayeeID:  payee.Data.ID,
	})
	assert.Equal(suite.T(), models.MatchGlob, rule.Data.Match)

	// A rule for an unknown payee is rejected
	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{
		Match:   models.MatchExact,
		Pattern: "whatever",
		PayeeID: uuid.New(),
	}, http.StatusNotFound)
}

// Transactions created through the API run through the match rules:
// the raw payee name maps to the rule's payee instead of creating a
// new one.
func (suite *TestSuiteStandard) TestMatchRulesApplyOnTransactionCreate() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	payee := createTestPayee(suite.T(), v1.PayeeEditable{Name: "Grocery Mart"})

	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{
		Priority: 10,
		Match:    models.MatchContains,
		Pattern:  "grocery",
		PayeeID:  payee.Data.ID,
	})

	transaction := createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: account.Data.ID,
		PostedAt:  parseTime(suite.T(), "2026-03-05T00:00:00Z"),
		Amount:    decimal.RequireFromString("-12.00"),
		PayeeName: "THE GROCERY MART DOWNTOWN",
	})

	require.NotNil(suite.T(), transaction.Data.PayeeID)
	assert.Equal(suite.T(), payee.Data.ID, *transaction.Data.PayeeID)
}

func (suite *TestSuiteStandard) TestMatchRulesList() {
	payee := createTestPayee(suite.T(), v1.PayeeEditable{Name: "Grocery Mart"})

	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 20, Match: models.MatchExact, Pattern: "b", PayeeID: payee.Data.ID})
	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{Priority: 5, Match: models.MatchExact, Pattern: "a", PayeeID: payee.Data.ID})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/match-rules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MatchRuleListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 2)

	// Ascending by priority
	assert.Equal(suite.T(), "a", response.Data[0].Pattern)
	assert.Equal(suite.T(), "b", response.Data[1].Pattern)
}

func (suite *TestSuiteStandard) TestPayeeDeleteCascadesRules() {
	payee := createTestPayee(suite.T(), v1.PayeeEditable{Name: "Grocery Mart"})
	_ = createTestMatchRule(suite.T(), v1.MatchRuleEditable{Match: models.MatchExact, Pattern: "x", PayeeID: payee.Data.ID})

	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/payees/%s", payee.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/match-rules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MatchRuleListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Empty(suite.T(), response.Data)
}
