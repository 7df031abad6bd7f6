package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/Tantanok221/agentbudget/internal/controllers/v1"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/recurrence"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/Tantanok221/agentbudget/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func createTestSchedule(t *testing.T, editable v1.ScheduleEditable, expectedStatus ...int) v1.ScheduleResponse {
	if editable.Name == "" {
		editable.Name = t.Name()
	}
	if editable.Rule.Freq == "" {
		editable.Rule = recurrence.Rule{Freq: recurrence.FrequencyMonthly, Interval: 1, MonthDay: 1}
	}
	if editable.StartDate.IsZero() {
		editable.StartDate = types.NewDate(2026, 1, 1)
	}
	if editable.Amount.IsZero() {
		editable.Amount = decimal.NewFromInt(-25)
	}

	body := []v1.ScheduleEditable{editable}

	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/schedules", body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.ScheduleCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.ScheduleResponse{}
}

func (suite *TestSuiteStandard) TestSchedulesCreate() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	envelope := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Rent"})

	schedule := createTestSchedule(suite.T(), v1.ScheduleEditable{
		Name:       "Rent",
		AccountID:  account.Data.ID,
		EnvelopeID: &envelope.Data.ID,
		Amount:     decimal.NewFromInt(-1500),
		Rule:       recurrence.Rule{Freq: recurrence.FrequencyMonthly, Interval: 1, MonthDay: 1},
		StartDate:  types.NewDate(2026, 1, 1),
	})

	assert.Equal(suite.T(), "Rent", schedule.Data.Name)
	assert.Equal(suite.T(), int64(-150000), schedule.Data.Amount)
	assert.Equal(suite.T(), recurrence.FrequencyMonthly, schedule.Data.Rule.Freq)
}

func (suite *TestSuiteStandard) TestSchedulesCreateInvalidRule() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/schedules", []v1.ScheduleEditable{{
		Name:      "Broken",
		AccountID: account.Data.ID,
		Amount:    decimal.NewFromInt(-10),
		Rule:      recurrence.Rule{Freq: "fortnightly", Interval: 1},
		StartDate: types.NewDate(2026, 1, 1),
	}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestSchedulesDueAndPost() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})
	envelope := createTestEnvelope(suite.T(), v1.EnvelopeEditable{Name: "Rent"})

	schedule := createTestSchedule(suite.T(), v1.ScheduleEditable{
		Name:       "Rent",
		AccountID:  account.Data.ID,
		EnvelopeID: &envelope.Data.ID,
		Amount:     decimal.NewFromInt(-1500),
		Rule:       recurrence.Rule{Freq: recurrence.FrequencyMonthly, Interval: 1, MonthDay: 1},
		StartDate:  types.NewDate(2026, 3, 1),
	})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/schedules/due?from=2026-03-01&to=2026-03-31", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var due v1.DueResponse
	test.DecodeResponse(suite.T(), &r, &due)
	require.Len(suite.T(), due.Data, 1)
	assert.Equal(suite.T(), "2026-03-01", due.Data[0].Date.String())
	assert.Equal(suite.T(), schedule.Data.ID, due.Data[0].ScheduleID)
	assert.Empty(suite.T(), due.Warnings)

	// Post the occurrence
	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/schedules/post", v1.PostOccurrenceRequest{
		OccurrenceID: due.Data[0].OccurrenceID,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var posted v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &posted)
	assert.Equal(suite.T(), int64(-150000), posted.Data.Amount)
	assert.Equal(suite.T(), models.ClearedPending, posted.Data.Cleared)
	require.Len(suite.T(), posted.Data.Splits, 1)
	assert.Equal(suite.T(), envelope.Data.ID, posted.Data.Splits[0].EnvelopeID)

	// A second post of the same occurrence is a conflict
	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/schedules/post", v1.PostOccurrenceRequest{
		OccurrenceID: due.Data[0].OccurrenceID,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)

	// The posted occurrence no longer shows up as due
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/schedules/due?from=2026-03-01&to=2026-03-31", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &due)
	assert.Empty(suite.T(), due.Data)
}

func (suite *TestSuiteStandard) TestSchedulesPostInvalidID() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/schedules/post", v1.PostOccurrenceRequest{
		OccurrenceID: "not-an-occurrence",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/schedules/post", v1.PostOccurrenceRequest{
		OccurrenceID: fmt.Sprintf("occ_%s_2026-03-01", uuid.New()),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestScheduleUpdateMergedValidation() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	schedule := createTestSchedule(suite.T(), v1.ScheduleEditable{
		Name:      "Rent",
		AccountID: account.Data.ID,
		StartDate: types.NewDate(2026, 3, 1),
	})

	// An end date before the unchanged start date is rejected
	r := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/schedules/%s", schedule.Data.ID), map[string]any{
		"endDate": "2026-02-01",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	// A valid end date is accepted
	r = test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/schedules/%s", schedule.Data.ID), map[string]any{
		"endDate": "2026-12-31",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.ScheduleResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	require.NotNil(suite.T(), updated.Data.EndDate)
	assert.Equal(suite.T(), "2026-12-31", updated.Data.EndDate.String())
}

func (suite *TestSuiteStandard) TestSchedulesListCorruptRule() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	createTestSchedule(suite.T(), v1.ScheduleEditable{
		Name:      "Gym",
		AccountID: account.Data.ID,
		StartDate: types.NewDate(2026, 3, 1),
	})
	broken := createTestSchedule(suite.T(), v1.ScheduleEditable{
		Name:      "Internet",
		AccountID: account.Data.ID,
		StartDate: types.NewDate(2026, 3, 1),
	})

	// Corrupt the stored rule behind the model's back
	err := models.DB.Exec("UPDATE schedules SET rule_json = ? WHERE id = ?", `{"freq":"fortnightly"}`, broken.Data.ID).Error
	require.Nil(suite.T(), err)

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/schedules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.ScheduleListResponse
	test.DecodeResponse(suite.T(), &r, &list)

	// The corrupt schedule is skipped with a warning, the rest are listed
	require.Len(suite.T(), list.Data, 1)
	assert.Equal(suite.T(), "Gym", list.Data[0].Name)
	require.Len(suite.T(), list.Warnings, 1)
	assert.Contains(suite.T(), list.Warnings[0], "Internet")
}

func (suite *TestSuiteStandard) TestScheduleArchive() {
	account := createTestAccount(suite.T(), v1.AccountEditable{Name: "Checking"})

	schedule := createTestSchedule(suite.T(), v1.ScheduleEditable{
		Name:      "Gym",
		AccountID: account.Data.ID,
		StartDate: types.NewDate(2026, 3, 1),
	})

	r := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/schedules/%s", schedule.Data.ID), map[string]any{
		"archived": true,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// Archived schedules produce no due occurrences
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/schedules/due?from=2026-03-01&to=2026-03-31", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var due v1.DueResponse
	test.DecodeResponse(suite.T(), &r, &due)
	assert.Empty(suite.T(), due.Data)

	// And are hidden from the default list
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/schedules", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.ScheduleListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	assert.Empty(suite.T(), list.Data)
}
