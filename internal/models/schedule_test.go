package models_test

import (
	"fmt"

	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) TestScheduleValidation() {
	account := suite.createTestAccount(models.Account{})

	err := models.DB.Create(&models.Schedule{
		Name:      "  ",
		AccountID: account.ID,
		Amount:    -2500,
		RuleJSON:  `{"freq":"monthly","interval":1,"monthDay":1}`,
		StartDate: types.NewDate(2026, 1, 1),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrScheduleNameEmpty)

	err = models.DB.Create(&models.Schedule{
		Name:      "Rent",
		AccountID: account.ID,
		Amount:    0,
		RuleJSON:  `{"freq":"monthly","interval":1,"monthDay":1}`,
		StartDate: types.NewDate(2026, 1, 1),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrScheduleAmountZero)

	end := types.NewDate(2025, 12, 1)
	err = models.DB.Create(&models.Schedule{
		Name:      "Rent",
		AccountID: account.ID,
		Amount:    -2500,
		RuleJSON:  `{"freq":"monthly","interval":1,"monthDay":1}`,
		StartDate: types.NewDate(2026, 1, 1),
		EndDate:   &end,
	}).Error
	suite.Assert().ErrorIs(err, models.ErrEndBeforeStart)

	// A rule the expander would reject must not be stored.
	err = models.DB.Create(&models.Schedule{
		Name:      "Rent",
		AccountID: account.ID,
		Amount:    -2500,
		RuleJSON:  `{"freq":"hourly","interval":1}`,
		StartDate: types.NewDate(2026, 1, 1),
	}).Error
	suite.Assert().NotNil(err)
}

func (suite *TestSuiteStandard) TestOccurrenceIDRoundTrip() {
	schedule := suite.createTestSchedule(models.Schedule{
		AccountID: suite.createTestAccount(models.Account{}).ID,
	})

	date := types.NewDate(2026, 3, 2)
	occurrenceID := schedule.OccurrenceID(date)
	suite.Assert().Equal(fmt.Sprintf("occ_%s_2026-03-02", schedule.ID), occurrenceID)

	id, parsed, err := models.ParseOccurrenceID(occurrenceID)
	suite.Require().Nil(err)
	suite.Assert().Equal(schedule.ID, id)
	suite.Assert().True(parsed.Equal(date))
}

func (suite *TestSuiteStandard) TestParseOccurrenceIDInvalid() {
	tests := []string{
		"",
		"occ_",
		"occ_not-a-uuid_2026-03-02",
		fmt.Sprintf("occ_%s_2026-3-2", uuid.New()),
		fmt.Sprintf("%s_2026-03-02", uuid.New()),
	}

	for _, tt := range tests {
		_, _, err := models.ParseOccurrenceID(tt)
		suite.Assert().ErrorIs(err, models.ErrOccurrenceID, "occurrenceID=%q", tt)
	}
}

func (suite *TestSuiteStandard) TestDueOccurrencesWeekly() {
	account := suite.createTestAccount(models.Account{})
	schedule := suite.createTestSchedule(models.Schedule{
		Name:      "Gym",
		AccountID: account.ID,
		Amount:    -1500,
		RuleJSON:  `{"freq":"weekly","interval":1,"weekdays":["mon"]}`,
		StartDate: types.NewDate(2026, 3, 2),
	})

	occurrences, warnings, err := models.DueOccurrences(models.DB, types.NewDate(2026, 3, 2), types.NewDate(2026, 3, 9))
	suite.Require().Nil(err)
	suite.Assert().Empty(warnings)

	suite.Require().Len(occurrences, 2)
	suite.Assert().Equal("2026-03-02", occurrences[0].Date.String())
	suite.Assert().Equal("2026-03-09", occurrences[1].Date.String())
	suite.Assert().Equal(schedule.OccurrenceID(occurrences[0].Date), occurrences[0].OccurrenceID)
}

func (suite *TestSuiteStandard) TestDueOccurrencesFiltersPosted() {
	account := suite.createTestAccount(models.Account{})
	schedule := suite.createTestSchedule(models.Schedule{
		AccountID: account.ID,
		RuleJSON:  `{"freq":"monthly","interval":1,"monthDay":1}`,
		StartDate: types.NewDate(2026, 1, 1),
	})

	_, err := models.PostOccurrence(models.DB, schedule.OccurrenceID(types.NewDate(2026, 2, 1)))
	suite.Require().Nil(err)

	occurrences, _, err := models.DueOccurrences(models.DB, types.NewDate(2026, 1, 1), types.NewDate(2026, 3, 1))
	suite.Require().Nil(err)

	suite.Require().Len(occurrences, 2)
	suite.Assert().Equal("2026-01-01", occurrences[0].Date.String())
	suite.Assert().Equal("2026-03-01", occurrences[1].Date.String())
}

func (suite *TestSuiteStandard) TestDueOccurrencesCorruptRule() {
	account := suite.createTestAccount(models.Account{})
	good := suite.createTestSchedule(models.Schedule{
		Name:      "Rent",
		AccountID: account.ID,
	})

	// Corrupt a stored rule directly, bypassing validation.
	bad := suite.createTestSchedule(models.Schedule{
		Name:      "Broken",
		AccountID: account.ID,
	})
	err := models.DB.Exec("UPDATE schedules SET rule_json = ? WHERE id = ?", `{"freq":"hourly"}`, bad.ID).Error
	suite.Require().Nil(err)

	occurrences, warnings, err := models.DueOccurrences(models.DB, types.NewDate(2026, 1, 1), types.NewDate(2026, 1, 31))
	suite.Require().Nil(err)

	// The broken schedule is reported, the healthy one still expands.
	suite.Require().Len(warnings, 1)
	suite.Assert().Contains(warnings[0], "Broken")
	suite.Require().Len(occurrences, 1)
	suite.Assert().Equal(good.ID, occurrences[0].ScheduleID)
}

func (suite *TestSuiteStandard) TestPostOccurrence() {
	account := suite.createTestAccount(models.Account{})
	envelope := suite.createTestEnvelope(models.Envelope{Name: "Rent"})
	schedule := suite.createTestSchedule(models.Schedule{
		Name:       "Rent",
		AccountID:  account.ID,
		EnvelopeID: &envelope.ID,
		Amount:     -150000,
		PayeeName:  "Landlord",
	})

	transaction, err := models.PostOccurrence(models.DB, schedule.OccurrenceID(types.NewDate(2026, 2, 1)))
	suite.Require().Nil(err)

	suite.Assert().Equal(account.ID, transaction.AccountID)
	suite.Assert().Equal(int64(-150000), transaction.Amount)
	suite.Assert().Equal("Landlord", transaction.PayeeName)
	suite.Assert().Equal(models.ClearedPending, transaction.Cleared)
	suite.Require().Len(transaction.Splits, 1)
	suite.Assert().Equal(envelope.ID, transaction.Splits[0].EnvelopeID)

	var posting models.SchedulePosting
	err = models.DB.Where("schedule_id = ?", schedule.ID).First(&posting).Error
	suite.Require().Nil(err)
	suite.Assert().Equal(transaction.ID, posting.TransactionID)
}

func (suite *TestSuiteStandard) TestPostOccurrenceIdempotent() {
	account := suite.createTestAccount(models.Account{})
	schedule := suite.createTestSchedule(models.Schedule{AccountID: account.ID})
	occurrenceID := schedule.OccurrenceID(types.NewDate(2026, 2, 1))

	_, err := models.PostOccurrence(models.DB, occurrenceID)
	suite.Require().Nil(err)

	_, err = models.PostOccurrence(models.DB, occurrenceID)
	suite.Assert().ErrorIs(err, models.ErrAlreadyPosted)

	// The duplicate post must not create a second transaction.
	var count int64
	models.DB.Model(&models.Transaction{}).Count(&count)
	suite.Assert().Equal(int64(1), count)
}

func (suite *TestSuiteStandard) TestPostOccurrenceArchived() {
	account := suite.createTestAccount(models.Account{})
	schedule := suite.createTestSchedule(models.Schedule{AccountID: account.ID})

	err := models.DB.Model(&schedule).Update("archived", true).Error
	suite.Require().Nil(err)

	_, err = models.PostOccurrence(models.DB, schedule.OccurrenceID(types.NewDate(2026, 2, 1)))
	suite.Assert().ErrorIs(err, models.ErrScheduleArchived)
}
