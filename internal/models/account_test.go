package models_test

import (
	"time"

	"github.com/Tantanok221/agentbudget/internal/models"
)

func (suite *TestSuiteStandard) TestAccountBalances() {
	account := suite.createTestAccount(models.Account{Name: "Checking"})

	suite.createTestTransaction(models.Transaction{
		AccountID: account.ID,
		PostedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:    200000,
		Cleared:   models.ClearedCleared,
	})
	suite.createTestTransaction(models.Transaction{
		AccountID: account.ID,
		PostedAt:  time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:    -52500,
		Cleared:   models.ClearedReconciled,
	})
	suite.createTestTransaction(models.Transaction{
		AccountID: account.ID,
		PostedAt:  time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Amount:    -12000,
		Cleared:   models.ClearedPending,
	})

	balances, err := account.Balances(models.DB)
	suite.Require().Nil(err)

	suite.Assert().Equal(int64(135500), balances.Balance)
	suite.Assert().Equal(int64(147500), balances.ClearedBalance)
	suite.Assert().Equal(int64(-12000), balances.PendingBalance)
	suite.Require().NotNil(balances.LastPostedAt)
	suite.Assert().Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), balances.LastPostedAt.UTC())
}

func (suite *TestSuiteStandard) TestAccountNameUnique() {
	suite.createTestAccount(models.Account{Name: "Checking"})

	err := models.DB.Create(&models.Account{Name: "Checking", Type: models.AccountTypeCash}).Error
	suite.Assert().ErrorIs(err, models.ErrAccountNameNotUnique)
}

func (suite *TestSuiteStandard) TestAccountTypeInvalid() {
	err := models.DB.Create(&models.Account{Name: "Broker", Type: "brokerage"}).Error
	suite.Assert().ErrorIs(err, models.ErrAccountType)
}

func (suite *TestSuiteStandard) TestReconcilePreview() {
	account := suite.createTestAccount(models.Account{})

	suite.createTestTransaction(models.Transaction{
		AccountID: account.ID,
		PostedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:    100000,
		Cleared:   models.ClearedCleared,
	})
	suite.createTestTransaction(models.Transaction{
		AccountID: account.ID,
		PostedAt:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Amount:    -5000,
		Cleared:   models.ClearedPending,
	})

	preview, err := account.PreviewReconcile(models.DB, 98000)
	suite.Require().Nil(err)

	// Pending transactions do not count towards the cleared balance.
	suite.Assert().Equal(int64(100000), preview.ClearedBalance)
	suite.Assert().Equal(int64(-2000), preview.Delta)
}

func (suite *TestSuiteStandard) TestReconcile() {
	suite.initSystem()
	account := suite.createTestAccount(models.Account{})

	suite.createTestTransaction(models.Transaction{
		AccountID: account.ID,
		PostedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:    100000,
		Cleared:   models.ClearedCleared,
	})

	preview, adjustment, err := account.Reconcile(models.DB, 98000, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(-2000), preview.Delta)

	// The delta becomes a reconciled adjustment with a TBB split.
	suite.Require().NotNil(adjustment)
	suite.Assert().Equal(int64(-2000), adjustment.Amount)
	suite.Assert().Equal(models.ClearedReconciled, adjustment.Cleared)
	suite.Require().Len(adjustment.Splits, 1)

	// All previously cleared transactions are now reconciled.
	var count int64
	models.DB.Model(&models.Transaction{}).
		Where("account_id = ? AND cleared = ?", account.ID, models.ClearedCleared).
		Count(&count)
	suite.Assert().Zero(count)

	balances, err := account.Balances(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(98000), balances.ClearedBalance)
}

func (suite *TestSuiteStandard) TestReconcileNoDelta() {
	account := suite.createTestAccount(models.Account{})

	suite.createTestTransaction(models.Transaction{
		AccountID: account.ID,
		PostedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:    100000,
		Cleared:   models.ClearedCleared,
	})

	// A matching statement needs no adjustment and no TBB envelope.
	_, adjustment, err := account.Reconcile(models.DB, 100000, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	suite.Require().Nil(err)
	suite.Assert().Nil(adjustment)
}
