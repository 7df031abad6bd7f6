package v1

import (
	"net/http"
	"time"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	ab_uuid "github.com/Tantanok221/agentbudget/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

func RegisterTransactionRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsTransactions)
		r.GET("", GetTransactions)
		r.POST("", CreateTransactions)
	}
	{
		r.OPTIONS("/transfers", OptionsTransfers)
		r.POST("/transfers", CreateTransfer)
	}
	{
		r.OPTIONS("/:id", OptionsTransactionDetail)
		r.GET("/:id", GetTransaction)
		r.DELETE("/:id", DeleteTransaction)
	}
}

type SplitEditable struct {
	EnvelopeID uuid.UUID       `json:"envelopeId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"` // The envelope this part of the transaction belongs to
	Amount     decimal.Decimal `json:"amount" example:"-52.50"`                                   // Amount in major units, negative for outflows
	Note       string          `json:"note" example:"" default:""`                                // Note about the split
}

type TransactionEditable struct {
	AccountID  uuid.UUID       `json:"accountId" example:"d2bdc04c-b5b5-4fa5-a0f9-9f24e6a35f93"` // The account the transaction belongs to
	PostedAt   time.Time       `json:"postedAt" example:"2026-03-05T00:00:00Z"`                  // When the transaction was posted
	Amount     decimal.Decimal `json:"amount" example:"-52.50"`                                  // Amount in major units, negative for outflows
	PayeeName  string          `json:"payeeName" example:"Grocery Mart" default:""`              // Raw payee name, resolved through the match rules
	Memo       string          `json:"memo" example:"" default:""`                               // Memo for the transaction
	Cleared    models.Cleared  `json:"cleared" example:"cleared" default:"cleared"`              // One of pending, cleared, reconciled
	SkipBudget bool            `json:"skipBudget" example:"false" default:"false"`               // Exclude this transaction from budgeting
	ExternalID *string         `json:"externalId"`                                               // External ID for import duplicate detection
	Splits     []SplitEditable `json:"splits"`                                                   // Envelope splits, must sum to the amount
}

// model converts the editable fields into the database resource,
// converting all amounts into minor units.
func (editable TransactionEditable) model(db *gorm.DB) (models.Transaction, error) {
	amount, err := minorUnits(db, editable.Amount)
	if err != nil {
		return models.Transaction{}, err
	}

	splits := make([]models.TransactionSplit, 0, len(editable.Splits))
	for _, split := range editable.Splits {
		splitAmount, err := minorUnits(db, split.Amount)
		if err != nil {
			return models.Transaction{}, err
		}
		splits = append(splits, models.TransactionSplit{
			EnvelopeID: split.EnvelopeID,
			Amount:     splitAmount,
			Note:       split.Note,
		})
	}

	return models.Transaction{
		AccountID:  editable.AccountID,
		PostedAt:   editable.PostedAt,
		Amount:     amount,
		PayeeName:  editable.PayeeName,
		Memo:       editable.Memo,
		Cleared:    editable.Cleared,
		SkipBudget: editable.SkipBudget,
		ExternalID: editable.ExternalID,
		Splits:     splits,
	}, nil
}

type Split struct {
	EnvelopeID uuid.UUID `json:"envelopeId"`
	Amount     int64     `json:"amount" example:"-5250"` // Amount in minor units
	Note       string    `json:"note"`
}

type Transaction struct {
	models.DefaultModel
	AccountID       uuid.UUID      `json:"accountId"`
	PostedAt        time.Time      `json:"postedAt"`
	Amount          int64          `json:"amount" example:"-5250"` // Amount in minor units
	PayeeID         *uuid.UUID     `json:"payeeId"`
	PayeeName       string         `json:"payeeName"`
	Memo            string         `json:"memo"`
	Cleared         models.Cleared `json:"cleared"`
	SkipBudget      bool           `json:"skipBudget"`
	ExternalID      *string        `json:"externalId"`
	TransferGroupID *uuid.UUID     `json:"transferGroupId"`
	TransferPeerID  *uuid.UUID     `json:"transferPeerId"`
	Splits          []Split        `json:"splits"`
}

// newTransaction returns the API representation of the resource.
func newTransaction(model models.Transaction) Transaction {
	splits := make([]Split, 0, len(model.Splits))
	for _, split := range model.Splits {
		splits = append(splits, Split{
			EnvelopeID: split.EnvelopeID,
			Amount:     split.Amount,
			Note:       split.Note,
		})
	}

	return Transaction{
		DefaultModel:    model.DefaultModel,
		AccountID:       model.AccountID,
		PostedAt:        model.PostedAt,
		Amount:          model.Amount,
		PayeeID:         model.PayeeID,
		PayeeName:       model.PayeeName,
		Memo:            model.Memo,
		Cleared:         model.Cleared,
		SkipBudget:      model.SkipBudget,
		ExternalID:      model.ExternalID,
		TransferGroupID: model.TransferGroupID,
		TransferPeerID:  model.TransferPeerID,
		Splits:          splits,
	}
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`  // The resource
	Error *string      `json:"error"` // The error, if any occurred
}

type TransactionCreateResponse struct {
	Data  []TransactionResponse `json:"data"`  // List of created resources
	Error *string               `json:"error"` // The error, if any occurred
}

func (t *TransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TransactionResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`       // List of resources
	Error      *string       `json:"error"`      // The error, if any occurred
	Pagination *Pagination   `json:"pagination"` // Pagination information
}

type TransactionQueryFilter struct {
	AccountID  ab_uuid.UUID `form:"account" filterField:"false"`  // By account ID
	EnvelopeID ab_uuid.UUID `form:"envelope" filterField:"false"` // By envelope ID of a split
	PayeeID    ab_uuid.UUID `form:"payee" filterField:"false"`    // By payee ID
	Cleared    string       `form:"cleared" filterField:"false"`  // By cleared state
	FromDate   string       `form:"fromDate" filterField:"false"` // Posted on or after this date (YYYY-MM-DD)
	UntilDate  string       `form:"untilDate" filterField:"false"` // Posted before this date (YYYY-MM-DD)
	Offset     uint         `form:"offset" filterField:"false"`   // The offset of the first transaction returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`    // Maximum number of transactions to return. Defaults to 50.
}

// TransferEditable is the request body for creating a transfer between
// two accounts.
type TransferEditable struct {
	FromAccountID uuid.UUID       `json:"fromAccountId"`                           // The account money leaves
	ToAccountID   uuid.UUID       `json:"toAccountId"`                             // The account money arrives in
	Amount        decimal.Decimal `json:"amount" example:"500.00"`                 // Amount in major units, always positive
	PostedAt      time.Time       `json:"postedAt" example:"2026-03-10T00:00:00Z"` // When the transfer was posted
	Memo          string          `json:"memo" example:"" default:""`              // Memo for both sides
}

type TransferResponse struct {
	Data  *TransferResult `json:"data"`  // The created pair
	Error *string         `json:"error"` // The error, if any occurred
}

type TransferResult struct {
	Outflow Transaction `json:"outflow"`
	Inflow  Transaction `json:"inflow"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactions(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/transfers [options]
func OptionsTransfers(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.First(&models.Transaction{}, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.Header("allow", "GET, DELETE")
	c.Status(http.StatusNoContent)
}

// @Summary		Create transactions
// @Description	Creates new transactions. Payee names are resolved through the match rules, creating new payees as needed.
// @Tags			Transactions
// @Produce		json
// @Success		201				{object}	TransactionCreateResponse
// @Failure		400				{object}	TransactionCreateResponse
// @Failure		500				{object}	TransactionCreateResponse
// @Param			transactions	body		[]TransactionEditable	true	"Transactions"
// @Router			/v1/transactions [post]
func CreateTransactions(c *gin.Context) {
	var editables []TransactionEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionCreateResponse{Error: &e})
		return
	}

	httpStatus := http.StatusCreated
	r := TransactionCreateResponse{}

	for _, editable := range editables {
		transaction, err := editable.model(models.DB)
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		if transaction.PayeeName != "" {
			payee, err := models.ResolveOrCreatePayee(models.DB, transaction.PayeeName)
			if err != nil {
				httpStatus = r.appendError(err, httpStatus)
				continue
			}
			transaction.PayeeID = &payee.ID
		}

		err = transaction.Create(models.DB)
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		apiResource := newTransaction(transaction)
		r.Data = append(r.Data, TransactionResponse{Data: &apiResource})
	}

	c.JSON(httpStatus, r)
}

// @Summary		Get transactions
// @Description	Returns a list of transactions, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Failure		500	{object}	TransactionListResponse
// @Router			/v1/transactions [get]
// @Param			account		query	string	false	"Filter by account ID"
// @Param			envelope	query	string	false	"Filter by envelope ID of a split"
// @Param			payee		query	string	false	"Filter by payee ID"
// @Param			cleared		query	string	false	"Filter by cleared state"
// @Param			fromDate	query	string	false	"Posted on or after this date (YYYY-MM-DD)"
// @Param			untilDate	query	string	false	"Posted before this date (YYYY-MM-DD)"
// @Param			offset		query	uint	false	"The offset of the first transaction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of transactions to return. Defaults to 50."
func GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{Error: &s})
		return
	}

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Preload("Splits").
		Order("transactions.posted_at DESC, transactions.created_at DESC")

	if filter.AccountID != ab_uuid.Nil {
		q = q.Where("transactions.account_id = ?", filter.AccountID.UUID)
	}
	if filter.PayeeID != ab_uuid.Nil {
		q = q.Where("transactions.payee_id = ?", filter.PayeeID.UUID)
	}
	if filter.Cleared != "" {
		q = q.Where("transactions.cleared = ?", filter.Cleared)
	}
	if filter.EnvelopeID != ab_uuid.Nil {
		q = q.
			Joins("JOIN transaction_splits ON transaction_splits.transaction_id = transactions.id").
			Where("transaction_splits.envelope_id = ?", filter.EnvelopeID.UUID)
	}

	if filter.FromDate != "" {
		from, err := time.Parse("2006-01-02", filter.FromDate)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, TransactionListResponse{Error: &s})
			return
		}
		q = q.Where("transactions.posted_at >= ?", from)
	}
	if filter.UntilDate != "" {
		until, err := time.Parse("2006-01-02", filter.UntilDate)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, TransactionListResponse{Error: &s})
			return
		}
		q = q.Where("transactions.posted_at < ?", until)
	}

	q = q.Offset(int(filter.Offset))
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var transactions []models.Transaction
	err := q.Find(&transactions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{Error: &s})
		return
	}

	data := make([]Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		data = append(data, newTransaction(transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction with its splits
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	TransactionResponse
// @Failure		404	{object}	TransactionResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [get]
func GetTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	var transaction models.Transaction
	err = models.DB.Preload("Splits").First(&transaction, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	apiResource := newTransaction(transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &apiResource})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction and its splits
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [delete]
func DeleteTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.TransactionSplit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&transaction).Error
	})
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Create transfer
// @Description	Moves money between two accounts by creating a linked pair of transactions
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransferResponse
// @Failure		400			{object}	TransferResponse
// @Failure		404			{object}	TransferResponse
// @Param			transfer	body		TransferEditable	true	"Transfer"
// @Router			/v1/transactions/transfers [post]
func CreateTransfer(c *gin.Context) {
	var editable TransferEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransferResponse{Error: &e})
		return
	}

	amount, err := minorUnits(models.DB, editable.Amount)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransferResponse{Error: &e})
		return
	}

	var from, to models.Account
	if err := models.DB.First(&from, editable.FromAccountID).Error; err != nil {
		e := err.Error()
		c.JSON(status(err), TransferResponse{Error: &e})
		return
	}
	if err := models.DB.First(&to, editable.ToAccountID).Error; err != nil {
		e := err.Error()
		c.JSON(status(err), TransferResponse{Error: &e})
		return
	}

	postedAt := editable.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now().UTC()
	}

	outflow, inflow, err := models.CreateTransfer(models.DB, from, to, amount, postedAt, editable.Memo)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransferResponse{Error: &e})
		return
	}

	c.JSON(http.StatusCreated, TransferResponse{Data: &TransferResult{
		Outflow: newTransaction(outflow),
		Inflow:  newTransaction(inflow),
	}})
}
