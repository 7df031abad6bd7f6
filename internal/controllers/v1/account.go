package v1

import (
	"net/http"
	"time"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

func RegisterAccountRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsAccounts)
		r.GET("", GetAccounts)
		r.POST("", CreateAccounts)
	}
	{
		r.OPTIONS("/:id", OptionsAccountDetail)
		r.GET("/:id", GetAccount)
		r.PATCH("/:id", UpdateAccount)
		r.DELETE("/:id", DeleteAccount)
	}
	{
		r.OPTIONS("/:id/reconcile", OptionsAccountReconcile)
		r.GET("/:id/reconcile", GetAccountReconcilePreview)
		r.POST("/:id/reconcile", ReconcileAccount)
	}
}

type AccountEditable struct {
	Name     string             `json:"name" example:"Checking" default:""`    // Name of the account
	Type     models.AccountType `json:"type" example:"checking" default:""`    // One of checking, savings, cash, tracking
	Note     string             `json:"note" example:"Main account" default:""` // Note about the account
	Archived bool               `json:"archived" example:"false" default:"false"` // Is the account archived?
}

func (editable AccountEditable) model() models.Account {
	return models.Account{
		Name:     editable.Name,
		Type:     editable.Type,
		Note:     editable.Note,
		Archived: editable.Archived,
	}
}

type Account struct {
	models.DefaultModel
	AccountEditable

	// Computed balances in minor units, as of the request.
	Balance        int64      `json:"balance" example:"147500"`
	ClearedBalance int64      `json:"clearedBalance" example:"147500"`
	PendingBalance int64      `json:"pendingBalance" example:"-12000"`
	LastPostedAt   *time.Time `json:"lastPostedAt"`
}

// newAccount returns the API representation of the resource including
// its balances.
func newAccount(model models.Account) (Account, error) {
	balances, err := model.Balances(models.DB)
	if err != nil {
		return Account{}, err
	}

	return Account{
		DefaultModel: model.DefaultModel,
		AccountEditable: AccountEditable{
			Name:     model.Name,
			Type:     model.Type,
			Note:     model.Note,
			Archived: model.Archived,
		},
		Balance:        balances.Balance,
		ClearedBalance: balances.ClearedBalance,
		PendingBalance: balances.PendingBalance,
		LastPostedAt:   balances.LastPostedAt,
	}, nil
}

type AccountResponse struct {
	Data  *Account `json:"data"`  // The resource
	Error *string  `json:"error"` // The error, if any occurred
}

type AccountCreateResponse struct {
	Data  []AccountResponse `json:"data"`  // List of created resources
	Error *string           `json:"error"` // The error, if any occurred
}

func (t *AccountCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, AccountResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type AccountListResponse struct {
	Data       []Account   `json:"data"`       // List of resources
	Error      *string     `json:"error"`      // The error, if any occurred
	Pagination *Pagination `json:"pagination"` // Pagination information
}

type AccountQueryFilter struct {
	Name     string `form:"name" filterField:"false"`   // By name
	Type     string `form:"type"`                       // By account type
	Note     string `form:"note" filterField:"false"`   // By note
	Search   string `form:"search" filterField:"false"` // By string in name or note
	Archived bool   `form:"archived"`                   // Is the account archived?
	Offset   uint   `form:"offset" filterField:"false"` // The offset of the first account returned. Defaults to 0.
	Limit    int    `form:"limit" filterField:"false"`  // Maximum number of accounts to return. Defaults to 50.
}

func (f AccountQueryFilter) model() models.Account {
	return models.Account{
		Type:     models.AccountType(f.Type),
		Archived: f.Archived,
	}
}

// ReconcileRequest is the body for reconciling an account against a
// bank statement.
type ReconcileRequest struct {
	StatementBalance decimal.Decimal `json:"statementBalance" example:"980.00"`    // The balance the bank statement shows
	Date             time.Time       `json:"date" example:"2026-03-31T00:00:00Z"`  // The statement date, used for the adjustment transaction
}

// ReconcilePreview is the dry-run result of a reconciliation.
type ReconcilePreview struct {
	ClearedBalance int64 `json:"clearedBalance" example:"100000"` // The current cleared balance
	Delta          int64 `json:"delta" example:"-2000"`           // statement balance minus cleared balance
}

type ReconcilePreviewResponse struct {
	Data  *ReconcilePreview `json:"data"`  // The preview
	Error *string           `json:"error"` // The error, if any occurred
}

type ReconcileResponse struct {
	Data  *ReconcileResult `json:"data"`  // The result
	Error *string          `json:"error"` // The error, if any occurred
}

// ReconcileResult reports what a reconciliation changed.
type ReconcileResult struct {
	ReconcilePreview
	Adjustment *Transaction `json:"adjustment"` // The adjustment transaction, nil when the balances matched
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Router			/v1/accounts [options]
func OptionsAccounts(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/accounts/{id} [options]
func OptionsAccountDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Account{})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/accounts/{id}/reconcile [options]
func OptionsAccountReconcile(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.First(&models.Account{}, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	httputil.OptionsGetPost(c)
}

// @Summary		Create accounts
// @Description	Creates new accounts
// @Tags			Accounts
// @Produce		json
// @Success		201			{object}	AccountCreateResponse
// @Failure		400			{object}	AccountCreateResponse
// @Failure		500			{object}	AccountCreateResponse
// @Param			accounts	body		[]AccountEditable	true	"Accounts"
// @Router			/v1/accounts [post]
func CreateAccounts(c *gin.Context) {
	var accounts []AccountEditable

	err := httputil.BindData(c, &accounts)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountCreateResponse{Error: &e})
		return
	}

	httpStatus := http.StatusCreated
	r := AccountCreateResponse{}

	for _, create := range accounts {
		account := create.model()
		err = models.DB.Create(&account).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		apiResource, err := newAccount(account)
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}
		r.Data = append(r.Data, AccountResponse{Data: &apiResource})
	}

	c.JSON(httpStatus, r)
}

// @Summary		Get accounts
// @Description	Returns a list of accounts with their balances
// @Tags			Accounts
// @Produce		json
// @Success		200	{object}	AccountListResponse
// @Failure		400	{object}	AccountListResponse
// @Failure		500	{object}	AccountListResponse
// @Router			/v1/accounts [get]
// @Param			name		query	string	false	"Filter by name"
// @Param			type		query	string	false	"Filter by account type"
// @Param			note		query	string	false	"Filter by note"
// @Param			search		query	string	false	"Search for this text in name and note"
// @Param			archived	query	bool	false	"Is the account archived?"
// @Param			offset		query	uint	false	"The offset of the first account returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of accounts to return. Defaults to 50."
func GetAccounts(c *gin.Context) {
	var filter AccountQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AccountListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("accounts.name ASC").
		Where(filter.model(), queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	q = q.Offset(int(filter.Offset))
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var accounts []models.Account
	err := q.Find(&accounts).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccountListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccountListResponse{Error: &s})
		return
	}

	data := make([]Account, 0, len(accounts))
	for _, account := range accounts {
		apiResource, err := newAccount(account)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), AccountListResponse{Error: &s})
			return
		}
		data = append(data, apiResource)
	}

	c.JSON(http.StatusOK, AccountListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get account
// @Description	Returns a specific account with its balances
// @Tags			Accounts
// @Produce		json
// @Success		200	{object}	AccountResponse
// @Failure		400	{object}	AccountResponse
// @Failure		404	{object}	AccountResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/accounts/{id} [get]
func GetAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	var account models.Account
	err = models.DB.First(&account, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	apiResource, err := newAccount(account)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}
	c.JSON(http.StatusOK, AccountResponse{Data: &apiResource})
}

// @Summary		Update account
// @Description	Updates an existing account. Only values to be updated need to be specified.
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		200		{object}	AccountResponse
// @Failure		400		{object}	AccountResponse
// @Failure		404		{object}	AccountResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			account	body		AccountEditable	true	"Account"
// @Router			/v1/accounts/{id} [patch]
func UpdateAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	var account models.Account
	err = models.DB.First(&account, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, AccountEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	var data AccountEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	err = models.DB.Model(&account).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	apiResource, err := newAccount(account)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}
	c.JSON(http.StatusOK, AccountResponse{Data: &apiResource})
}

// @Summary		Delete account
// @Description	Deletes an account
// @Tags			Accounts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/accounts/{id} [delete]
func DeleteAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	var account models.Account
	err = models.DB.First(&account, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.Delete(&account).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Preview reconciliation
// @Description	Compares the account's cleared balance against a statement balance without changing anything
// @Tags			Accounts
// @Produce		json
// @Success		200					{object}	ReconcilePreviewResponse
// @Failure		400					{object}	ReconcilePreviewResponse
// @Failure		404					{object}	ReconcilePreviewResponse
// @Param			id					path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			statementBalance	query		string	true	"The balance the bank statement shows, in major units"
// @Router			/v1/accounts/{id}/reconcile [get]
func GetAccountReconcilePreview(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcilePreviewResponse{Error: &e})
		return
	}

	var account models.Account
	err = models.DB.First(&account, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcilePreviewResponse{Error: &e})
		return
	}

	statement, err := decimal.NewFromString(c.Query("statementBalance"))
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ReconcilePreviewResponse{Error: &e})
		return
	}

	statementMinor, err := minorUnits(models.DB, statement)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcilePreviewResponse{Error: &e})
		return
	}

	preview, err := account.PreviewReconcile(models.DB, statementMinor)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcilePreviewResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, ReconcilePreviewResponse{Data: &ReconcilePreview{
		ClearedBalance: preview.ClearedBalance,
		Delta:          preview.Delta,
	}})
}

// @Summary		Reconcile account
// @Description	Reconciles the account against a statement balance: writes an adjustment transaction when the balances differ and marks all cleared transactions as reconciled
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		200			{object}	ReconcileResponse
// @Failure		400			{object}	ReconcileResponse
// @Failure		404			{object}	ReconcileResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			reconcile	body		ReconcileRequest	true	"Reconciliation"
// @Router			/v1/accounts/{id}/reconcile [post]
func ReconcileAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcileResponse{Error: &e})
		return
	}

	var account models.Account
	err = models.DB.First(&account, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcileResponse{Error: &e})
		return
	}

	var request ReconcileRequest
	err = httputil.BindData(c, &request)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcileResponse{Error: &e})
		return
	}

	statementMinor, err := minorUnits(models.DB, request.StatementBalance)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcileResponse{Error: &e})
		return
	}

	date := request.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	preview, adjustment, err := account.Reconcile(models.DB, statementMinor, date)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReconcileResponse{Error: &e})
		return
	}

	result := ReconcileResult{
		ReconcilePreview: ReconcilePreview{
			ClearedBalance: preview.ClearedBalance,
			Delta:          preview.Delta,
		},
	}
	if adjustment != nil {
		apiResource := newTransaction(*adjustment)
		result.Adjustment = &apiResource
	}

	c.JSON(http.StatusOK, ReconcileResponse{Data: &result})
}
