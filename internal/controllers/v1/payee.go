package v1

import (
	"net/http"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

func RegisterPayeeRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsPayees)
		r.GET("", GetPayees)
		r.POST("", CreatePayees)
	}
	{
		r.OPTIONS("/:id", OptionsPayeeDetail)
		r.GET("/:id", GetPayee)
		r.PATCH("/:id", UpdatePayee)
		r.DELETE("/:id", DeletePayee)
	}
}

func RegisterMatchRuleRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsMatchRules)
		r.GET("", GetMatchRules)
		r.POST("", CreateMatchRules)
	}
	{
		r.OPTIONS("/:id", OptionsMatchRuleDetail)
		r.GET("/:id", GetMatchRule)
		r.PATCH("/:id", UpdateMatchRule)
		r.DELETE("/:id", DeleteMatchRule)
	}
}

type PayeeEditable struct {
	Name string `json:"name" example:"Grocery Mart" default:""` // Name of the payee
	Note string `json:"note" example:"" default:""`             // Note about the payee
}

func (editable PayeeEditable) model() models.Payee {
	return models.Payee{
		Name: editable.Name,
		Note: editable.Note,
	}
}

type Payee struct {
	models.DefaultModel
	PayeeEditable
}

func newPayee(model models.Payee) Payee {
	return Payee{
		DefaultModel: model.DefaultModel,
		PayeeEditable: PayeeEditable{
			Name: model.Name,
			Note: model.Note,
		},
	}
}

type PayeeResponse struct {
	Data  *Payee  `json:"data"`  // The resource
	Error *string `json:"error"` // The error, if any occurred
}

type PayeeCreateResponse struct {
	Data  []PayeeResponse `json:"data"`  // List of created resources
	Error *string         `json:"error"` // The error, if any occurred
}

func (t *PayeeCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, PayeeResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type PayeeListResponse struct {
	Data       []Payee     `json:"data"`       // List of resources
	Error      *string     `json:"error"`      // The error, if any occurred
	Pagination *Pagination `json:"pagination"` // Pagination information
}

type PayeeQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // By name
	Note   string `form:"note" filterField:"false"`   // By note
	Search string `form:"search" filterField:"false"` // By string in name or note
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first payee returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of payees to return. Defaults to 50.
}

type MatchRuleEditable struct {
	Priority uint             `json:"priority" example:"10" default:"0"`        // Rules with lower priority are evaluated first
	Match    models.MatchType `json:"match" example:"glob" default:""`          // One of exact, contains, glob
	Pattern  string           `json:"pattern" example:"grocery*" default:""`    // The pattern matched against incoming payee names
	PayeeID  uuid.UUID        `json:"payeeId"`                                  // The payee the rule maps to
	Archived bool             `json:"archived" example:"false" default:"false"` // Archived rules are skipped during matching
}

func (editable MatchRuleEditable) model() models.MatchRule {
	return models.MatchRule{
		Priority: editable.Priority,
		Match:    editable.Match,
		Pattern:  editable.Pattern,
		PayeeID:  editable.PayeeID,
		Archived: editable.Archived,
	}
}

type MatchRule struct {
	models.DefaultModel
	MatchRuleEditable
}

func newMatchRule(model models.MatchRule) MatchRule {
	return MatchRule{
		DefaultModel: model.DefaultModel,
		MatchRuleEditable: MatchRuleEditable{
			Priority: model.Priority,
			Match:    model.Match,
			Pattern:  model.Pattern,
			PayeeID:  model.PayeeID,
			Archived: model.Archived,
		},
	}
}

type MatchRuleResponse struct {
	Data  *MatchRule `json:"data"`  // The resource
	Error *string    `json:"error"` // The error, if any occurred
}

type MatchRuleCreateResponse struct {
	Data  []MatchRuleResponse `json:"data"`  // List of created resources
	Error *string             `json:"error"` // The error, if any occurred
}

func (t *MatchRuleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, MatchRuleResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type MatchRuleListResponse struct {
	Data  []MatchRule `json:"data"`  // List of resources, ascending by priority
	Error *string     `json:"error"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Payees
// @Success		204
// @Router			/v1/payees [options]
func OptionsPayees(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Payees
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/payees/{id} [options]
func OptionsPayeeDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Payee{})
}

// @Summary		Create payees
// @Description	Creates new payees
// @Tags			Payees
// @Produce		json
// @Success		201		{object}	PayeeCreateResponse
// @Failure		400		{object}	PayeeCreateResponse
// @Failure		500		{object}	PayeeCreateResponse
// @Param			payees	body		[]PayeeEditable	true	"Payees"
// @Router			/v1/payees [post]
func CreatePayees(c *gin.Context) {
	var payees []PayeeEditable

	err := httputil.BindData(c, &payees)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PayeeCreateResponse{Error: &e})
		return
	}

	httpStatus := http.StatusCreated
	r := PayeeCreateResponse{}

	for _, create := range payees {
		payee := create.model()
		err = models.DB.Create(&payee).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		apiResource := newPayee(payee)
		r.Data = append(r.Data, PayeeResponse{Data: &apiResource})
	}

	c.JSON(httpStatus, r)
}

// @Summary		Get payees
// @Description	Returns a list of payees
// @Tags			Payees
// @Produce		json
// @Success		200	{object}	PayeeListResponse
// @Failure		400	{object}	PayeeListResponse
// @Failure		500	{object}	PayeeListResponse
// @Router			/v1/payees [get]
// @Param			name	query	string	false	"Filter by name"
// @Param			note	query	string	false	"Filter by note"
// @Param			search	query	string	false	"Search for this text in name and note"
// @Param			offset	query	uint	false	"The offset of the first payee returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of payees to return. Defaults to 50."
func GetPayees(c *gin.Context) {
	var filter PayeeQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, PayeeListResponse{Error: &s})
		return
	}

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.Order("payees.name ASC")
	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	q = q.Offset(int(filter.Offset))
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var payees []models.Payee
	err := q.Find(&payees).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PayeeListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PayeeListResponse{Error: &s})
		return
	}

	data := make([]Payee, 0, len(payees))
	for _, payee := range payees {
		data = append(data, newPayee(payee))
	}

	c.JSON(http.StatusOK, PayeeListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get payee
// @Description	Returns a specific payee
// @Tags			Payees
// @Produce		json
// @Success		200	{object}	PayeeResponse
// @Failure		400	{object}	PayeeResponse
// @Failure		404	{object}	PayeeResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/payees/{id} [get]
func GetPayee(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PayeeResponse{Error: &e})
		return
	}

	var payee models.Payee
	err = models.DB.First(&payee, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PayeeResponse{Error: &e})
		return
	}

	apiResource := newPayee(payee)
	c.JSON(http.StatusOK, PayeeResponse{Data: &apiResource})
}

// @Summary		Update payee
// @Description	Updates an existing payee. Only values to be updated need to be specified.
// @Tags			Payees
// @Accept			json
// @Produce		json
// @Success		200		{object}	PayeeResponse
// @Failure		400		{object}	PayeeResponse
// @Failure		404		{object}	PayeeResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			payee	body		PayeeEditable	true	"Payee"
// @Router			/v1/payees/{id} [patch]
func UpdatePayee(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PayeeResponse{Error: &e})
		return
	}

	var payee models.Payee
	err = models.DB.First(&payee, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PayeeResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, PayeeEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PayeeResponse{Error: &e})
		return
	}

	var data PayeeEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PayeeResponse{Error: &e})
		return
	}

	err = models.DB.Model(&payee).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PayeeResponse{Error: &e})
		return
	}

	apiResource := newPayee(payee)
	c.JSON(http.StatusOK, PayeeResponse{Data: &apiResource})
}

// @Summary		Delete payee
// @Description	Deletes a payee and its match rules
// @Tags			Payees
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/payees/{id} [delete]
func DeletePayee(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	var payee models.Payee
	err = models.DB.First(&payee, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payee_id = ?", payee.ID).Delete(&models.MatchRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&payee).Error
	})
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			MatchRules
// @Success		204
// @Router			/v1/match-rules [options]
func OptionsMatchRules(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			MatchRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/match-rules/{id} [options]
func OptionsMatchRuleDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.MatchRule{})
}

// @Summary		Create match rules
// @Description	Creates new match rules
// @Tags			MatchRules
// @Produce		json
// @Success		201			{object}	MatchRuleCreateResponse
// @Failure		400			{object}	MatchRuleCreateResponse
// @Failure		500			{object}	MatchRuleCreateResponse
// @Param			matchRules	body		[]MatchRuleEditable	true	"Match rules"
// @Router			/v1/match-rules [post]
func CreateMatchRules(c *gin.Context) {
	var rules []MatchRuleEditable

	err := httputil.BindData(c, &rules)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MatchRuleCreateResponse{Error: &e})
		return
	}

	httpStatus := http.StatusCreated
	r := MatchRuleCreateResponse{}

	for _, create := range rules {
		// The referenced payee must exist
		err = models.DB.First(&models.Payee{}, create.PayeeID).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		rule := create.model()
		err = models.DB.Create(&rule).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		apiResource := newMatchRule(rule)
		r.Data = append(r.Data, MatchRuleResponse{Data: &apiResource})
	}

	c.JSON(httpStatus, r)
}

// @Summary		Get match rules
// @Description	Returns all match rules in evaluation order
// @Tags			MatchRules
// @Produce		json
// @Success		200	{object}	MatchRuleListResponse
// @Failure		500	{object}	MatchRuleListResponse
// @Router			/v1/match-rules [get]
func GetMatchRules(c *gin.Context) {
	var rules []models.MatchRule
	err := models.DB.Order("match_rules.priority ASC, match_rules.created_at ASC").Find(&rules).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MatchRuleListResponse{Error: &s})
		return
	}

	data := make([]MatchRule, 0, len(rules))
	for _, rule := range rules {
		data = append(data, newMatchRule(rule))
	}

	c.JSON(http.StatusOK, MatchRuleListResponse{Data: data})
}

// @Summary		Get match rule
// @Description	Returns a specific match rule
// @Tags			MatchRules
// @Produce		json
// @Success		200	{object}	MatchRuleResponse
// @Failure		400	{object}	MatchRuleResponse
// @Failure		404	{object}	MatchRuleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/match-rules/{id} [get]
func GetMatchRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MatchRuleResponse{Error: &e})
		return
	}

	var rule models.MatchRule
	err = models.DB.First(&rule, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MatchRuleResponse{Error: &e})
		return
	}

	apiResource := newMatchRule(rule)
	c.JSON(http.StatusOK, MatchRuleResponse{Data: &apiResource})
}

// @Summary		Update match rule
// @Description	Updates an existing match rule. Only values to be updated need to be specified.
// @Tags			MatchRules
// @Accept			json
// @Produce		json
// @Success		200			{object}	MatchRuleResponse
// @Failure		400			{object}	MatchRuleResponse
// @Failure		404			{object}	MatchRuleResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			matchRule	body		MatchRuleEditable	true	"Match rule"
// @Router			/v1/match-rules/{id} [patch]
func UpdateMatchRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MatchRuleResponse{Error: &e})
		return
	}

	var rule models.MatchRule
	err = models.DB.First(&rule, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MatchRuleResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, MatchRuleEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MatchRuleResponse{Error: &e})
		return
	}

	var data MatchRuleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MatchRuleResponse{Error: &e})
		return
	}

	err = models.DB.Model(&rule).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MatchRuleResponse{Error: &e})
		return
	}

	apiResource := newMatchRule(rule)
	c.JSON(http.StatusOK, MatchRuleResponse{Data: &apiResource})
}

// @Summary		Delete match rule
// @Description	Deletes a match rule
// @Tags			MatchRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/match-rules/{id} [delete]
func DeleteMatchRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	var rule models.MatchRule
	err = models.DB.First(&rule, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.Delete(&rule).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
