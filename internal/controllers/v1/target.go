package v1

import (
	"net/http"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/targets"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func RegisterTargetRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsTargets)
		r.GET("", GetTargets)
		r.POST("", CreateTargets)
	}
	{
		r.OPTIONS("/:id", OptionsTargetDetail)
		r.GET("/:id", GetTarget)
		r.PATCH("/:id", UpdateTarget)
		r.DELETE("/:id", DeleteTarget)
	}
}

type TargetEditable struct {
	EnvelopeID   uuid.UUID       `json:"envelopeId"`                                // The envelope the target is for
	Type         targets.Type    `json:"type" example:"monthly" default:""`         // One of monthly, by_date, needed_for_spending
	Amount       decimal.Decimal `json:"amount" example:"150.00"`                   // Amount for monthly and needed_for_spending targets
	TargetAmount decimal.Decimal `json:"targetAmount" example:"1200.00"`            // Goal amount for by_date targets
	TargetMonth  types.Month     `json:"targetMonth" example:"2026-12"`             // Month the goal should be reached in
	StartMonth   types.Month     `json:"startMonth" example:"2026-01"`              // First month the by_date target is funded in
	Note         string          `json:"note" example:"" default:""`                // Note about the target
	Archived     bool            `json:"archived" example:"false" default:"false"`  // Archived targets are ignored by the evaluator
}

func (editable TargetEditable) model(amount, targetAmount int64) models.Target {
	return models.Target{
		EnvelopeID:   editable.EnvelopeID,
		Type:         editable.Type,
		Amount:       amount,
		TargetAmount: targetAmount,
		TargetMonth:  editable.TargetMonth,
		StartMonth:   editable.StartMonth,
		Note:         editable.Note,
		Archived:     editable.Archived,
	}
}

// Target is the API representation of a stored target. Amounts are in
// minor units of the budget currency.
type Target struct {
	models.DefaultModel
	EnvelopeID   uuid.UUID    `json:"envelopeId"`
	Type         targets.Type `json:"type"`
	Amount       int64        `json:"amount"`
	TargetAmount int64        `json:"targetAmount"`
	TargetMonth  types.Month  `json:"targetMonth"`
	StartMonth   types.Month  `json:"startMonth"`
	Note         string       `json:"note"`
	Archived     bool         `json:"archived"`
}

func newTarget(model models.Target) Target {
	return Target{
		DefaultModel: model.DefaultModel,
		EnvelopeID:   model.EnvelopeID,
		Type:         model.Type,
		Amount:       model.Amount,
		TargetAmount: model.TargetAmount,
		TargetMonth:  model.TargetMonth,
		StartMonth:   model.StartMonth,
		Note:         model.Note,
		Archived:     model.Archived,
	}
}

type TargetResponse struct {
	Data  *Target `json:"data"`  // The resource
	Error *string `json:"error"` // The error, if any occurred
}

type TargetCreateResponse struct {
	Data  []TargetResponse `json:"data"`  // List of created resources
	Error *string          `json:"error"` // The error, if any occurred
}

func (t *TargetCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TargetResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TargetListResponse struct {
	Data  []Target `json:"data"`  // List of resources
	Error *string  `json:"error"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Targets
// @Success		204
// @Router			/v1/targets [options]
func OptionsTargets(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Targets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/targets/{id} [options]
func OptionsTargetDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Target{})
}

// @Summary		Create targets
// @Description	Creates new targets. Each envelope can carry at most one target.
// @Tags			Targets
// @Produce		json
// @Success		201		{object}	TargetCreateResponse
// @Failure		400		{object}	TargetCreateResponse
// @Failure		500		{object}	TargetCreateResponse
// @Param			targets	body		[]TargetEditable	true	"Targets"
// @Router			/v1/targets [post]
func CreateTargets(c *gin.Context) {
	var editables []TargetEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TargetCreateResponse{Error: &e})
		return
	}

	httpStatus := http.StatusCreated
	r := TargetCreateResponse{}

	for _, create := range editables {
		amount, err := minorUnits(models.DB, create.Amount)
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		targetAmount, err := minorUnits(models.DB, create.TargetAmount)
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		// The referenced envelope must exist
		err = models.DB.First(&models.Envelope{}, create.EnvelopeID).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		target := create.model(amount, targetAmount)
		err = models.DB.Create(&target).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		apiResource := newTarget(target)
		r.Data = append(r.Data, TargetResponse{Data: &apiResource})
	}

	c.JSON(httpStatus, r)
}

// @Summary		Get targets
// @Description	Returns all targets
// @Tags			Targets
// @Produce		json
// @Success		200	{object}	TargetListResponse
// @Failure		500	{object}	TargetListResponse
// @Param			archived	query	bool	false	"Include archived targets. Defaults to false."
// @Router			/v1/targets [get]
func GetTargets(c *gin.Context) {
	q := models.DB.Order("targets.created_at ASC")
	if c.Query("archived") != "true" {
		q = q.Where("targets.archived = ?", false)
	}

	var rows []models.Target
	err := q.Find(&rows).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TargetListResponse{Error: &s})
		return
	}

	data := make([]Target, 0, len(rows))
	for _, row := range rows {
		data = append(data, newTarget(row))
	}

	c.JSON(http.StatusOK, TargetListResponse{Data: data})
}

// @Summary		Get target
// @Description	Returns a specific target
// @Tags			Targets
// @Produce		json
// @Success		200	{object}	TargetResponse
// @Failure		400	{object}	TargetResponse
// @Failure		404	{object}	TargetResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/targets/{id} [get]
func GetTarget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TargetResponse{Error: &e})
		return
	}

	var target models.Target
	err = models.DB.First(&target, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TargetResponse{Error: &e})
		return
	}

	apiResource := newTarget(target)
	c.JSON(http.StatusOK, TargetResponse{Data: &apiResource})
}

// @Summary		Update target
// @Description	Updates an existing target. Only values to be updated need to be specified. The merged target is re-validated.
// @Tags			Targets
// @Accept			json
// @Produce		json
// @Success		200		{object}	TargetResponse
// @Failure		400		{object}	TargetResponse
// @Failure		404		{object}	TargetResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			target	body		TargetEditable	true	"Target"
// @Router			/v1/targets/{id} [patch]
func UpdateTarget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TargetResponse{Error: &e})
		return
	}

	var target models.Target
	err = models.DB.First(&target, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TargetResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, TargetEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TargetResponse{Error: &e})
		return
	}

	var data TargetEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TargetResponse{Error: &e})
		return
	}

	amount, err := minorUnits(models.DB, data.Amount)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TargetResponse{Error: &e})
		return
	}

	targetAmount, err := minorUnits(models.DB, data.TargetAmount)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TargetResponse{Error: &e})
		return
	}

	err = models.DB.Model(&target).Select("", updateFields...).Updates(data.model(amount, targetAmount)).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TargetResponse{Error: &e})
		return
	}

	apiResource := newTarget(target)
	c.JSON(http.StatusOK, TargetResponse{Data: &apiResource})
}

// @Summary		Delete target
// @Description	Deletes a target
// @Tags			Targets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/targets/{id} [delete]
func DeleteTarget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	var target models.Target
	err = models.DB.First(&target, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.Delete(&target).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
