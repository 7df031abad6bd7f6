package v1

import (
	"fmt"
	"net/http"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/recurrence"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

func RegisterScheduleRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsSchedules)
		r.GET("", GetSchedules)
		r.POST("", CreateSchedules)
	}
	{
		r.OPTIONS("/due", OptionsSchedulesDue)
		r.GET("/due", GetDueOccurrences)
	}
	{
		r.OPTIONS("/post", OptionsSchedulesPost)
		r.POST("/post", PostOccurrence)
	}
	{
		r.OPTIONS("/:id", OptionsScheduleDetail)
		r.GET("/:id", GetSchedule)
		r.PATCH("/:id", UpdateSchedule)
		r.DELETE("/:id", DeleteSchedule)
	}
}

type ScheduleEditable struct {
	Name       string          `json:"name" example:"Rent" default:""`           // Name of the schedule
	AccountID  uuid.UUID       `json:"accountId"`                                // The account the transaction will be posted on
	EnvelopeID *uuid.UUID      `json:"envelopeId"`                               // The envelope the transaction will be split against
	Amount     decimal.Decimal `json:"amount" example:"-1500.00"`                // Amount in the budget currency, negative for outflows
	PayeeName  string          `json:"payeeName" example:"Landlord" default:""`  // Payee name stamped on posted transactions
	Memo       string          `json:"memo" example:"" default:""`               // Memo stamped on posted transactions
	Rule       recurrence.Rule `json:"rule"`                                     // The recurrence rule
	StartDate  types.Date      `json:"startDate" example:"2026-01-01"`           // First date occurrences are generated for
	EndDate    *types.Date     `json:"endDate"`                                  // Last date occurrences are generated for, if any
	Archived   bool            `json:"archived" example:"false" default:"false"` // Archived schedules produce no occurrences
}

// Schedule is the API representation of a stored schedule. The amount
// is in minor units of the budget currency.
type Schedule struct {
	models.DefaultModel
	Name       string          `json:"name"`
	AccountID  uuid.UUID       `json:"accountId"`
	EnvelopeID *uuid.UUID      `json:"envelopeId"`
	Amount     int64           `json:"amount"`
	PayeeName  string          `json:"payeeName"`
	Memo       string          `json:"memo"`
	Rule       recurrence.Rule `json:"rule"`
	StartDate  types.Date      `json:"startDate"`
	EndDate    *types.Date     `json:"endDate"`
	Archived   bool            `json:"archived"`
}

func newSchedule(model models.Schedule) (Schedule, error) {
	rule, err := model.Rule()
	if err != nil {
		return Schedule{}, err
	}

	return Schedule{
		DefaultModel: model.DefaultModel,
		Name:         model.Name,
		AccountID:    model.AccountID,
		EnvelopeID:   model.EnvelopeID,
		Amount:       model.Amount,
		PayeeName:    model.PayeeName,
		Memo:         model.Memo,
		Rule:         rule,
		StartDate:    model.StartDate,
		EndDate:      model.EndDate,
		Archived:     model.Archived,
	}, nil
}

type ScheduleResponse struct {
	Data  *Schedule `json:"data"`  // The resource
	Error *string   `json:"error"` // The error, if any occurred
}

type ScheduleCreateResponse struct {
	Data  []ScheduleResponse `json:"data"`  // List of created resources
	Error *string            `json:"error"` // The error, if any occurred
}

func (t *ScheduleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, ScheduleResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ScheduleListResponse struct {
	Data     []Schedule `json:"data"`     // List of resources
	Warnings []string   `json:"warnings"` // Schedules skipped because their stored rule is corrupt
	Error    *string    `json:"error"`    // The error, if any occurred
}

type DueQueryFilter struct {
	From string `form:"from" binding:"required" example:"2026-03-01"` // First date of the window, inclusive
	To   string `form:"to" binding:"required" example:"2026-03-31"`   // Last date of the window, inclusive
}

type DueResponse struct {
	Data     []models.Occurrence `json:"data"`     // Unposted occurrences in the window, ascending by date
	Warnings []string            `json:"warnings"` // Schedules skipped because their stored rule is corrupt
	Error    *string             `json:"error"`    // The error, if any occurred
}

type PostOccurrenceRequest struct {
	OccurrenceID string `json:"occurrenceId" binding:"required" example:"occ_a1b2c3d4-0000-4000-8000-000000000000_2026-03-01"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Schedules
// @Success		204
// @Router			/v1/schedules [options]
func OptionsSchedules(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Schedules
// @Success		204
// @Router			/v1/schedules/due [options]
func OptionsSchedulesDue(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Schedules
// @Success		204
// @Router			/v1/schedules/post [options]
func OptionsSchedulesPost(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Schedules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/schedules/{id} [options]
func OptionsScheduleDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Schedule{})
}

// @Summary		Create schedules
// @Description	Creates new schedules
// @Tags			Schedules
// @Produce		json
// @Success		201			{object}	ScheduleCreateResponse
// @Failure		400			{object}	ScheduleCreateResponse
// @Failure		500			{object}	ScheduleCreateResponse
// @Param			schedules	body		[]ScheduleEditable	true	"Schedules"
// @Router			/v1/schedules [post]
func CreateSchedules(c *gin.Context) {
	var editables []ScheduleEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleCreateResponse{Error: &e})
		return
	}

	httpStatus := http.StatusCreated
	r := ScheduleCreateResponse{}

	for _, create := range editables {
		amount, err := minorUnits(models.DB, create.Amount)
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		ruleJSON, err := create.Rule.Encode()
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		// The referenced account and envelope must exist
		err = models.DB.First(&models.Account{}, create.AccountID).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}
		if create.EnvelopeID != nil {
			err = models.DB.First(&models.Envelope{}, *create.EnvelopeID).Error
			if err != nil {
				httpStatus = r.appendError(err, httpStatus)
				continue
			}
		}

		schedule := models.Schedule{
			Name:       create.Name,
			AccountID:  create.AccountID,
			EnvelopeID: create.EnvelopeID,
			Amount:     amount,
			PayeeName:  create.PayeeName,
			Memo:       create.Memo,
			RuleJSON:   ruleJSON,
			StartDate:  create.StartDate,
			EndDate:    create.EndDate,
			Archived:   create.Archived,
		}
		err = models.DB.Create(&schedule).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		apiResource, err := newSchedule(schedule)
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}
		r.Data = append(r.Data, ScheduleResponse{Data: &apiResource})
	}

	c.JSON(httpStatus, r)
}

// @Summary		Get schedules
// @Description	Returns all schedules, ascending by name
// @Tags			Schedules
// @Produce		json
// @Success		200	{object}	ScheduleListResponse
// @Failure		500	{object}	ScheduleListResponse
// @Param			archived	query	bool	false	"Include archived schedules. Defaults to false."
// @Router			/v1/schedules [get]
func GetSchedules(c *gin.Context) {
	q := models.DB.Order("schedules.name ASC")
	if c.Query("archived") != "true" {
		q = q.Where("schedules.archived = ?", false)
	}

	var schedules []models.Schedule
	err := q.Find(&schedules).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ScheduleListResponse{Error: &s})
		return
	}

	data := make([]Schedule, 0, len(schedules))
	warnings := []string{}
	for _, schedule := range schedules {
		apiResource, err := newSchedule(schedule)
		if err != nil {
			// A corrupt stored rule must not hide the other schedules
			warnings = append(warnings, fmt.Sprintf("schedule %q: %s", schedule.Name, err))
			continue
		}
		data = append(data, apiResource)
	}

	c.JSON(http.StatusOK, ScheduleListResponse{Data: data, Warnings: warnings})
}

// @Summary		Get due occurrences
// @Description	Expands all unarchived schedules over the window and returns the occurrences that have not been posted yet
// @Tags			Schedules
// @Produce		json
// @Success		200	{object}	DueResponse
// @Failure		400	{object}	DueResponse
// @Failure		500	{object}	DueResponse
// @Param			from	query	string	true	"First date of the window in YYYY-MM-DD format, inclusive"
// @Param			to		query	string	true	"Last date of the window in YYYY-MM-DD format, inclusive"
// @Router			/v1/schedules/due [get]
func GetDueOccurrences(c *gin.Context) {
	var filter DueQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, DueResponse{Error: &s})
		return
	}

	from, err := types.ParseDate(filter.From)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, DueResponse{Error: &s})
		return
	}

	to, err := types.ParseDate(filter.To)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, DueResponse{Error: &s})
		return
	}

	occurrences, warnings, err := models.DueOccurrences(models.DB, from, to)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DueResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, DueResponse{Data: occurrences, Warnings: warnings})
}

// @Summary		Post occurrence
// @Description	Turns one due occurrence into a pending transaction. Posting the same occurrence twice is rejected.
// @Tags			Schedules
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Failure		409			{object}	TransactionResponse
// @Param			occurrence	body		PostOccurrenceRequest	true	"Occurrence"
// @Router			/v1/schedules/post [post]
func PostOccurrence(c *gin.Context) {
	var request PostOccurrenceRequest
	err := httputil.BindData(c, &request)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	transaction, err := models.PostOccurrence(models.DB, request.OccurrenceID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{Error: &e})
		return
	}

	apiResource := newTransaction(transaction)
	c.JSON(http.StatusCreated, TransactionResponse{Data: &apiResource})
}

// @Summary		Get schedule
// @Description	Returns a specific schedule
// @Tags			Schedules
// @Produce		json
// @Success		200	{object}	ScheduleResponse
// @Failure		400	{object}	ScheduleResponse
// @Failure		404	{object}	ScheduleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/schedules/{id} [get]
func GetSchedule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}

	var schedule models.Schedule
	err = models.DB.First(&schedule, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}

	apiResource, err := newSchedule(schedule)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{Data: &apiResource})
}

// @Summary		Update schedule
// @Description	Updates an existing schedule. Only values to be updated need to be specified. The merged schedule is re-validated, so a patched end date must still not be before the start date.
// @Tags			Schedules
// @Accept			json
// @Produce		json
// @Success		200			{object}	ScheduleResponse
// @Failure		400			{object}	ScheduleResponse
// @Failure		404			{object}	ScheduleResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			schedule	body		ScheduleEditable	true	"Schedule"
// @Router			/v1/schedules/{id} [patch]
func UpdateSchedule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}

	var schedule models.Schedule
	err = models.DB.First(&schedule, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, ScheduleEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}

	var data ScheduleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}

	// Merge the patched fields into the loaded schedule and save it, so
	// validation always sees the full merged state.
	if slices.Contains(updateFields, "Name") {
		schedule.Name = data.Name
	}
	if slices.Contains(updateFields, "AccountID") {
		if err := models.DB.First(&models.Account{}, data.AccountID).Error; err != nil {
			e := err.Error()
			c.JSON(status(err), ScheduleResponse{Error: &e})
			return
		}
		schedule.AccountID = data.AccountID
	}
	if slices.Contains(updateFields, "EnvelopeID") {
		if data.EnvelopeID != nil {
			if err := models.DB.First(&models.Envelope{}, *data.EnvelopeID).Error; err != nil {
				e := err.Error()
				c.JSON(status(err), ScheduleResponse{Error: &e})
				return
			}
		}
		schedule.EnvelopeID = data.EnvelopeID
	}
	if slices.Contains(updateFields, "Amount") {
		amount, err := minorUnits(models.DB, data.Amount)
		if err != nil {
			e := err.Error()
			c.JSON(http.StatusBadRequest, ScheduleResponse{Error: &e})
			return
		}
		schedule.Amount = amount
	}
	if slices.Contains(updateFields, "PayeeName") {
		schedule.PayeeName = data.PayeeName
	}
	if slices.Contains(updateFields, "Memo") {
		schedule.Memo = data.Memo
	}
	if slices.Contains(updateFields, "Rule") {
		ruleJSON, err := data.Rule.Encode()
		if err != nil {
			e := err.Error()
			c.JSON(http.StatusBadRequest, ScheduleResponse{Error: &e})
			return
		}
		schedule.RuleJSON = ruleJSON
	}
	if slices.Contains(updateFields, "StartDate") {
		schedule.StartDate = data.StartDate
	}
	if slices.Contains(updateFields, "EndDate") {
		schedule.EndDate = data.EndDate
	}
	if slices.Contains(updateFields, "Archived") {
		schedule.Archived = data.Archived
	}

	err = models.DB.Save(&schedule).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}

	apiResource, err := newSchedule(schedule)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ScheduleResponse{Error: &e})
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{Data: &apiResource})
}

// @Summary		Delete schedule
// @Description	Deletes a schedule and its posting markers. Posted transactions are kept.
// @Tags			Schedules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/schedules/{id} [delete]
func DeleteSchedule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	var schedule models.Schedule
	err = models.DB.First(&schedule, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", schedule.ID).Delete(&models.SchedulePosting{}).Error; err != nil {
			return err
		}
		return tx.Delete(&schedule).Error
	})
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
