package v1

import (
	"net/http"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

func RegisterEnvelopeRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsEnvelopes)
		r.GET("", GetEnvelopes)
		r.POST("", CreateEnvelopes)
	}
	{
		r.OPTIONS("/:id", OptionsEnvelopeDetail)
		r.GET("/:id", GetEnvelope)
		r.PATCH("/:id", UpdateEnvelope)
		r.DELETE("/:id", DeleteEnvelope)
	}
}

type EnvelopeEditable struct {
	Name   string `json:"name" example:"Groceries" default:""`          // Name of the envelope
	Group  string `json:"group" example:"Everyday" default:"General"`   // Group the envelope is sorted into
	Note   string `json:"note" example:"Supermarket only" default:""`   // Note about the envelope
	Hidden bool   `json:"hidden" example:"true" default:"false"`        // Is the envelope hidden from the month summary?
}

// model returns the database resource for the API representation of the
// editable fields.
func (editable EnvelopeEditable) model() models.Envelope {
	return models.Envelope{
		Name:   editable.Name,
		Group:  editable.Group,
		Note:   editable.Note,
		Hidden: editable.Hidden,
	}
}

type Envelope struct {
	models.DefaultModel
	EnvelopeEditable
	System bool `json:"system" example:"false"` // Is this the system To Be Budgeted envelope?
}

// newEnvelope returns the API representation of the resource.
func newEnvelope(model models.Envelope) Envelope {
	return Envelope{
		DefaultModel: model.DefaultModel,
		EnvelopeEditable: EnvelopeEditable{
			Name:   model.Name,
			Group:  model.Group,
			Note:   model.Note,
			Hidden: model.Hidden,
		},
		System: model.System,
	}
}

type EnvelopeResponse struct {
	Data  *Envelope `json:"data"`  // The resource
	Error *string   `json:"error"` // The error, if any occurred
}

type EnvelopeCreateResponse struct {
	Data  []EnvelopeResponse `json:"data"`  // List of created resources
	Error *string            `json:"error"` // The error, if any occurred
}

func (t *EnvelopeCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, EnvelopeResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type EnvelopeListResponse struct {
	Data       []Envelope  `json:"data"`       // List of resources
	Error      *string     `json:"error"`      // The error, if any occurred
	Pagination *Pagination `json:"pagination"` // Pagination information
}

type EnvelopeQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // By name
	Group  string `form:"group"`                      // By group
	Note   string `form:"note" filterField:"false"`   // By note
	Search string `form:"search" filterField:"false"` // By string in name or note
	Hidden bool   `form:"hidden"`                     // Is the envelope hidden?
	System bool   `form:"system"`                     // Is this the system envelope?
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first envelope returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of envelopes to return. Defaults to 50.
}

func (f EnvelopeQueryFilter) model() models.Envelope {
	return models.Envelope{
		Group:  f.Group,
		Hidden: f.Hidden,
		System: f.System,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Router			/v1/envelopes [options]
func OptionsEnvelopes(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Envelopes
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/envelopes/{id} [options]
func OptionsEnvelopeDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Envelope{})
}

// @Summary		Create envelopes
// @Description	Creates new envelopes
// @Tags			Envelopes
// @Produce		json
// @Success		201			{object}	EnvelopeCreateResponse
// @Failure		400			{object}	EnvelopeCreateResponse
// @Failure		500			{object}	EnvelopeCreateResponse
// @Param			envelopes	body		[]EnvelopeEditable	true	"Envelopes"
// @Router			/v1/envelopes [post]
func CreateEnvelopes(c *gin.Context) {
	var envelopes []EnvelopeEditable

	err := httputil.BindData(c, &envelopes)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	httpStatus := http.StatusCreated
	r := EnvelopeCreateResponse{}

	for _, create := range envelopes {
		envelope := create.model()
		err = models.DB.Create(&envelope).Error
		if err != nil {
			httpStatus = r.appendError(err, httpStatus)
			continue
		}

		apiResource := newEnvelope(envelope)
		r.Data = append(r.Data, EnvelopeResponse{Data: &apiResource})
	}

	c.JSON(httpStatus, r)
}

// @Summary		Get envelopes
// @Description	Returns a list of envelopes
// @Tags			Envelopes
// @Produce		json
// @Success		200	{object}	EnvelopeListResponse
// @Failure		400	{object}	EnvelopeListResponse
// @Failure		500	{object}	EnvelopeListResponse
// @Router			/v1/envelopes [get]
// @Param			name	query	string	false	"Filter by name"
// @Param			group	query	string	false	"Filter by group"
// @Param			note	query	string	false	"Filter by note"
// @Param			search	query	string	false	"Search for this text in name and note"
// @Param			hidden	query	bool	false	"Is the envelope hidden?"
// @Param			system	query	bool	false	"Is this the system envelope?"
// @Param			offset	query	uint	false	"The offset of the first envelope returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of envelopes to return. Defaults to 50."
func GetEnvelopes(c *gin.Context) {
	var filter EnvelopeQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, EnvelopeListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("envelopes.`group` ASC, envelopes.name ASC").
		Where(filter.model(), queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	q = q.Offset(int(filter.Offset))
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var envelopes []models.Envelope
	err := q.Find(&envelopes).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EnvelopeListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), EnvelopeListResponse{Error: &s})
		return
	}

	data := make([]Envelope, 0, len(envelopes))
	for _, envelope := range envelopes {
		data = append(data, newEnvelope(envelope))
	}

	c.JSON(http.StatusOK, EnvelopeListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get envelope
// @Description	Returns a specific envelope
// @Tags			Envelopes
// @Produce		json
// @Success		200	{object}	EnvelopeResponse
// @Failure		400	{object}	EnvelopeResponse
// @Failure		404	{object}	EnvelopeResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/envelopes/{id} [get]
func GetEnvelope(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	var envelope models.Envelope
	err = models.DB.First(&envelope, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	apiResource := newEnvelope(envelope)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &apiResource})
}

// @Summary		Update envelope
// @Description	Updates an existing envelope. Only values to be updated need to be specified.
// @Tags			Envelopes
// @Accept			json
// @Produce		json
// @Success		200			{object}	EnvelopeResponse
// @Failure		400			{object}	EnvelopeResponse
// @Failure		404			{object}	EnvelopeResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			envelope	body		EnvelopeEditable	true	"Envelope"
// @Router			/v1/envelopes/{id} [patch]
func UpdateEnvelope(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	var envelope models.Envelope
	err = models.DB.First(&envelope, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, EnvelopeEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	var data EnvelopeEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	err = models.DB.Model(&envelope).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	apiResource := newEnvelope(envelope)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &apiResource})
}

// @Summary		Delete envelope
// @Description	Deletes an envelope. The system envelope cannot be deleted.
// @Tags			Envelopes
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/envelopes/{id} [delete]
func DeleteEnvelope(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	var envelope models.Envelope
	err = models.DB.First(&envelope, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	if envelope.System {
		c.JSON(http.StatusBadRequest, newHTTPError(models.ErrEnvelopeIsSystem))
		return
	}

	err = models.DB.Delete(&envelope).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
