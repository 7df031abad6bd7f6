package v1

import (
	"net/http"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/ledger"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/gin-gonic/gin"
)

func RegisterMonthRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsMonths)
		r.GET("", GetMonth)
	}
}

type MonthQueryFilter struct {
	Month  string `form:"month" binding:"required" example:"2026-03"` // Year and month in YYYY-MM format
	Hidden bool   `form:"hidden" example:"false"`                     // Include hidden envelopes?
}

type MonthResponse struct {
	Data  *ledger.Summary `json:"data"`  // The month summary
	Error *string         `json:"error"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Months
// @Success		204
// @Router			/v1/months [options]
func OptionsMonths(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get month summary
// @Description	Returns the availability of all envelopes for a month. Totals include the system envelope, the envelope list does not.
// @Tags			Months
// @Produce		json
// @Success		200	{object}	MonthResponse
// @Failure		400	{object}	MonthResponse
// @Failure		412	{object}	MonthResponse
// @Failure		500	{object}	MonthResponse
// @Param			month	query	string	true	"Year and month in YYYY-MM format"
// @Param			hidden	query	bool	false	"Include hidden envelopes. Defaults to false."
// @Router			/v1/months [get]
func GetMonth(c *gin.Context) {
	var filter MonthQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, MonthResponse{Error: &s})
		return
	}

	month, err := types.ParseMonth(filter.Month)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, MonthResponse{Error: &s})
		return
	}

	summary, err := models.MonthSummary(models.DB, month, filter.Hidden)
	if err != nil {
		// The error body carries a machine readable code so clients can
		// react to the missing system envelope.
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusOK, MonthResponse{Data: &summary})
}
