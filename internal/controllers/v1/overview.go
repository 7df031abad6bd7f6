package v1

import (
	"net/http"
	"time"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/overview"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/gin-gonic/gin"
)

func RegisterOverviewRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsOverview)
		r.GET("", GetOverview)
	}
}

type OverviewQueryFilter struct {
	Month string `form:"month" binding:"required" example:"2026-03"` // Year and month in YYYY-MM format
	Today string `form:"today" example:"2026-03-15"`                 // Reference date in YYYY-MM-DD format. Defaults to the current UTC date.
}

type OverviewResponse struct {
	Data  *overview.Overview `json:"data"`  // The month dashboard
	Error *string            `json:"error"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Overview
// @Success		204
// @Router			/v1/overview [options]
func OptionsOverview(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get overview
// @Description	Returns the month dashboard: budget summary, underfunded targets, net worth, cashflow, top spending and upcoming schedule occurrences
// @Tags			Overview
// @Produce		json
// @Success		200	{object}	OverviewResponse
// @Failure		400	{object}	OverviewResponse
// @Failure		412	{object}	OverviewResponse
// @Failure		500	{object}	OverviewResponse
// @Param			month	query	string	true	"Year and month in YYYY-MM format"
// @Param			today	query	string	false	"Reference date in YYYY-MM-DD format. Defaults to the current UTC date."
// @Router			/v1/overview [get]
func GetOverview(c *gin.Context) {
	var filter OverviewQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, OverviewResponse{Error: &s})
		return
	}

	month, err := types.ParseMonth(filter.Month)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, OverviewResponse{Error: &s})
		return
	}

	now := time.Now().UTC()
	today := types.NewDate(now.Year(), now.Month(), now.Day())
	if filter.Today != "" {
		today, err = types.ParseDate(filter.Today)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, OverviewResponse{Error: &s})
			return
		}
	}

	dashboard, err := models.BuildOverview(models.DB, month, today)
	if err != nil {
		// The error body carries a machine readable code so clients can
		// react to the missing system envelope.
		c.JSON(status(err), newHTTPError(err))
		return
	}

	c.JSON(http.StatusOK, OverviewResponse{Data: &dashboard})
}
