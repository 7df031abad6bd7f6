package v1

import (
	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/gin-gonic/gin"
)

// resourceOptionsDetail returns the appropriate response for an HTTP
// OPTIONS request for a specific resource.
//
// Only works for resources addressed by ID, not for computed endpoints
// like /months or /overview.
func resourceOptionsDetail[R models.Account | models.Envelope | models.Payee | models.MatchRule | models.Transaction | models.Target | models.Schedule](c *gin.Context, resource R) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	err = models.DB.First(&resource, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), newHTTPError(err))
		return
	}

	httputil.OptionsGetPatchDelete(c)
}
