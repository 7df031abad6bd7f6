package v1

import (
	"net/http"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/money"
	"github.com/gin-gonic/gin"
)

func RegisterSystemRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/init", OptionsSystemInit)
		r.POST("/init", InitializeSystem)
	}
}

func RegisterSettingRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsSettings)
		r.GET("", GetSettings)
		r.POST("", UpdateSettings)
	}
}

type SystemInitResponse struct {
	Data  *Envelope `json:"data"`  // The system envelope
	Error *string   `json:"error"` // The error, if any occurred
}

type Settings struct {
	Currency string `json:"currency" example:"MYR"` // ISO 4217 code of the budget currency
}

type SettingsResponse struct {
	Data  *Settings `json:"data"`  // The settings
	Error *string   `json:"error"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			System
// @Success		204
// @Router			/v1/system/init [options]
func OptionsSystemInit(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			System
// @Success		204
// @Router			/v1/settings [options]
func OptionsSettings(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Initialize the budget
// @Description	Creates the system To Be Budgeted envelope. Calling this again returns the existing envelope unchanged.
// @Tags			System
// @Produce		json
// @Success		200	{object}	SystemInitResponse
// @Success		201	{object}	SystemInitResponse
// @Failure		500	{object}	SystemInitResponse
// @Router			/v1/system/init [post]
func InitializeSystem(c *gin.Context) {
	envelope, created, err := models.InitializeSystem(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SystemInitResponse{Error: &e})
		return
	}

	httpStatus := http.StatusOK
	if created {
		httpStatus = http.StatusCreated
	}

	apiResource := newEnvelope(envelope)
	c.JSON(httpStatus, SystemInitResponse{Data: &apiResource})
}

// @Summary		Get settings
// @Description	Returns the budget settings
// @Tags			System
// @Produce		json
// @Success		200	{object}	SettingsResponse
// @Failure		500	{object}	SettingsResponse
// @Router			/v1/settings [get]
func GetSettings(c *gin.Context) {
	currency, err := models.Currency(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SettingsResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{Data: &Settings{Currency: currency}})
}

// @Summary		Update settings
// @Description	Updates the budget settings. The currency must be a known ISO 4217 code.
// @Tags			System
// @Accept			json
// @Produce		json
// @Success		200			{object}	SettingsResponse
// @Failure		400			{object}	SettingsResponse
// @Failure		500			{object}	SettingsResponse
// @Param			settings	body		Settings	true	"Settings"
// @Router			/v1/settings [post]
func UpdateSettings(c *gin.Context) {
	var settings Settings
	err := httputil.BindData(c, &settings)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SettingsResponse{Error: &e})
		return
	}

	// Reject codes the money package cannot resolve an exponent for.
	if _, err := money.Exponent(settings.Currency); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, SettingsResponse{Error: &e})
		return
	}

	err = models.SetSetting(models.DB, models.SettingCurrency, settings.Currency)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SettingsResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{Data: &settings})
}
