package v1

import (
	"net/http"

	"github.com/Tantanok221/agentbudget/internal/httputil"
	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func RegisterBudgetRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/allocations", OptionsAllocations)
		r.POST("/allocations", CreateAllocations)
	}
	{
		r.OPTIONS("/moves", OptionsMoves)
		r.POST("/moves", CreateMove)
	}
}

// AllocationItem is one envelope assignment of an allocation request.
type AllocationItem struct {
	EnvelopeID uuid.UUID       `json:"envelopeId" binding:"required"` // The envelope money is assigned to
	Amount     decimal.Decimal `json:"amount" example:"150.00"`       // Amount in the budget currency. Negative amounts unassign money.
}

type AllocationRequest struct {
	Month       string           `json:"month" binding:"required" example:"2026-03"` // Year and month in YYYY-MM format
	Allocations []AllocationItem `json:"allocations" binding:"required"`             // Envelope assignments
	Note        string           `json:"note" example:"March funding"`               // Note stored on every allocation of the batch
}

// Allocation is the API representation of a stored allocation row.
// Amounts are in minor units of the budget currency.
type Allocation struct {
	models.DefaultModel
	BudgetMonthID uuid.UUID               `json:"budgetMonthId"`
	EnvelopeID    uuid.UUID               `json:"envelopeId"`
	Amount        int64                   `json:"amount"`
	Source        models.AllocationSource `json:"source"`
	Note          string                  `json:"note"`
}

func newAllocation(model models.Allocation) Allocation {
	return Allocation{
		DefaultModel:  model.DefaultModel,
		BudgetMonthID: model.BudgetMonthID,
		EnvelopeID:    model.EnvelopeID,
		Amount:        model.Amount,
		Source:        model.Source,
		Note:          model.Note,
	}
}

type AllocationResponse struct {
	Data  []Allocation `json:"data"`  // The stored allocations, including the balancing row on the system envelope
	Error *string      `json:"error"` // The error, if any occurred
}

type MoveRequest struct {
	Month          string          `json:"month" binding:"required" example:"2026-03"` // Year and month in YYYY-MM format
	FromEnvelopeID uuid.UUID       `json:"fromEnvelopeId" binding:"required"`          // The envelope money is taken from
	ToEnvelopeID   uuid.UUID       `json:"toEnvelopeId" binding:"required"`            // The envelope money is given to
	Amount         decimal.Decimal `json:"amount" example:"20.00"`                     // Amount in the budget currency, must be positive
	Note           string          `json:"note" example:""`                            // Note about the move
}

// EnvelopeMove is the API representation of a stored move. The amount
// is in minor units of the budget currency.
type EnvelopeMove struct {
	models.DefaultModel
	BudgetMonthID  uuid.UUID `json:"budgetMonthId"`
	FromEnvelopeID uuid.UUID `json:"fromEnvelopeId"`
	ToEnvelopeID   uuid.UUID `json:"toEnvelopeId"`
	Amount         int64     `json:"amount"`
	Note           string    `json:"note"`
}

func newEnvelopeMove(model models.EnvelopeMove) EnvelopeMove {
	return EnvelopeMove{
		DefaultModel:   model.DefaultModel,
		BudgetMonthID:  model.BudgetMonthID,
		FromEnvelopeID: model.FromEnvelopeID,
		ToEnvelopeID:   model.ToEnvelopeID,
		Amount:         model.Amount,
		Note:           model.Note,
	}
}

type MoveResponse struct {
	Data  *EnvelopeMove `json:"data"`  // The stored move
	Error *string       `json:"error"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budget
// @Success		204
// @Router			/v1/budget/allocations [options]
func OptionsAllocations(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budget
// @Success		204
// @Router			/v1/budget/moves [options]
func OptionsMoves(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allocate money
// @Description	Assigns money to envelopes for a month. The negative sum of the batch is mirrored on the system envelope so that all allocations of the month sum to zero.
// @Tags			Budget
// @Accept			json
// @Produce		json
// @Success		201			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		412			{object}	AllocationResponse
// @Failure		500			{object}	AllocationResponse
// @Param			allocation	body		AllocationRequest	true	"Allocation batch"
// @Router			/v1/budget/allocations [post]
func CreateAllocations(c *gin.Context) {
	var request AllocationRequest
	err := httputil.BindData(c, &request)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	month, err := types.ParseMonth(request.Month)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, AllocationResponse{Error: &e})
		return
	}

	items := make([]models.AllocationItem, 0, len(request.Allocations))
	for _, item := range request.Allocations {
		amount, err := minorUnits(models.DB, item.Amount)
		if err != nil {
			e := err.Error()
			c.JSON(http.StatusBadRequest, AllocationResponse{Error: &e})
			return
		}

		items = append(items, models.AllocationItem{
			EnvelopeID: item.EnvelopeID,
			Amount:     amount,
		})
	}

	allocations, err := models.Allocate(models.DB, month, items, request.Note)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	data := make([]Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		data = append(data, newAllocation(allocation))
	}

	c.JSON(http.StatusCreated, AllocationResponse{Data: data})
}

// @Summary		Move money
// @Description	Moves available money from one envelope to another within a month
// @Tags			Budget
// @Accept			json
// @Produce		json
// @Success		201		{object}	MoveResponse
// @Failure		400		{object}	MoveResponse
// @Failure		404		{object}	MoveResponse
// @Failure		500		{object}	MoveResponse
// @Param			move	body		MoveRequest	true	"Move"
// @Router			/v1/budget/moves [post]
func CreateMove(c *gin.Context) {
	var request MoveRequest
	err := httputil.BindData(c, &request)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MoveResponse{Error: &e})
		return
	}

	month, err := types.ParseMonth(request.Month)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, MoveResponse{Error: &e})
		return
	}

	amount, err := minorUnits(models.DB, request.Amount)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, MoveResponse{Error: &e})
		return
	}

	move, err := models.Move(models.DB, month, request.FromEnvelopeID, request.ToEnvelopeID, amount, request.Note)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MoveResponse{Error: &e})
		return
	}

	apiResource := newEnvelopeMove(move)
	c.JSON(http.StatusCreated, MoveResponse{Data: &apiResource})
}
