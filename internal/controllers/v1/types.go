package v1

import (
	"fmt"

	"github.com/Tantanok221/agentbudget/internal/money"
	"github.com/Tantanok221/agentbudget/internal/models"
	ab_uuid "github.com/Tantanok221/agentbudget/internal/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type URIID struct {
	ID ab_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type Pagination struct {
	Count  int   `json:"count"`  // The amount of records returned in this response
	Offset uint  `json:"offset"` // The offset for the first record returned
	Limit  int   `json:"limit"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total"`  // The total number of resources matching the query
}

// minorUnits converts a decimal major unit amount from the API into the
// minor units all computation runs on, using the budget currency.
func minorUnits(db *gorm.DB, amount decimal.Decimal) (int64, error) {
	code, err := models.Currency(db)
	if err != nil {
		return 0, err
	}

	exponent, err := money.Exponent(code)
	if err != nil {
		return 0, err
	}

	return money.FromDecimal(amount, exponent)
}

// stringFilters applies the name, note and search filters shared by the
// list endpoints.
func stringFilters(db, query *gorm.DB, setFields []string, name, note, search string) *gorm.DB {
	if name != "" {
		query = query.Where("name LIKE ?", fmt.Sprintf("%%%s%%", name))
	} else if slices.Contains(setFields, "Name") {
		query = query.Where("name = ''")
	}

	if note != "" {
		query = query.Where("note LIKE ?", fmt.Sprintf("%%%s%%", note))
	} else if slices.Contains(setFields, "Note") {
		query = query.Where("note = ''")
	}

	if search != "" {
		query = query.Where(
			db.Where("note LIKE ?", fmt.Sprintf("%%%s%%", search)).Or(
				db.Where("name LIKE ?", fmt.Sprintf("%%%s%%", search)),
			),
		)
	}

	return query
}
