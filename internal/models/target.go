package models

import (
	"errors"

	"github.com/Tantanok221/agentbudget/internal/targets"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Target is a savings or spending goal for an envelope. Each envelope
// carries at most one target; an archived target stays in place but is
// ignored by the evaluator.
type Target struct {
	DefaultModel
	Envelope   Envelope  `json:"-"`
	EnvelopeID uuid.UUID `gorm:"uniqueIndex:target_envelope_id"`
	Type       targets.Type

	// monthly and needed_for_spending
	Amount int64

	// by_date
	TargetAmount int64
	TargetMonth  types.Month
	StartMonth   types.Month

	Note     string
	Archived bool
}

var ErrTargetExists = errors.New("the envelope already has a target")

// BeforeSave validates the target's type-specific fields.
func (t *Target) BeforeSave(_ *gorm.DB) error {
	return t.Definition().Validate()
}

// Definition returns the evaluator representation of the target.
func (t Target) Definition() targets.Target {
	return targets.Target{
		Type:         t.Type,
		Amount:       t.Amount,
		TargetAmount: t.TargetAmount,
		TargetMonth:  t.TargetMonth,
		StartMonth:   t.StartMonth,
	}
}

// ActiveTargets returns the unarchived targets keyed by envelope.
func ActiveTargets(db *gorm.DB) (map[uuid.UUID]targets.Target, error) {
	var rows []Target
	err := db.Where("targets.archived = ?", false).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]targets.Target, len(rows))
	for _, row := range rows {
		out[row.EnvelopeID] = row.Definition()
	}

	return out, nil
}
