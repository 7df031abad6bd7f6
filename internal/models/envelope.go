package models

import (
	"errors"
	"strings"

	"github.com/Tantanok221/agentbudget/internal/ledger"
	"gorm.io/gorm"
)

// SystemGroup is the envelope group reserved for system envelopes.
const SystemGroup = "System"

// TBBName is the default name of the To Be Budgeted envelope.
const TBBName = "To Be Budgeted"

// Envelope represents a named budget category. Money is available
// within an envelope until it is spent or moved.
type Envelope struct {
	DefaultModel
	Name   string `gorm:"uniqueIndex:envelope_name"`
	Group  string
	Note   string
	Hidden bool
	System bool
}

var (
	ErrEnvelopeNameNotUnique = errors.New("the envelope name must be unique")
	ErrEnvelopeNameEmpty     = errors.New("the envelope name must not be empty")
	ErrEnvelopeIsSystem      = errors.New("system envelopes cannot be modified")
)

// BeforeSave trims whitespace and defaults the group.
func (e *Envelope) BeforeSave(_ *gorm.DB) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Group = strings.TrimSpace(e.Group)
	e.Note = strings.TrimSpace(e.Note)

	if e.Name == "" {
		return ErrEnvelopeNameEmpty
	}

	if e.Group == "" {
		e.Group = "General"
	}

	return nil
}

// TBB returns the system To Be Budgeted envelope.
func TBB(db *gorm.DB) (Envelope, error) {
	var envelope Envelope
	err := db.Where(&Envelope{System: true, Name: TBBName}).First(&envelope).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return Envelope{}, ledger.ErrMissingTBB
		}
		return Envelope{}, err
	}

	return envelope, nil
}

// InitializeSystem creates the To Be Budgeted envelope if it does not
// exist yet. It is idempotent and returns the envelope in both cases.
func InitializeSystem(db *gorm.DB) (Envelope, bool, error) {
	var envelope Envelope
	err := db.Where(&Envelope{Name: TBBName}).First(&envelope).Error
	if err == nil {
		return envelope, false, nil
	}
	if !errors.Is(err, ErrResourceNotFound) {
		return Envelope{}, false, err
	}

	envelope = Envelope{
		Name:   TBBName,
		Group:  SystemGroup,
		System: true,
	}
	err = db.Create(&envelope).Error
	if err != nil {
		return Envelope{}, false, err
	}

	return envelope, true, nil
}

// LedgerEnvelopes returns all envelopes in the shape the ledger
// aggregation works on.
func LedgerEnvelopes(db *gorm.DB) ([]ledger.Envelope, error) {
	var envelopes []Envelope
	err := db.Order("envelopes.name ASC").Find(&envelopes).Error
	if err != nil {
		return nil, err
	}

	out := make([]ledger.Envelope, 0, len(envelopes))
	for _, e := range envelopes {
		out = append(out, ledger.Envelope{
			ID:     e.ID,
			Name:   e.Name,
			Group:  e.Group,
			Hidden: e.Hidden,
			System: e.System,
		})
	}

	return out, nil
}
