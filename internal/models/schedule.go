package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Tantanok221/agentbudget/internal/recurrence"
	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Schedule is a recurring transaction template. The recurrence rule is
// stored as JSON text and decoded through the recurrence package, never
// consumed raw.
type Schedule struct {
	DefaultModel
	Name       string
	Account    Account `json:"-"`
	AccountID  uuid.UUID
	Envelope   *Envelope `json:"-"`
	EnvelopeID *uuid.UUID
	Amount     int64
	Payee      *Payee `json:"-"`
	PayeeID    *uuid.UUID
	PayeeName  string
	Memo       string
	RuleJSON   string
	StartDate  types.Date
	EndDate    *types.Date
	Archived   bool
}

// SchedulePosting marks one occurrence of a schedule as posted. The
// unique index over schedule and occurrence date makes posting
// idempotent.
type SchedulePosting struct {
	DefaultModel
	Schedule       Schedule  `json:"-"`
	ScheduleID     uuid.UUID `gorm:"uniqueIndex:schedule_posting_occurrence"`
	OccurrenceDate types.Date `gorm:"uniqueIndex:schedule_posting_occurrence"`
	Transaction    Transaction `json:"-"`
	TransactionID  uuid.UUID
}

var (
	ErrScheduleNameEmpty  = errors.New("the schedule name must not be empty")
	ErrScheduleAmountZero = errors.New("the schedule amount must not be zero")
	ErrEndBeforeStart     = errors.New("the end date must not be before the start date")
	ErrScheduleArchived   = errors.New("the schedule is archived")
	ErrAlreadyPosted      = errors.New("the occurrence has already been posted")
	ErrOccurrenceID       = errors.New("the occurrence ID is not valid")
)

// occurrenceIDPattern reverses OccurrenceID.
var occurrenceIDPattern = regexp.MustCompile(`^occ_([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})_([0-9]{4}-[0-9]{2}-[0-9]{2})$`)

// BeforeSave validates the schedule. The stored rule must decode so
// that a schedule can never be created with a rule the expander would
// reject later.
func (s *Schedule) BeforeSave(_ *gorm.DB) error {
	s.Name = strings.TrimSpace(s.Name)
	s.PayeeName = strings.TrimSpace(s.PayeeName)
	s.Memo = strings.TrimSpace(s.Memo)

	if s.Name == "" {
		return ErrScheduleNameEmpty
	}
	if s.Amount == 0 {
		return ErrScheduleAmountZero
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return ErrEndBeforeStart
	}

	_, err := recurrence.Decode(s.RuleJSON)
	return err
}

// Rule decodes the stored recurrence rule.
func (s Schedule) Rule() (recurrence.Rule, error) {
	return recurrence.Decode(s.RuleJSON)
}

// OccurrenceID returns the stable identity of one occurrence of the
// schedule.
func (s Schedule) OccurrenceID(date types.Date) string {
	return fmt.Sprintf("occ_%s_%s", s.ID, date)
}

// ParseOccurrenceID reverses OccurrenceID into the schedule ID and the
// occurrence date.
func ParseOccurrenceID(occurrenceID string) (uuid.UUID, types.Date, error) {
	match := occurrenceIDPattern.FindStringSubmatch(occurrenceID)
	if match == nil {
		return uuid.Nil, types.Date{}, fmt.Errorf("%w: %q", ErrOccurrenceID, occurrenceID)
	}

	id, err := uuid.Parse(match[1])
	if err != nil {
		return uuid.Nil, types.Date{}, fmt.Errorf("%w: %q", ErrOccurrenceID, occurrenceID)
	}

	date, err := types.ParseDate(match[2])
	if err != nil {
		return uuid.Nil, types.Date{}, fmt.Errorf("%w: %q", ErrOccurrenceID, occurrenceID)
	}

	return id, date, nil
}

// Occurrence is one due, not yet posted occurrence of a schedule.
type Occurrence struct {
	OccurrenceID string     `json:"occurrenceId"`
	ScheduleID   uuid.UUID  `json:"scheduleId"`
	Date         types.Date `json:"date"`
	Name         string     `json:"name"`
	Amount       int64      `json:"amount"`
	AccountID    uuid.UUID  `json:"accountId"`
	EnvelopeID   *uuid.UUID `json:"envelopeId"`
	PayeeName    string     `json:"payeeName,omitempty"`
	Memo         string     `json:"memo,omitempty"`
}

// DueOccurrences expands all unarchived schedules over [from, to] and
// returns the occurrences that have not been posted yet, ascending by
// date.
//
// A schedule whose stored rule fails to decode is skipped with a
// warning instead of aborting the scan, so one broken schedule cannot
// hide every other schedule's due items.
func DueOccurrences(db *gorm.DB, from, to types.Date) ([]Occurrence, []string, error) {
	var schedules []Schedule
	err := db.Where("schedules.archived = ?", false).Order("schedules.name ASC").Find(&schedules).Error
	if err != nil {
		return nil, nil, err
	}

	occurrences := []Occurrence{}
	warnings := []string{}

	for _, schedule := range schedules {
		rule, err := schedule.Rule()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("schedule %q: %s", schedule.Name, err))
			continue
		}

		dates, err := recurrence.Expand(rule, schedule.StartDate, schedule.EndDate, from, to)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("schedule %q: %s", schedule.Name, err))
			continue
		}
		if len(dates) == 0 {
			continue
		}

		var posted []SchedulePosting
		err = db.Where("schedule_id = ? AND occurrence_date IN ?", schedule.ID, dates).Find(&posted).Error
		if err != nil {
			return nil, nil, err
		}

		postedDates := make(map[string]bool, len(posted))
		for _, p := range posted {
			postedDates[p.OccurrenceDate.String()] = true
		}

		for _, date := range dates {
			if postedDates[date.String()] {
				continue
			}

			occurrences = append(occurrences, Occurrence{
				OccurrenceID: schedule.OccurrenceID(date),
				ScheduleID:   schedule.ID,
				Date:         date,
				Name:         schedule.Name,
				Amount:       schedule.Amount,
				AccountID:    schedule.AccountID,
				EnvelopeID:   schedule.EnvelopeID,
				PayeeName:    schedule.PayeeName,
				Memo:         schedule.Memo,
			})
		}
	}

	slices.SortStableFunc(occurrences, func(a, b Occurrence) int {
		return a.Date.Compare(b.Date)
	})

	return occurrences, warnings, nil
}

// PostOccurrence turns one occurrence into a real transaction.
//
// The transaction, its envelope split and the posting marker are
// written atomically. The posting marker's unique index rejects a
// second post of the same occurrence, so the operation is idempotent
// under concurrent calls and retries.
func PostOccurrence(db *gorm.DB, occurrenceID string) (Transaction, error) {
	scheduleID, date, err := ParseOccurrenceID(occurrenceID)
	if err != nil {
		return Transaction{}, err
	}

	var schedule Schedule
	err = db.First(&schedule, scheduleID).Error
	if err != nil {
		return Transaction{}, err
	}
	if schedule.Archived {
		return Transaction{}, ErrScheduleArchived
	}

	transaction := Transaction{
		AccountID: schedule.AccountID,
		PostedAt:  date.Time(),
		Amount:    schedule.Amount,
		PayeeID:   schedule.PayeeID,
		PayeeName: schedule.PayeeName,
		Memo:      schedule.Memo,
		Cleared:   ClearedPending,
	}
	if schedule.EnvelopeID != nil {
		transaction.Splits = []TransactionSplit{
			{EnvelopeID: *schedule.EnvelopeID, Amount: schedule.Amount},
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		posting := SchedulePosting{
			ScheduleID:     schedule.ID,
			OccurrenceDate: date,
		}

		// Claim the occurrence first so a duplicate post fails before
		// any transaction is written.
		if err := tx.Create(&posting).Error; err != nil {
			return err
		}

		if err := transaction.Create(tx); err != nil {
			return err
		}

		return tx.Model(&posting).Update("transaction_id", transaction.ID).Error
	})
	if err != nil {
		return Transaction{}, err
	}

	return transaction, nil
}
