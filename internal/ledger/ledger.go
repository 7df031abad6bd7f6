// Package ledger turns raw budget flows into per-envelope availability
// for a calendar month. It is pure computation: all flows are passed in
// as pre-aggregated sums and no I/O happens here.
package ledger

import (
	"errors"

	"github.com/Tantanok221/agentbudget/internal/types"
	"github.com/google/uuid"
)

// ErrMissingTBB is returned when no system "To Be Budgeted" envelope
// exists. This is a setup precondition for the whole aggregation, not a
// per-record problem, so the summary fails as a whole.
var ErrMissingTBB = errors.New("the system To Be Budgeted envelope does not exist")

// Envelope is the envelope metadata the aggregator needs.
type Envelope struct {
	ID     uuid.UUID
	Name   string
	Group  string
	Hidden bool
	System bool
}

// Flows holds the pre-aggregated sums per envelope, split into flows
// strictly before the target month ("prior") and flows within it
// ("current"). Missing keys mean zero.
type Flows struct {
	PriorBudgeted   map[uuid.UUID]int64
	CurrentBudgeted map[uuid.UUID]int64
	PriorActivity   map[uuid.UUID]int64
	CurrentActivity map[uuid.UUID]int64
	PriorMovedIn    map[uuid.UUID]int64
	CurrentMovedIn  map[uuid.UUID]int64
	PriorMovedOut   map[uuid.UUID]int64
	CurrentMovedOut map[uuid.UUID]int64
}

// EnvelopeSummary is the availability of one envelope in one month.
// All amounts are integer minor units.
type EnvelopeSummary struct {
	EnvelopeID     uuid.UUID `json:"envelopeId"`
	Name           string    `json:"name"`
	Group          string    `json:"group"`
	Hidden         bool      `json:"hidden"`
	System         bool      `json:"system"`
	Budgeted       int64     `json:"budgeted"`
	Activity       int64     `json:"activity"`
	MovedIn        int64     `json:"movedIn"`
	MovedOut       int64     `json:"movedOut"`
	AvailableStart int64     `json:"availableStart"`
	Available      int64     `json:"available"`
	Overspent      bool      `json:"overspent"`
}

// TBB is the To Be Budgeted row of a month summary.
type TBB struct {
	Budgeted       int64 `json:"budgeted"`
	Activity       int64 `json:"activity"`
	AvailableStart int64 `json:"availableStart"`
	Available      int64 `json:"available"`
}

// Totals sums the visible envelopes of a month summary.
type Totals struct {
	Budgeted       int64 `json:"budgeted"`
	Activity       int64 `json:"activity"`
	Available      int64 `json:"available"`
	OverspentCount int   `json:"overspentCount"`
}

// System identifies the system envelope a summary was computed against.
type System struct {
	TBBEnvelopeID   uuid.UUID `json:"tbbEnvelopeId"`
	TBBEnvelopeName string    `json:"tbbEnvelopeName"`
}

// Summary is the full month summary.
type Summary struct {
	Month     types.Month       `json:"month"`
	Currency  string            `json:"currency"`
	System    System            `json:"system"`
	TBB       TBB               `json:"tbb"`
	Envelopes []EnvelopeSummary `json:"envelopes"`
	Totals    Totals            `json:"totals"`
	Warnings  []string          `json:"warnings"`
}

// Summarize computes the availability of every envelope for a month.
//
// An envelope's available balance is the running rollover of its entire
// history: availableStart folds all prior budgeting, activity and moves
// in a single pass, then the current month's flows are applied on top.
// The TBB envelope is aggregated like any other; its balance works out
// because every allocation to an envelope is mirrored by an equal and
// opposite allocation to TBB at write time.
//
// Hidden envelopes are excluded from the result and the totals unless
// includeHidden is set. The TBB row is reported separately and never
// part of Envelopes.
func Summarize(month types.Month, currency string, envelopes []Envelope, flows Flows, includeHidden bool) (Summary, error) {
	var tbbID uuid.UUID
	var tbbName string
	found := false
	for _, e := range envelopes {
		if e.System {
			tbbID, tbbName = e.ID, e.Name
			found = true
			break
		}
	}
	if !found {
		return Summary{}, ErrMissingTBB
	}

	summary := Summary{
		Month:    month,
		Currency: currency,
		System: System{
			TBBEnvelopeID:   tbbID,
			TBBEnvelopeName: tbbName,
		},
		Envelopes: []EnvelopeSummary{},
		Warnings:  []string{},
	}

	for _, e := range envelopes {
		if e.Hidden && !includeHidden {
			continue
		}

		availableStart := flows.PriorBudgeted[e.ID] +
			flows.PriorActivity[e.ID] +
			flows.PriorMovedIn[e.ID] -
			flows.PriorMovedOut[e.ID]

		row := EnvelopeSummary{
			EnvelopeID:     e.ID,
			Name:           e.Name,
			Group:          e.Group,
			Hidden:         e.Hidden,
			System:         e.System,
			Budgeted:       flows.CurrentBudgeted[e.ID],
			Activity:       flows.CurrentActivity[e.ID],
			MovedIn:        flows.CurrentMovedIn[e.ID],
			MovedOut:       flows.CurrentMovedOut[e.ID],
			AvailableStart: availableStart,
		}
		row.Available = row.AvailableStart + row.Budgeted + row.Activity + row.MovedIn - row.MovedOut
		row.Overspent = row.Available < 0

		summary.Totals.Budgeted += row.Budgeted
		summary.Totals.Activity += row.Activity
		summary.Totals.Available += row.Available
		if row.Overspent {
			summary.Totals.OverspentCount++
		}

		// The TBB row counts towards the totals but is reported on its
		// own instead of in the envelope list.
		if e.ID == tbbID {
			summary.TBB = TBB{
				Budgeted:       row.Budgeted,
				Activity:       row.Activity,
				AvailableStart: row.AvailableStart,
				Available:      row.Available,
			}
			continue
		}

		summary.Envelopes = append(summary.Envelopes, row)
	}

	return summary, nil
}
