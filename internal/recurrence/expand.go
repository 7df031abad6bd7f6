package recurrence

import (
	"time"

	"github.com/Tantanok221/agentbudget/internal/types"
	"golang.org/x/exp/slices"
)

// Expand returns all occurrence dates of a rule within [from, to], in
// ascending order without duplicates.
//
// Every returned date D satisfies start <= D, D <= end (when an end
// date is set), from <= D <= to, and lies on the rule's interval grid
// anchored at start. Expansion never iterates day by day from start:
// the first grid point at or after the window is computed directly, so
// far-future queries stay cheap.
func Expand(rule Rule, start types.Date, end *types.Date, from, to types.Date) ([]types.Date, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	hi := to
	if end != nil && end.Before(hi) {
		hi = *end
	}
	lo := types.MaxDate(start, from)
	if hi.Before(lo) {
		return []types.Date{}, nil
	}

	switch rule.Freq {
	case FrequencyDaily:
		return expandDaily(start, rule.Interval, lo, hi), nil
	case FrequencyWeekly:
		return expandWeekly(start, rule.Weekdays, rule.Interval, lo, hi), nil
	case FrequencyMonthly:
		return expandMonthly(start, rule.MonthDay, rule.Interval, lo, hi), nil
	case FrequencyYearly:
		return expandYearly(start, time.Month(rule.Month), rule.MonthDay, rule.Interval, lo, hi), nil
	}

	// Unreachable, Validate rejects unknown frequencies.
	return nil, ErrRuleFrequency
}

// ceilDiv is ceiling division for non-negative n and positive d.
func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

func expandDaily(start types.Date, interval int, lo, hi types.Date) []types.Date {
	// First grid point at or after lo.
	offset := start.DaysUntil(lo)
	k := 0
	if offset > 0 {
		k = ceilDiv(offset, interval)
	}

	out := []types.Date{}
	for d := start.AddDays(k * interval); !d.After(hi); d = d.AddDays(interval) {
		out = append(out, d)
	}
	return out
}

func expandWeekly(start types.Date, days []Weekday, interval int, lo, hi types.Date) []types.Date {
	out := []types.Date{}

	// Each selected weekday forms an independent sub-sequence anchored
	// at its first occurrence on or after the start date.
	for _, w := range days {
		anchor := start
		for anchor.Weekday() != weekdays[w] {
			anchor = anchor.AddDays(1)
		}

		step := 7 * interval
		offset := anchor.DaysUntil(lo)
		k := 0
		if offset > 0 {
			k = ceilDiv(offset, step)
		}

		for d := anchor.AddDays(k * step); !d.After(hi); d = d.AddDays(step) {
			out = append(out, d)
		}
	}

	slices.SortFunc(out, types.Date.Compare)
	return slices.CompactFunc(out, types.Date.Equal)
}

func expandMonthly(start types.Date, monthDay MonthDay, interval int, lo, hi types.Date) []types.Date {
	startIdx := start.Month().Index()

	// First month on the grid at or after lo's month. The day within
	// the month can place an occurrence before lo or start, those are
	// filtered below.
	idx := max(startIdx, lo.Month().Index())
	if mod := (idx - startIdx) % interval; mod != 0 {
		idx += interval - mod
	}

	out := []types.Date{}
	for ; ; idx += interval {
		m := types.MonthFromIndex(idx)
		t := m.Start()
		d := types.NewDate(t.Year(), t.Month(), monthDay.Resolve(t.Year(), t.Month()))

		if d.After(hi) {
			break
		}
		if !d.Before(lo) && !d.Before(start) {
			out = append(out, d)
		}
	}
	return out
}

func expandYearly(start types.Date, month time.Month, monthDay MonthDay, interval int, lo, hi types.Date) []types.Date {
	startYear := start.Time().Year()

	year := max(startYear, lo.Time().Year())
	if mod := (year - startYear) % interval; mod != 0 {
		year += interval - mod
	}

	out := []types.Date{}
	for ; ; year += interval {
		d := types.NewDate(year, month, monthDay.Resolve(year, month))

		if d.After(hi) {
			break
		}
		if !d.Before(lo) && !d.Before(start) {
			out = append(out, d)
		}
	}
	return out
}
