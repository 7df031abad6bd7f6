// Package recurrence expands stored recurrence rules into concrete
// calendar dates. All expansion is deterministic: the same rule and
// window always produce the same dates.
package recurrence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Frequency is the base unit a rule repeats on.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Weekday names a day of the week for weekly rules.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

var weekdays = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

var (
	ErrRuleFrequency = errors.New("the rule frequency must be one of daily, weekly, monthly, yearly")
	ErrRuleInterval  = errors.New("the rule interval must be an integer >= 1")
	ErrRuleWeekdays  = errors.New("weekly rules need at least one weekday of mon, tue, wed, thu, fri, sat, sun")
	ErrRuleMonthDay  = errors.New("the rule month day must be between 1 and 31 or \"last\"")
	ErrRuleMonth     = errors.New("the rule month must be between 1 and 12")
	ErrRuleDecode    = errors.New("the stored rule could not be decoded")
)

// MonthDay is a day of the month for monthly and yearly rules. The
// value Last resolves to the actual last day of each month it is
// applied to.
type MonthDay int

// Last marks a MonthDay that resolves per month to that month's last day.
const Last MonthDay = -1

// Resolve returns the concrete day of the month, clamping numeric days
// that exceed the month's length down to its last day.
func (d MonthDay) Resolve(year int, month time.Month) int {
	days := daysIn(year, month)
	if d == Last || int(d) > days {
		return days
	}
	return int(d)
}

// MarshalJSON implements the json.Marshaler interface.
func (d MonthDay) MarshalJSON() ([]byte, error) {
	if d == Last {
		return []byte(`"last"`), nil
	}
	return []byte(strconv.Itoa(int(d))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. Accepted
// values are integers and the string "last".
func (d *MonthDay) UnmarshalJSON(data []byte) error {
	if string(data) == `"last"` {
		*d = Last
		return nil
	}

	n, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrRuleMonthDay
	}

	*d = MonthDay(n)
	return nil
}

// Rule is a recurrence rule. Which fields are meaningful depends on
// Freq:
//
//	daily:   Interval
//	weekly:  Interval, Weekdays
//	monthly: Interval, MonthDay
//	yearly:  Interval, Month, MonthDay
type Rule struct {
	Freq     Frequency `json:"freq"`
	Interval int       `json:"interval"`
	Weekdays []Weekday `json:"weekdays,omitempty"`
	MonthDay MonthDay  `json:"monthDay,omitempty"`
	Month    int       `json:"month,omitempty"`
}

// Validate checks the rule for consistency. A rule read from storage or
// from a request must pass validation before it is expanded.
func (r Rule) Validate() error {
	if r.Interval < 1 {
		return ErrRuleInterval
	}

	switch r.Freq {
	case FrequencyDaily:

	case FrequencyWeekly:
		if len(r.Weekdays) == 0 {
			return ErrRuleWeekdays
		}
		for _, w := range r.Weekdays {
			if _, ok := weekdays[w]; !ok {
				return fmt.Errorf("%w, got %q", ErrRuleWeekdays, w)
			}
		}

	case FrequencyMonthly:
		if err := r.validateMonthDay(); err != nil {
			return err
		}

	case FrequencyYearly:
		if r.Month < 1 || r.Month > 12 {
			return ErrRuleMonth
		}
		if err := r.validateMonthDay(); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w, got %q", ErrRuleFrequency, r.Freq)
	}

	return nil
}

func (r Rule) validateMonthDay() error {
	if r.MonthDay == Last {
		return nil
	}
	if r.MonthDay < 1 || r.MonthDay > 31 {
		return ErrRuleMonthDay
	}
	return nil
}

// Decode parses a stored rule and validates it. Rules are persisted as
// JSON text; a row that fails to decode here is treated as corrupt by
// callers, never silently defaulted.
func Decode(raw string) (Rule, error) {
	var rule Rule
	if err := json.Unmarshal([]byte(raw), &rule); err != nil {
		return Rule{}, fmt.Errorf("%w: %s", ErrRuleDecode, err)
	}

	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}

	return rule, nil
}

// Encode serializes a validated rule for storage.
func (r Rule) Encode() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
