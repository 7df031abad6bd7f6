package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrMonthFormat = errors.New("month must be in YYYY-MM format")
)

// Date is a calendar day without a time or timezone component.
// Schedule and occurrence dates use this type.
type Date time.Time

// NewDate returns a new Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the Date a time instant falls on, in UTC.
func DateOf(t time.Time) Date {
	year, month, day := t.UTC().Date()
	return NewDate(year, month, day)
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
	}

	return DateOf(t), nil
}

// String returns the date formatted as YYYY-MM-DD.
func (d Date) String() string {
	return time.Time(d).Format("2006-01-02")
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}

	date, err := ParseDate(value)
	if err != nil {
		return err
	}

	*d = date
	return nil
}

// Scan reads the value from the database.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		date, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = date
	case []byte:
		date, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = date
	case time.Time:
		*d = DateOf(v)
	case nil:
		*d = Date{}
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}

	return nil
}

// Value returns the value for the SQL driver to write to the database.
// Dates are stored as YYYY-MM-DD strings so that lexicographic
// comparison in SQL matches chronological order.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Date) GormDataType() string {
	return "text"
}

// IsZero reports if the date is the zero value.
func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

// Time returns the instant the day starts at, midnight UTC.
func (d Date) Time() time.Time {
	return time.Time(d)
}

// Month returns the Month the date falls in.
func (d Date) Month() Month {
	return MonthOf(time.Time(d))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return time.Time(d).Weekday()
}

// Day returns the day of the month.
func (d Date) Day() int {
	return time.Time(d).Day()
}

// AddDays returns the date the given number of days later.
func (d Date) AddDays(days int) Date {
	return Date(time.Time(d).AddDate(0, 0, days))
}

// DaysUntil returns the number of days from d to e. It is negative when
// e is before d.
func (d Date) DaysUntil(e Date) int {
	return int(time.Time(e).Sub(time.Time(d)).Hours() / 24)
}

// Before reports whether the date d is before e.
func (d Date) Before(e Date) bool {
	return time.Time(d).Before(time.Time(e))
}

// After reports whether the date d is after e.
func (d Date) After(e Date) bool {
	return time.Time(d).After(time.Time(e))
}

// Equal reports whether d and e represent the same day.
func (d Date) Equal(e Date) bool {
	return time.Time(d).Equal(time.Time(e))
}

// Compare returns -1, 0 or 1 depending on whether d is before, equal to
// or after e.
func (d Date) Compare(e Date) int {
	return time.Time(d).Compare(time.Time(e))
}

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// DaysIn returns the number of days in a month.
func DaysIn(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LastDay returns the last day of the month.
func (m Month) LastDay() Date {
	t := time.Time(m)
	return NewDate(t.Year(), t.Month(), DaysIn(t.Year(), t.Month()))
}
