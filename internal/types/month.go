// Package types implements special types for agentbudget.
package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Month is a month in a specific year.
type Month time.Time

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

// MarshalJSON implements the json.Marshaler interface.
// The output is the YYYY-MM string.
func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// The month is expected to be a YYYY-MM string. A YYYY-MM-DD string is
// also accepted, with its day ignored.
func (m *Month) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}

	month, err := ParseMonth(value)
	if err != nil {
		return err
	}

	*m = month
	return nil
}

// MonthOf returns the Month in which a time occurs, in UTC.
func MonthOf(t time.Time) Month {
	year, month, _ := t.UTC().Date()
	return NewMonth(year, month)
}

// ParseMonth parses a "YYYY-MM" string and returns the Month value it
// represents. A full date in "YYYY-MM-DD" format is also accepted, the
// day is ignored.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
	}
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrMonthFormat, s)
	}

	return MonthOf(t), nil
}

// Scan reads the value from the database.
func (m *Month) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		month, err := ParseMonth(v)
		if err != nil {
			return err
		}
		*m = month
	case []byte:
		month, err := ParseMonth(string(v))
		if err != nil {
			return err
		}
		*m = month
	case time.Time:
		*m = MonthOf(v)
	case nil:
		*m = Month{}
	default:
		return fmt.Errorf("cannot scan %T into Month", value)
	}

	return nil
}

// Value returns the value for the SQL driver to write to the database.
// Months are stored as YYYY-MM strings so that lexicographic comparison
// in SQL matches chronological order.
func (m Month) Value() (driver.Value, error) {
	return m.String(), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Month) GormDataType() string {
	return "text"
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return time.Time(m).IsZero()
}

// Start returns the instant the month starts at, midnight UTC on the
// first day.
func (m Month) Start() time.Time {
	return time.Time(m)
}

// End returns the exclusive end instant of the month, the start of the
// following month.
func (m Month) End() time.Time {
	return time.Time(m.AddDate(0, 1))
}

// FirstDay returns the first day of the month.
func (m Month) FirstDay() Date {
	return DateOf(time.Time(m))
}

// AddDate adds a specified amount of years and months.
func (m Month) AddDate(years, months int) Month {
	return Month(time.Time(m).AddDate(years, months, 0))
}

// Index returns the number of months since year zero. It is the basis
// for interval grid arithmetic.
func (m Month) Index() int {
	t := time.Time(m)
	return t.Year()*12 + int(t.Month()) - 1
}

// MonthFromIndex is the inverse of Index.
func MonthFromIndex(idx int) Month {
	year, month := idx/12, idx%12
	if month < 0 {
		year--
		month += 12
	}
	return NewMonth(year, time.Month(month+1))
}

// MonthsUntilInclusive returns the inclusive count of months from m to n.
// For m == n it returns 1.
func (m Month) MonthsUntilInclusive(n Month) int {
	return n.Index() - m.Index() + 1
}

// Before reports whether the month instant m is before n.
func (m Month) Before(n Month) bool {
	return time.Time(m).Before(time.Time(n))
}

// After reports whether the month instant m is after n.
func (m Month) After(n Month) bool {
	return time.Time(m).After(time.Time(n))
}

// Equal reports whether m and n represent the same month.
func (m Month) Equal(n Month) bool {
	return time.Time(m).Equal(time.Time(n))
}

// Contains reports whether the time instant is in the month.
func (m Month) Contains(t time.Time) bool {
	u := t.UTC()
	return u.Year() == time.Time(m).Year() && u.Month() == time.Time(m).Month()
}
