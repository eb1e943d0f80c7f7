package core

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the ISO calendar-date layout used for storage and exports.
const DateLayout = "2006-01-02"

// Date is a calendar date without time-of-day. The zero value means "unset".
type Date struct {
	time.Time
}

var (
	monthNamesID = [...]string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
	monthAbbrevID = [...]string{
		"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
		"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// MustParseDate is ParseDate for literals; it panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the ISO form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON shadows the promoted time.Time encoder so dates travel as
// "YYYY-MM-DD" (or null when unset).
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	unquoted, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return d.UnmarshalText([]byte(unquoted))
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), int(d.Month())+1, 0)
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths shifts d by n months, clamping the day to the target month's
// length (31 March minus one month is 28/29 February, never 3 March).
func (d Date) AddMonths(n int) Date {
	first := NewDate(d.Year(), int(d.Month())+n, 1)
	last := first.EndOfMonth().Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// MonthKey returns "YYYY-MM".
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// FormatLong renders "1 Januari 2025".
func (d Date) FormatLong() string {
	return strconv.Itoa(d.Day()) + " " + monthNamesID[d.Month()-1] + " " + strconv.Itoa(d.Year())
}

// FormatShort renders "1 Jan".
func (d Date) FormatShort() string {
	return strconv.Itoa(d.Day()) + " " + monthAbbrevID[d.Month()-1]
}

// MonthLabel renders "Jan 2025".
func (d Date) MonthLabel() string {
	return monthAbbrevID[d.Month()-1] + " " + strconv.Itoa(d.Year())
}

// MonthName renders "Januari 2025".
func (d Date) MonthName() string {
	return monthNamesID[d.Month()-1] + " " + strconv.Itoa(d.Year())
}

// RelativeTo describes d relative to now in Indonesian ("Kemarin",
// "3 hari yang lalu", ...). Future dates are reported as today.
func (d Date) RelativeTo(now Date) string {
	days := int(now.Sub(d.Time).Hours() / 24)
	switch {
	case days <= 0:
		return "Hari ini"
	case days == 1:
		return "Kemarin"
	case days < 7:
		return fmt.Sprintf("%d hari yang lalu", days)
	case days < 30:
		return fmt.Sprintf("%d minggu yang lalu", days/7)
	case days < 365:
		return fmt.Sprintf("%d bulan yang lalu", days/30)
	default:
		return fmt.Sprintf("%d tahun yang lalu", days/365)
	}
}
