// Package analytics computes the grouped sums behind the dashboard and report
// charts. Every series is laid out on a month axis that is built from the
// requested window before any record is looked at, so months without activity
// show up as zeros instead of disappearing from the chart.
package analytics

import (
	"errors"
	"fmt"
	"time"
)

// DefaultMonths is the window used when a request does not name one.
const DefaultMonths = 12

// MaxMonths bounds the axis length a caller may request.
const MaxMonths = 120

var ErrInvalidWindow = errors.New("invalid aggregation window")

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Month is a calendar month in UTC.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t, evaluated in UTC.
func MonthOf(t time.Time) Month {
	t = t.UTC()
	return Month{Year: t.Year(), Month: t.Month()}
}

// Label renders the month the way the charts expect it, e.g. "Jan 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", monthNames[m.Month-1], m.Year)
}

// Key renders the month as YYYY-MM.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start is the first instant of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// Add moves the month by n months.
func (m Month) Add(n int) Month {
	return MonthOf(m.Start().AddDate(0, n, 0))
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidWindow)
	}
	return MonthOf(t), nil
}

// Axis is a contiguous run of months ordered oldest to newest.
type Axis []Month

// MonthAxis returns the n months ending with the month of anchor.
func MonthAxis(anchor time.Time, n int) (Axis, error) {
	if n <= 0 || n > MaxMonths {
		return nil, fmt.Errorf("%w: months must be between 1 and %d", ErrInvalidWindow, MaxMonths)
	}
	last := MonthOf(anchor)
	axis := make(Axis, n)
	for i := 0; i < n; i++ {
		axis[i] = last.Add(i - (n - 1))
	}
	return axis, nil
}

// AxisFromRange returns every month from the month of start through the month of end.
func AxisFromRange(start, end time.Time) (Axis, error) {
	first, last := MonthOf(start), MonthOf(end)
	if last.Before(first) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidWindow)
	}
	var axis Axis
	for m := first; !last.Before(m); m = m.Add(1) {
		axis = append(axis, m)
		if len(axis) > MaxMonths {
			return nil, fmt.Errorf("%w: range spans more than %d months", ErrInvalidWindow, MaxMonths)
		}
	}
	return axis, nil
}

// Window returns the half-open time range [from, to) covered by the axis.
func (a Axis) Window() (from, to time.Time) {
	if len(a) == 0 {
		return time.Time{}, time.Time{}
	}
	return a[0].Start(), a[len(a)-1].End()
}

// Labels renders every month of the axis.
func (a Axis) Labels() []string {
	labels := make([]string, len(a))
	for i, m := range a {
		labels[i] = m.Label()
	}
	return labels
}

// index maps each month to its slot on the axis.
func (a Axis) index() map[Month]int {
	idx := make(map[Month]int, len(a))
	for i, m := range a {
		idx[m] = i
	}
	return idx
}

// LastCalendarMonth returns the month before the one containing now.
func LastCalendarMonth(now time.Time) Month {
	return MonthOf(now).Add(-1)
}
