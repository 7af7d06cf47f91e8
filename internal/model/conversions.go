package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD layout used for query parameters and cache keys.
const DateLayout = "2006-01-02"

// DateKey identifies one calendar day of conversions. It is the cache key and the
// value sent upstream as the date query parameter.
//
// A DateKey only guarantees digit ranges (year 2000-2100, month 1-12, day 1-31).
// Impossible days such as 2024-02-31 are valid keys; use Time to get a real date.
type DateKey struct {
	year  int
	month int
	day   int
}

// NewDateKey builds a DateKey from its components without range checks.
// Use validation.ValidateDate for untrusted input.
func NewDateKey(year, month, day int) DateKey {
	return DateKey{year: year, month: month, day: day}
}

// DateKeyFromTime returns the DateKey of t's calendar day.
func DateKeyFromTime(t time.Time) DateKey {
	return DateKey{year: t.Year(), month: int(t.Month()), day: t.Day()}
}

// String formats the key as YYYY-MM-DD.
func (k DateKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.year, k.month, k.day)
}

// IsZero reports whether the key holds no value.
func (k DateKey) IsZero() bool {
	return k == DateKey{}
}

// Time converts the key to midnight UTC of that day.
// It fails for keys that are not real calendar dates.
func (k DateKey) Time() (time.Time, error) {
	return time.Parse(DateLayout, k.String())
}

// DateRange is an inclusive span of consecutive calendar days.
type DateRange struct {
	From DateKey
	To   DateKey
	// start is From as a real date; Days walks forward from it.
	start time.Time
	days  int
}

// NewDateRange builds a range starting at start and covering days calendar days.
// Callers are expected to have validated the bounds.
func NewDateRange(start time.Time, days int) DateRange {
	start = start.UTC()
	return DateRange{
		From:  DateKeyFromTime(start),
		To:    DateKeyFromTime(start.AddDate(0, 0, days-1)),
		start: start,
		days:  days,
	}
}

// Len returns the number of days in the range, both ends included.
func (r DateRange) Len() int {
	return r.days
}

// Days returns every day of the range in ascending order.
func (r DateRange) Days() []DateKey {
	keys := make([]DateKey, 0, r.days)
	for i := 0; i < r.days; i++ {
		keys = append(keys, DateKeyFromTime(r.start.AddDate(0, 0, i)))
	}
	return keys
}

// ConversionsPayload is one day of data from the reports API.
// Raw is the body exactly as received; Conversions holds the decoded list,
// whose records are passed through without inspection.
type ConversionsPayload struct {
	Raw         json.RawMessage
	Conversions []json.RawMessage
}

// ConversionsResponse is the body returned for a range query.
type ConversionsResponse struct {
	Conversions []json.RawMessage `json:"conversions"`
}
