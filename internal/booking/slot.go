package booking

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Period is a teaching period within a school day. The school day has ten
// periods; 1-5 belong to the morning session and 6-10 to the afternoon.
type Period int

const (
	// PeriodMin is the first teaching period of the day.
	PeriodMin Period = 1
	// PeriodMax is the last teaching period of the day.
	PeriodMax Period = 10

	morningLast Period = 5
)

// Valid reports whether the period lies in the school day's period range.
func (p Period) Valid() bool {
	return p >= PeriodMin && p <= PeriodMax
}

// Session returns the session the period belongs to.
func (p Period) Session() Session {
	if p <= morningLast {
		return SessionMorning
	}
	return SessionAfternoon
}

// SessionOrdinal returns the period's position within its own session, so
// afternoon period 7 is displayed as "period 2 (afternoon)".
func (p Period) SessionOrdinal() int {
	if p <= morningLast {
		return int(p)
	}
	return int(p - morningLast)
}

// Session is a display-level grouping of periods. It is derived from the
// period and never stored.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
)

// Periods returns the ascending period range covered by the session.
func (s Session) Periods() []Period {
	first, last := PeriodMin, morningLast
	if s == SessionAfternoon {
		first, last = morningLast+1, PeriodMax
	}
	out := make([]Period, 0, last-first+1)
	for p := first; p <= last; p++ {
		out = append(out, p)
	}
	return out
}

// ParseSession maps a caller supplied session token to a session, defaulting
// to morning for anything unrecognised.
func ParseSession(value string) Session {
	if strings.EqualFold(strings.TrimSpace(value), string(SessionAfternoon)) {
		return SessionAfternoon
	}
	return SessionMorning
}

// ParsePeriodTokens converts caller supplied period tokens into periods.
// Non-numeric tokens are dropped silently; numeric values are kept even when
// out of range so NormalizePeriods decides their fate.
func ParsePeriodTokens(tokens []string) []Period {
	out := make([]Period, 0, len(tokens))
	for _, token := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			continue
		}
		out = append(out, Period(n))
	}
	return out
}

// NormalizePeriods deduplicates the requested periods, drops values outside
// the valid range, and returns the remainder in ascending order.
func NormalizePeriods(periods []Period) []Period {
	seen := make(map[Period]struct{}, len(periods))
	out := make([]Period, 0, len(periods))
	for _, p := range periods {
		if !p.Valid() {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// dateLayout is the wire format for calendar dates crossing the boundary.
const dateLayout = "2006-01-02"

// ParseDate parses an ISO-8601 calendar date. Unparseable input is rejected,
// never coerced.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(value))
}

// FormatDate renders a calendar date in the ISO-8601 wire format.
func FormatDate(day time.Time) string {
	return day.Format(dateLayout)
}

// NormalizeDay truncates a timestamp to its calendar date in UTC so that
// equal dates compare equal regardless of the original clock time.
func NormalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
