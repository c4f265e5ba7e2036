package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// APIDateTimeFormat is the datetime layout the Web API accepts in date filters.
const APIDateTimeFormat = "2006-01-02T15:04:05-0700"

// APIDateFormat is the plain date layout the Web API accepts in date filters.
const APIDateFormat = "2006-01-02"

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d{1,3})\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// parseRelativeTime converts strings like "2 years ago" into a time in the past.
func parseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default:
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// NormalizeDateFilter turns a user supplied date into the form the Web API
// accepts. Plain dates pass through, RFC3339 timestamps and relative times
// such as "3 months ago" become API datetimes. An empty input stays empty.
func NormalizeDateFilter(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(APIDateFormat, s); err == nil {
		return s, nil
	}
	if t, err := time.Parse(APIDateTimeFormat, s); err == nil {
		return t.Format(APIDateTimeFormat), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(APIDateTimeFormat), nil
	}
	if t, err := parseRelativeTime(s, now); err == nil {
		return t.UTC().Format(APIDateTimeFormat), nil
	}
	return "", fmt.Errorf("invalid date '%s'. use YYYY-MM-DD, an RFC3339 timestamp or a relative time like '2 weeks ago'", s)
}
