package util

import (
	"strconv"
	"time"
)

// seriesLayouts are the timestamp key formats seen in provider time series.
var seriesLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime tries RFC3339, provider date layouts, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range seriesLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// LatestKey returns the key of m with the greatest parsed timestamp.
// ok is false when m is empty or any key fails to parse.
func LatestKey[V any](m map[string]V) (key string, at time.Time, ok bool) {
	for k := range m {
		t, parsed := ParseTime(k)
		if !parsed {
			return "", time.Time{}, false
		}
		if !ok || t.After(at) {
			key, at, ok = k, t, true
		}
	}
	return key, at, ok
}
