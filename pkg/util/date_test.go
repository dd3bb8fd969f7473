package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeProviderLayouts(t *testing.T) {
	for _, s := range []string{"2020-02-25", "2020-02-25 16:00", "2020-02-25 16:00:00"} {
		if _, ok := ParseTime(s); !ok {
			t.Fatalf("expected %q to parse", s)
		}
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestLatestKeyPicksMaxTimestamp(t *testing.T) {
	m := map[string]int{
		"2020-02-21": 1,
		"2020-02-25": 3,
		"2020-02-24": 2,
	}
	key, at, ok := LatestKey(m)
	if !ok {
		t.Fatalf("expected ok")
	}
	if key != "2020-02-25" || m[key] != 3 {
		t.Fatalf("unexpected key %q", key)
	}
	if at.Day() != 25 {
		t.Fatalf("unexpected time %v", at)
	}
}

func TestLatestKeyRejectsGarbage(t *testing.T) {
	if _, _, ok := LatestKey(map[string]int{}); ok {
		t.Fatalf("empty map must not be ok")
	}
	if _, _, ok := LatestKey(map[string]int{"2020-02-25": 1, "yesterday": 2}); ok {
		t.Fatalf("unparseable key must not be ok")
	}
}
