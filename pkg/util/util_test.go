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

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2025-12-19")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 19 {
		t.Fatalf("unexpected date %v", got)
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

func TestCleanNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"+239,491", 239491},
		{"-5,000", -5000},
		{"$17.50", 17.5},
		{"2.5000", 2.5},
		{"", 0},
		{"N/A", 0},
		{" 1 250 ", 1250},
	}
	for _, tc := range cases {
		if got := CleanNumber(tc.in); got != tc.want {
			t.Fatalf("CleanNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCodeFromType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"54 - Exercise of warrants", "54"},
		{"10 - Acquisition in public market", "10"},
		{"10", "10"},
		{"", "00"},
		{"   ", "00"},
	}
	for _, tc := range cases {
		if got := CodeFromType(tc.in); got != tc.want {
			t.Fatalf("CodeFromType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
