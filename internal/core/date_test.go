package core

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 1 || d.Day() != 5 {
		t.Fatalf("unexpected date: %v", d)
	}
	if d.String() != "2025-01-05" {
		t.Fatalf("round trip: %q", d.String())
	}
	for _, bad := range []string{"", "2025-13-01", "05/01/2025", "2025-1-5"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestMonthBoundaries(t *testing.T) {
	cases := []struct {
		in, start, end string
	}{
		{"2025-01-15", "2025-01-01", "2025-01-31"},
		{"2024-02-10", "2024-02-01", "2024-02-29"},
		{"2025-02-28", "2025-02-01", "2025-02-28"},
		{"2025-12-31", "2025-12-01", "2025-12-31"},
	}
	for _, tc := range cases {
		d := MustParseDate(tc.in)
		if got := d.StartOfMonth().String(); got != tc.start {
			t.Fatalf("%s start: got %s want %s", tc.in, got, tc.start)
		}
		if got := d.EndOfMonth().String(); got != tc.end {
			t.Fatalf("%s end: got %s want %s", tc.in, got, tc.end)
		}
	}
}

func TestAddMonthsClamps(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"2025-03-31", -1, "2025-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
		{"2025-01-15", -3, "2024-10-15"},
		{"2025-10-31", -12, "2024-10-31"},
		{"2025-01-31", 1, "2025-02-28"},
	}
	for _, tc := range cases {
		if got := MustParseDate(tc.in).AddMonths(tc.n).String(); got != tc.want {
			t.Fatalf("%s %+d: got %s want %s", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestDateLabels(t *testing.T) {
	d := NewDate(2025, 8, 1)
	if d.FormatLong() != "1 Agustus 2025" {
		t.Fatalf("long: %q", d.FormatLong())
	}
	if d.FormatShort() != "1 Agu" {
		t.Fatalf("short: %q", d.FormatShort())
	}
	if d.MonthLabel() != "Agu 2025" {
		t.Fatalf("month: %q", d.MonthLabel())
	}
}

func TestRelativeTo(t *testing.T) {
	now := NewDate(2025, 6, 30)
	cases := []struct {
		d    Date
		want string
	}{
		{now, "Hari ini"},
		{now.AddDays(1), "Hari ini"},
		{now.AddDays(-1), "Kemarin"},
		{now.AddDays(-3), "3 hari yang lalu"},
		{now.AddDays(-14), "2 minggu yang lalu"},
		{now.AddDays(-65), "2 bulan yang lalu"},
		{now.AddDays(-800), "2 tahun yang lalu"},
	}
	for _, tc := range cases {
		if got := tc.d.RelativeTo(now); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.d, got, tc.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	type wrap struct {
		D Date `json:"d"`
	}
	b, err := json.Marshal(wrap{D: NewDate(2025, 2, 1)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"d":"2025-02-01"}` {
		t.Fatalf("unexpected json: %s", b)
	}

	var w wrap
	if err := json.Unmarshal([]byte(`{"d":"2025-03-04"}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.D.String() != "2025-03-04" {
		t.Fatalf("unexpected date: %s", w.D)
	}
	if err := json.Unmarshal([]byte(`{"d":"nope"}`), &w); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
