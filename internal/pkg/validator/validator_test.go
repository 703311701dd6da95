package validator

import (
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"1", 1, true},
		{" 42 ", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseID(c.input)
		if ok != c.wantOK || got != c.want {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", c.input, got, ok, c.want, c.wantOK)
		}
	}
}

func TestIsValidDateTime(t *testing.T) {
	valid := map[string]time.Time{
		"2025-01-10T10:00:00Z":          time.Date(2025, time.January, 10, 10, 0, 0, 0, time.UTC),
		"2025-01-10T10:00:00.000Z":      time.Date(2025, time.January, 10, 10, 0, 0, 0, time.UTC),
		"2025-01-10T12:00:00+02:00":     time.Date(2025, time.January, 10, 10, 0, 0, 0, time.UTC),
		"2025-01-10T10:00:00.123456789Z": time.Date(2025, time.January, 10, 10, 0, 0, 123456789, time.UTC),
	}
	for input, want := range valid {
		got, ok := IsValidDateTime(input)
		if !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", input)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("IsValidDateTime(%q) = %v, want %v", input, got, want)
		}
	}

	invalid := []string{"", "2025-01-10", "2025-01-10 10:00:00", "tomorrow", "2025-13-10T10:00:00Z"}
	for _, input := range invalid {
		if _, ok := IsValidDateTime(input); ok {
			t.Errorf("IsValidDateTime(%q) = true, want false", input)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "teacherId", Message: "teacherId is required"},
		{Field: "scheduledAt", Message: "scheduledAt must be an ISO-8601 timestamp"},
	}
	if got, want := errs.Error(), "teacherId: teacherId is required; scheduledAt: scheduledAt must be an ISO-8601 timestamp"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	m := errs.ToMap()
	if len(m) != 2 || m["teacherId"] != "teacherId is required" {
		t.Errorf("ToMap() = %v", m)
	}
}
