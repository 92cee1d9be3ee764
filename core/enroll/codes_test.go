package enroll

import (
	"regexp"
	"testing"
	"time"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "spaces only", in: "   ", want: ""},
		{name: "already canonical", in: "CS101-FA24", want: "CS101-FA24"},
		{name: "lowercased", in: "cs101-fa24", want: "CS101-FA24"},
		{name: "padded", in: "  cs101-fa24\t", want: "CS101-FA24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCode(tt.in); got != tt.want {
				t.Errorf("NormalizeCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateCode(t *testing.T) {
	defer func() { nowFunc = time.Now }()

	tests := []struct {
		name string
		now  time.Time
		want *regexp.Regexp
	}{
		{name: "spring term", now: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), want: regexp.MustCompile(`^CS\d{3}-SP24$`)},
		{name: "fall term", now: time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC), want: regexp.MustCompile(`^CS\d{3}-FA24$`)},
		{name: "july flips to fall", now: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), want: regexp.MustCompile(`^CS\d{3}-FA25$`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nowFunc = func() time.Time { return tt.now }
			code := GenerateCode()
			if !tt.want.MatchString(code) {
				t.Errorf("GenerateCode() = %q, want match %s", code, tt.want)
			}
			if code != NormalizeCode(code) {
				t.Errorf("GenerateCode() = %q is not canonical", code)
			}
		})
	}
}
