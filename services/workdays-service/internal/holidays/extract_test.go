package holidays

import (
	"strings"
	"testing"
	"time"

	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
)

func TestExtractDates(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{
			name:    "array of strings",
			payload: `["2025-01-01", "2025-01-06T00:00:00.000Z", "2025-01-01"]`,
			want:    []string{"2025-01-01", "2025-01-06"},
		},
		{
			name:    "array of records with known keys",
			payload: `[{"date":"2025-03-24","name":"San José"},{"Date":"2025-04-17"},{"fecha":"2025-04-18T05:00:00Z"}]`,
			want:    []string{"2025-03-24", "2025-04-17", "2025-04-18"},
		},
		{
			name:    "array of records scanned for first date",
			payload: `[{"b":"2025-05-01","a":"Labor day"},{"a":"2025-06-02","z":"2025-06-03"}]`,
			want:    []string{"2025-05-01", "2025-06-02"},
		},
		{
			name:    "object wrapping arrays",
			payload: `{"holidays":[{"date":"2025-07-20"},"2025-08-07","not a date"],"updated":"2025-01-15T10:00:00Z","count":2}`,
			want:    []string{"2025-07-20", "2025-08-07", "2025-01-15"},
		},
		{
			name:    "numeric date field",
			payload: `[{"date":20250101},{"date":"2025-01-06"}]`,
			want:    []string{"20250101", "2025-01-06"},
		},
		{
			name:    "scalar payload",
			payload: `"2025-01-01"`,
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDates([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ExtractDates: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("ExtractDates = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractDates_InvalidJSON(t *testing.T) {
	if _, err := ExtractDates([]byte(`{"holidays":`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFilterYear(t *testing.T) {
	got := filterYear([]string{"2024-12-25", "2025-01-01", "2025-13-01", "2025-01-01", "garbage", "2026-01-01"}, 2025)
	if len(got) != 1 || got[0] != (businesstime.Date{Year: 2025, Month: time.January, Day: 1}) {
		t.Fatalf("filterYear = %v", got)
	}
}
