package forecast

import (
	"fmt"
	"regexp"
	"testing"
	"time"
)

func TestSample_Count(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"zero records", 0},
		{"single record", 1},
		{"five records", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(tt.n)
			if len(got) != tt.n {
				t.Errorf("Sample(%d) returned %d records", tt.n, len(got))
			}
		})
	}
}

func TestSample_TemperatureRange(t *testing.T) {
	for _, rec := range Sample(200) {
		if rec.TempC < -20 || rec.TempC > 55 {
			t.Errorf("TempC = %d, want within [-20, 55]", rec.TempC)
		}
	}
}

func TestSample_SummaryVocabulary(t *testing.T) {
	known := make(map[string]struct{}, len(Summaries))
	for _, s := range Summaries {
		known[s] = struct{}{}
	}
	for _, rec := range Sample(100) {
		if _, ok := known[rec.Summary]; !ok {
			t.Errorf("Summary = %q, not in the fixed vocabulary", rec.Summary)
		}
	}
}

func TestSample_DateFormat(t *testing.T) {
	datePattern := regexp.MustCompile(`^\d{1,2}/\d{1,2}$`)
	records := Sample(3)
	for i, rec := range records {
		if !datePattern.MatchString(rec.Date) {
			t.Errorf("Date = %q, want M/d", rec.Date)
		}
		day := time.Now().AddDate(0, 0, i+1)
		want := fmt.Sprintf("%d/%d", int(day.Month()), day.Day())
		if rec.Date != want {
			t.Errorf("record %d Date = %q, want %q", i, rec.Date, want)
		}
	}
}
