package forecast

import (
	"fmt"
	"math/rand"
	"time"
)

// Summaries is the fixed vocabulary the sample generator draws from,
// ordered roughly coldest to hottest.
var Summaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

// Record is a single day's forecast as served over the wire.
type Record struct {
	Date    string `json:"date"`
	TempC   int    `json:"tempC"`
	Summary string `json:"summary"`
}

// Sample returns n freshly generated records, one per day starting
// tomorrow. Temperatures fall in [-20, 55]. Records are never persisted;
// every call produces new data.
func Sample(n int) []Record {
	records := make([]Record, n)
	now := time.Now()
	for i := range records {
		day := now.AddDate(0, 0, i+1)
		records[i] = Record{
			Date:    fmt.Sprintf("%d/%d", int(day.Month()), day.Day()),
			TempC:   rand.Intn(76) - 20,
			Summary: Summaries[rand.Intn(len(Summaries))],
		}
	}
	return records
}
