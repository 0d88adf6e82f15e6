package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/normalize"
)

// Slot is one hour-long bucket of departures.
type Slot struct {
	Hour  int
	Label string
	Count int
}

// SlotLabel formats the bucket starting at hour, e.g. "23:00-00:00".
func SlotLabel(hour int) string {
	return fmt.Sprintf("%02d:00-%02d:00", hour, (hour+1)%24)
}

// minEpochDigits separates epoch milliseconds from basic-format dates
// such as 20240301.
const minEpochDigits = 9

// ParseDeparture reads an ISO-8601 timestamp, or epoch milliseconds written as
// digits. ISO values keep their encoded hour; epoch values are read in UTC.
func ParseDeparture(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if ts, ok := normalize.ISOTime(raw); ok {
		return ts, true
	}
	if len(raw) < minEpochDigits {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// Histogram buckets departures by hour of day.
type Histogram struct {
	index map[int]int
	slots []Slot
}

// DepartureHistogram buckets every record with a parseable departure time.
// Records without one are skipped.
func DepartureHistogram(records []models.FlightRecord) *Histogram {
	h := &Histogram{index: make(map[int]int)}
	for _, rec := range records {
		if rec.DepartureTime == "" {
			continue
		}
		ts, ok := ParseDeparture(rec.DepartureTime)
		if !ok {
			continue
		}
		h.add(ts.Hour())
	}
	return h
}

func (h *Histogram) add(hour int) {
	if i, ok := h.index[hour]; ok {
		h.slots[i].Count++
		return
	}
	h.index[hour] = len(h.slots)
	h.slots = append(h.slots, Slot{Hour: hour, Label: SlotLabel(hour), Count: 1})
}

// Len is the number of non-empty slots.
func (h *Histogram) Len() int {
	return len(h.slots)
}

// PeakHours returns the n busiest slots, ties in first-seen order.
func (h *Histogram) PeakHours(n int) []Slot {
	out := make([]Slot, len(h.slots))
	copy(out, h.slots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Chronological returns every slot ordered by start hour.
func (h *Histogram) Chronological() []Slot {
	out := make([]Slot, len(h.slots))
	copy(out, h.slots)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Hour < out[j].Hour
	})
	return out
}
