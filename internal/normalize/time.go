package normalize

import (
	"strings"
	"time"

	"github.com/relvacode/iso8601"
)

// Layouts tried when iso8601 rejects the input, chiefly space-separated and
// hour-only extended forms and the basic (separator-free) format.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15Z07:00",
	"2006-01-02T15Z0700",
	"2006-01-02T15",
	"2006-01-02",
	"20060102T150405.999999999Z0700",
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102T1504Z0700",
	"20060102T1504",
	"20060102T15Z0700",
	"20060102T15",
	"20060102",
}

// ISOTime parses an ISO-8601 timestamp in extended or basic format. The
// encoded offset is preserved; strings without one are read as UTC.
func ISOTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if len(raw) >= 10 && raw[4] == '-' {
		if ts, err := iso8601.ParseString(raw); err == nil {
			return ts, true
		}
	}
	for _, layout := range fallbackLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
