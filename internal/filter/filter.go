// Package filter validates live-flight query parameters and applies them to a
// snapshot.
package filter

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/normalize"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Spec is a validated, immutable set of predicates. Nil fields are unset.
type Spec struct {
	Country  string
	OnGround *bool
	MinSpeed *float64
	MaxSpeed *float64
	Start    string
	End      string
	Limit    int
}

// ValidationError carries every violated constraint of one request.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation errors: " + strings.Join(e.Details, "; ")
}

// Parse reads country, start, end, on_ground, min_speed, max_speed and limit.
// All constraints are checked; a *ValidationError lists every violation.
func Parse(q url.Values) (Spec, error) {
	get := func(key string) string { return strings.TrimSpace(q.Get(key)) }

	var (
		spec    = Spec{Limit: DefaultLimit}
		details []string
	)

	if country := get("country"); country != "" {
		spec.Country = normalize.Country(country)
	}

	spec.Start, spec.End = get("start"), get("end")
	start, startOK := normalize.ISOTime(spec.Start)
	if spec.Start != "" && !startOK {
		details = append(details, fmt.Sprintf("Invalid date format: start %q is not ISO 8601", spec.Start))
	}
	end, endOK := normalize.ISOTime(spec.End)
	if spec.End != "" && !endOK {
		details = append(details, fmt.Sprintf("Invalid date format: end %q is not ISO 8601", spec.End))
	}
	if startOK && endOK && start.After(end) {
		details = append(details, "Start date must be before end date")
	}

	if raw := get("on_ground"); raw != "" {
		switch strings.ToLower(raw) {
		case "true", "false":
			v := strings.ToLower(raw) == "true"
			spec.OnGround = &v
		default:
			details = append(details, "on_ground parameter must be 'true' or 'false'")
		}
	}

	minSpeed, badMin := parseSpeed(get("min_speed"))
	maxSpeed, badMax := parseSpeed(get("max_speed"))
	spec.MinSpeed, spec.MaxSpeed = minSpeed, maxSpeed
	if badMin || badMax {
		details = append(details, "Speed parameters must be valid numbers")
	}
	if spec.MinSpeed != nil && *spec.MinSpeed < 0 {
		details = append(details, "min_speed must be non-negative")
	}
	if spec.MaxSpeed != nil && *spec.MaxSpeed < 0 {
		details = append(details, "max_speed must be non-negative")
	}
	if spec.MinSpeed != nil && spec.MaxSpeed != nil && *spec.MinSpeed > *spec.MaxSpeed {
		details = append(details, "min_speed must be less than or equal to max_speed")
	}

	if raw := get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			details = append(details, "limit must be a valid integer")
		case limit < 1 || limit > MaxLimit:
			details = append(details, fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
		default:
			spec.Limit = limit
		}
	}

	if len(details) > 0 {
		return Spec{}, &ValidationError{Details: details}
	}
	return spec, nil
}

func parseSpeed(raw string) (*float64, bool) {
	if raw == "" {
		return nil, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, true
	}
	return &v, false
}

// Matches reports whether every set predicate holds for rec.
func (s Spec) Matches(rec models.FlightRecord) bool {
	if s.Country != "" && (rec.OriginCountry == "" || !strings.EqualFold(rec.OriginCountry, s.Country)) {
		return false
	}
	if s.OnGround != nil && (rec.OnGround == nil || *rec.OnGround != *s.OnGround) {
		return false
	}
	speed := rec.Speed()
	if s.MinSpeed != nil && speed < *s.MinSpeed {
		return false
	}
	if s.MaxSpeed != nil && speed > *s.MaxSpeed {
		return false
	}
	return true
}

// Apply returns the matching records, stopping at the limit, and the size of
// the unfiltered snapshot.
func Apply(records []models.FlightRecord, s Spec) ([]models.FlightRecord, int) {
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]models.FlightRecord, 0, min(limit, len(records)))
	for _, rec := range records {
		if len(out) >= limit {
			break
		}
		if s.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, len(records)
}

// Applied is the echo of a Spec returned to callers; unset filters are null.
type Applied struct {
	Country  *string  `json:"country"`
	OnGround *bool    `json:"on_ground"`
	MinSpeed *float64 `json:"min_speed"`
	MaxSpeed *float64 `json:"max_speed"`
	Start    *string  `json:"start"`
	End      *string  `json:"end"`
	Limit    int      `json:"limit"`
}

// Applied renders s for the response body.
func (s Spec) Applied() Applied {
	optional := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}
	return Applied{
		Country:  optional(s.Country),
		OnGround: s.OnGround,
		MinSpeed: s.MinSpeed,
		MaxSpeed: s.MaxSpeed,
		Start:    optional(s.Start),
		End:      optional(s.End),
		Limit:    s.Limit,
	}
}
