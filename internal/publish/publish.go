// Package publish emits live flight snapshots to a message broker.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/airinsights/backend/internal/models"
)

// SnapshotEvent is one published live snapshot.
type SnapshotEvent struct {
	ID          string                `json:"id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Count       int                   `json:"count"`
	Sources     []string              `json:"sources"`
	Flights     []models.FlightRecord `json:"flights"`
}

// NewSnapshotEvent wraps flights in an event with a fresh id.
func NewSnapshotEvent(flights []models.FlightRecord, sources []string, now time.Time) SnapshotEvent {
	if flights == nil {
		flights = []models.FlightRecord{}
	}
	if sources == nil {
		sources = []string{}
	}
	return SnapshotEvent{
		ID:          uuid.NewString(),
		GeneratedAt: now.UTC(),
		Count:       len(flights),
		Sources:     sources,
		Flights:     flights,
	}
}

// Encode renders the event body.
func (e SnapshotEvent) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %s: %w", e.ID, err)
	}
	return body, nil
}

// Sink delivers encoded events.
type Sink interface {
	Publish(ctx context.Context, event SnapshotEvent) error
	Close() error
}
