package aggregator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/airinsights/backend/internal/aggregator"
	"github.com/airinsights/backend/internal/config"
)

func TestNewLiveOrdersSources(t *testing.T) {
	agg, err := aggregator.NewLive(config.Sources{
		RegionBounds:  "-44,-10,112,154",
		RegionCountry: "Australia",
		FetchTimeout:  time.Second,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"flightradar24", "opensky"}, agg.Sources())
}

func TestNewLiveRejectsBadBounds(t *testing.T) {
	_, err := aggregator.NewLive(config.Sources{RegionBounds: "1,2,3"}, nil)
	require.Error(t, err)
}

func TestNewSchedule(t *testing.T) {
	src := aggregator.NewSchedule(config.Sources{AviationStackKey: "k", FetchTimeout: time.Second}, nil)
	require.Equal(t, "aviationstack", src.Name())
}
