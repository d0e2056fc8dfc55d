package gtfsimport

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

func ptr(v float64) *float64 { return &v }

func at(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

// testFeed has two routes. Route R1 is run by two trips with the same
// stop pattern and one short-turn trip; route R2 shares the Main St & 1st
// Ave stop.
func testFeed() *gtfs.Static {
	stops := []gtfs.Stop{
		{Id: "S1", Name: "Main St & 1st Ave", Latitude: ptr(40.5), Longitude: ptr(-73.75)},
		{Id: "S2", Name: "Central Station", Latitude: ptr(40.25), Longitude: ptr(-73.5)},
		{Id: "S3", Name: "Harbor", Latitude: ptr(40.125), Longitude: ptr(-73.25)},
	}
	r1 := &gtfs.Route{Id: "R1"}
	r2 := &gtfs.Route{Id: "R2"}

	stopTimes := func(dep time.Duration, ids ...int) []gtfs.ScheduledStopTime {
		var out []gtfs.ScheduledStopTime
		for i, id := range ids {
			out = append(out, gtfs.ScheduledStopTime{
				Stop:          &stops[id],
				StopSequence:  i + 1,
				ArrivalTime:   dep + time.Duration(i)*5*time.Minute,
				DepartureTime: dep + time.Duration(i)*5*time.Minute,
			})
		}
		return out
	}

	return &gtfs.Static{
		Stops: stops,
		Trips: []gtfs.ScheduledTrip{
			{ID: "t3", Route: r1, BlockID: "blk-b", StopTimes: stopTimes(at(9, 57), 0, 1, 2)},
			{ID: "t1", Route: r1, BlockID: "blk-a", StopTimes: stopTimes(at(6, 24), 0, 1, 2)},
			{ID: "t2", Route: r1, BlockID: "blk-a", StopTimes: stopTimes(at(7, 5), 0, 1)},
			{ID: "t4", Route: r2, BlockID: "blk-c", StopTimes: stopTimes(at(25, 10), 2, 0)},
			{ID: "empty", Route: r2},
		},
	}
}

func TestFromStatic(t *testing.T) {
	s, err := FromStatic(testFeed(), Options{})
	require.NoError(t, err)
	require.Len(t, s.Entries, 4)

	// Sorted by departure; 25:10 wraps to 1:10.
	var trips []schedule.Trip
	for _, e := range s.Entries {
		trips = append(trips, e.Trip)
	}
	assert.Equal(t, []schedule.Trip{
		{Hour: 6, Minute: 24, Driver: "blk-a"},
		{Hour: 7, Minute: 5, Driver: "blk-a"},
		{Hour: 9, Minute: 57, Driver: "blk-b"},
		{Hour: 1, Minute: 10, Driver: "blk-c"},
	}, trips)

	full, short, other := s.Entries[0].Route, s.Entries[1].Route, s.Entries[3].Route
	assert.Same(t, full, s.Entries[2].Route, "same route and stop pattern share one route")
	assert.NotSame(t, full, short, "a different stop pattern gets its own route")
	assert.Same(t, full.Stops[0], short.Stops[0])
	assert.Same(t, full.Stops[0], other.Stops[1], "stops are shared across routes")

	corner, ok := full.Stops[0].(*schedule.CornerStop)
	require.True(t, ok, "Main St & 1st Ave should be a corner stop")
	assert.Equal(t, "Main St", corner.Street1)
	assert.Equal(t, "1st Ave", corner.Street2)

	dest, ok := full.Stops[1].(*schedule.DestinationStop)
	require.True(t, ok)
	assert.Equal(t, "Central Station", dest.Name)

	assert.Equal(t, schedule.Summary{Trips: 4, Routes: 3, Stops: 3, Corners: 1, Destinations: 2}, schedule.Summarize(s))
}

func TestFromStaticOptions(t *testing.T) {
	s, err := FromStatic(testFeed(), Options{Routes: []string{"R2"}})
	require.NoError(t, err)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, "blk-c", s.Entries[0].Trip.Driver)

	s, err = FromStatic(testFeed(), Options{Limit: 2})
	require.NoError(t, err)
	require.Len(t, s.Entries, 2)
	assert.Equal(t, 6, s.Entries[0].Trip.Hour)
	assert.Equal(t, 7, s.Entries[1].Trip.Hour)

	_, err = FromStatic(testFeed(), Options{Routes: []string{"nope"}})
	assert.True(t, aerrors.Is(err, aerrors.ErrCodeInvalidInput))
}

func TestImportedScheduleRoundTrips(t *testing.T) {
	s, err := FromStatic(testFeed(), Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "feed.busarchive")
	require.NoError(t, schedule.Save(s, path))
	got, err := schedule.Load(path)
	require.NoError(t, err)

	assert.True(t, schedule.Equal(s, got))
	assert.True(t, schedule.SameShape(s, got))
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "feed.zip"), Options{})
	assert.True(t, aerrors.Is(err, aerrors.ErrCodeNotFound))
}

func TestDecimalToPosition(t *testing.T) {
	tests := []struct {
		in   float64
		want schedule.Position
	}{
		{40.5, schedule.Position{Degrees: 40, Minutes: 30, Seconds: 0}},
		{-73.75, schedule.Position{Degrees: -73, Minutes: 45, Seconds: 0}},
		{0.25, schedule.Position{Degrees: 0, Minutes: 15, Seconds: 0}},
		{-0.25, schedule.Position{Degrees: 0, Minutes: -15, Seconds: 0}},
		{10.0125, schedule.Position{Degrees: 10, Minutes: 0, Seconds: 45}},
	}
	for _, tt := range tests {
		got := DecimalToPosition(tt.in)
		assert.Equal(t, tt.want.Degrees, got.Degrees, "degrees of %v", tt.in)
		assert.Equal(t, tt.want.Minutes, got.Minutes, "minutes of %v", tt.in)
		assert.InDelta(t, tt.want.Seconds, got.Seconds, 1e-6, "seconds of %v", tt.in)
	}
	assert.True(t, math.Signbit(DecimalToPosition(-0.0001).Seconds), "tiny negative keeps its sign in seconds")
}
