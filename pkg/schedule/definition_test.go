package schedule_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

func TestLoadDefinition(t *testing.T) {
	s, err := schedule.LoadDefinition(filepath.Join("testdata", "sample.toml"))
	require.NoError(t, err)
	require.Len(t, s.Entries, 3)

	north, south := s.Entries[0].Route, s.Entries[1].Route
	assert.Same(t, north, s.Entries[2].Route, "trips on one route id share the route")
	assert.NotSame(t, north, south)

	require.Len(t, north.Stops, 2)
	require.Len(t, south.Stops, 3)
	assert.Same(t, north.Stops[1], south.Stops[1], "white-house is shared between routes")
	assert.Same(t, south.Stops[0], south.Stops[2], "lincoln appears twice on the south route")

	corner, ok := north.Stops[0].(*schedule.CornerStop)
	require.True(t, ok, "24th-10th should be a corner stop")
	assert.Equal(t, "24th Street and 10th Avenue", corner.Description())
	assert.True(t, corner.Lat.Equal(schedule.Position{Degrees: 34, Minutes: 135, Seconds: 52.56}))

	assert.Equal(t, schedule.Trip{Hour: 7, Minute: 17, Driver: "ted"}, s.Entries[1].Trip)
	assert.Equal(t, schedule.Summary{Trips: 3, Routes: 2, Stops: 3, Corners: 1, Destinations: 2}, schedule.Summarize(s))
}

func TestDefinitionRoundTripsThroughArchive(t *testing.T) {
	s, err := schedule.LoadDefinition(filepath.Join("testdata", "sample.toml"))
	require.NoError(t, err)

	got := roundTrip(t, s)
	assert.True(t, schedule.Equal(s, got))
	assert.True(t, schedule.SameShape(s, got))
}

func TestParseDefinitionErrors(t *testing.T) {
	const stop = `
[[stop]]
id = "a"
kind = "destination"
name = "A"
`
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"syntax", `[[stop]`, "parse schedule definition"},
		{"unknown key", stop + "colour = \"red\"\n", "unknown keys"},
		{"bad id", "[[stop]]\nid = \"a/b\"\nkind = \"destination\"\nname = \"A\"\n", "invalid stop id"},
		{"duplicate stop", stop + stop, "duplicate stop"},
		{"unknown kind", "[[stop]]\nid = \"a\"\nkind = \"kiosk\"\n", "unknown kind"},
		{"corner without streets", "[[stop]]\nid = \"a\"\nkind = \"corner\"\nstreet1 = \"Main\"\n", "needs street1 and street2"},
		{"unknown stop", stop + "[[route]]\nid = \"r\"\nstops = [\"a\", \"b\"]\n", `unknown stop "b"`},
		{"unknown route", stop + "[[trip]]\nroute = \"r\"\nhour = 1\nminute = 2\n", `unknown route "r"`},
		{"bad time", stop + "[[route]]\nid = \"r\"\nstops = [\"a\"]\n[[trip]]\nroute = \"r\"\nhour = 24\nminute = 0\n", "invalid time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := schedule.ParseDefinition(strings.NewReader(tt.toml))
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, aerrors.Is(err, aerrors.ErrCodeInvalidInput), "code = %s", aerrors.GetCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDefinitionMissing(t *testing.T) {
	_, err := schedule.LoadDefinition(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, aerrors.Is(err, aerrors.ErrCodeNotFound))
}
