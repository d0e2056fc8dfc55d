package schedule_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

func roundTrip(t *testing.T, s *schedule.Schedule) *schedule.Schedule {
	t.Helper()
	var buf bytes.Buffer
	if err := schedule.Write(s, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := schedule.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return got
}

func encoded(t *testing.T, s *schedule.Schedule) string {
	t.Helper()
	var buf bytes.Buffer
	if err := schedule.Write(s, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.String()
}

func TestSharedRouteAndStopSurviveRoundTrip(t *testing.T) {
	stop := schedule.NewCornerStop(
		schedule.Position{Degrees: 34, Minutes: 135, Seconds: 52.56},
		schedule.Position{Degrees: 134, Minutes: 22, Seconds: 78.3},
		"24th Street", "10th Avenue")
	route := &schedule.Route{}
	route.Append(stop)
	route.Append(stop)

	s := schedule.New()
	s.Append("bob", 6, 24, route)
	s.Append("alice", 9, 57, route)

	got := roundTrip(t, s)

	if len(got.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(got.Entries))
	}
	r0, r1 := got.Entries[0].Route, got.Entries[1].Route
	if r0 != r1 {
		t.Error("both trips should reference the same reconstructed route")
	}
	if r0 == route {
		t.Error("reconstructed route must be freshly allocated")
	}
	if len(r0.Stops) != 2 || r0.Stops[0] != r0.Stops[1] {
		t.Error("both route entries should reference the same reconstructed stop")
	}
	if _, ok := r0.Stops[0].(*schedule.CornerStop); !ok {
		t.Errorf("stop is %T, want *schedule.CornerStop", r0.Stops[0])
	}
}

func TestSampleRoundTrip(t *testing.T) {
	want := schedule.Sample()
	got := roundTrip(t, want)

	if !schedule.Equal(want, got) {
		t.Error("Equal(original, reloaded) = false, want true")
	}
	if !schedule.SameShape(want, got) {
		t.Error("SameShape(original, reloaded) = false, want true")
	}
	if diff := cmp.Diff(schedule.Summarize(want), schedule.Summarize(got)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	for i, e := range got.Entries {
		if e.Trip != want.Entries[i].Trip {
			t.Errorf("trip %d = %v, want %v", i, e.Trip, want.Entries[i].Trip)
		}
	}
}

func TestSamplePreservesVariants(t *testing.T) {
	got := roundTrip(t, schedule.Sample())
	route0 := got.Entries[0].Route

	tests := []struct {
		stop schedule.Stop
		kind string
		desc string
	}{
		{route0.Stops[0], "corner", "24th Street and 10th Avenue"},
		{route0.Stops[1], "corner", "State street and Cathedral Vista Lane"},
		{route0.Stops[2], "destination", "White House"},
	}
	for _, tt := range tests {
		if got := tt.stop.ArchiveVariant(); got != tt.kind {
			t.Errorf("%s: variant = %q, want %q", tt.desc, got, tt.kind)
		}
		if got := tt.stop.Description(); got != tt.desc {
			t.Errorf("Description() = %q, want %q", got, tt.desc)
		}
	}
}

func TestSampleSharesStopsAcrossRoutes(t *testing.T) {
	got := roundTrip(t, schedule.Sample())
	route0, route1 := got.Entries[0].Route, got.Entries[3].Route
	if route0 == route1 {
		t.Fatal("distinct routes were merged")
	}
	if route0.Stops[1] != route1.Stops[2] {
		t.Error("State street stop should be shared by both routes")
	}
	if route0.Stops[2] != route1.Stops[1] {
		t.Error("White House stop should be shared by both routes")
	}

	sum := schedule.Summarize(got)
	want := schedule.Summary{Trips: 6, Routes: 2, Stops: 4, Corners: 2, Destinations: 2}
	if sum != want {
		t.Errorf("Summarize = %+v, want %+v", sum, want)
	}
}

func TestDistinctEqualStopsStayDistinct(t *testing.T) {
	pos := schedule.Position{Degrees: 1, Minutes: 2, Seconds: 3}
	a := schedule.NewDestinationStop(pos, pos, "Depot")
	b := schedule.NewDestinationStop(pos, pos, "Depot")
	route := &schedule.Route{Stops: []schedule.Stop{a, b, a}}
	s := schedule.New()
	s.Append("bob", 6, 0, route)

	got := roundTrip(t, s).Entries[0].Route
	if got.Stops[0] == got.Stops[1] {
		t.Error("value-equal stops must not be merged")
	}
	if got.Stops[0] != got.Stops[2] {
		t.Error("repeated stop should stay shared")
	}
}

func TestSameShapeDetectsAliasingChanges(t *testing.T) {
	pos := schedule.Position{Degrees: 1}
	shared := schedule.NewDestinationStop(pos, pos, "Depot")
	twin := schedule.NewDestinationStop(pos, pos, "Depot")

	aliased := schedule.New()
	aliased.Append("a", 1, 0, &schedule.Route{Stops: []schedule.Stop{shared, shared}})

	split := schedule.New()
	split.Append("a", 1, 0, &schedule.Route{Stops: []schedule.Stop{shared, twin}})

	if !schedule.Equal(aliased, split) {
		t.Error("Equal should ignore sharing")
	}
	if schedule.SameShape(aliased, split) {
		t.Error("SameShape(aliased, split) = true, want false")
	}
	if schedule.SameShape(split, aliased) {
		t.Error("SameShape(split, aliased) = true, want false")
	}
}

func TestEqualDetectsDifferences(t *testing.T) {
	base := schedule.Sample()

	tests := []struct {
		name   string
		mutate func(s *schedule.Schedule)
	}{
		{"driver", func(s *schedule.Schedule) { s.Entries[0].Trip.Driver = "carol" }},
		{"dropped entry", func(s *schedule.Schedule) { s.Entries = s.Entries[:5] }},
		{"stop name", func(s *schedule.Schedule) {
			s.Entries[0].Route.Stops[2].(*schedule.DestinationStop).Name = "Capitol"
		}},
		{"variant", func(s *schedule.Schedule) {
			st := s.Entries[0].Route.Stops[2]
			s.Entries[0].Route.Stops[2] = schedule.NewCornerStop(st.Latitude(), st.Longitude(), "White", "House")
		}},
		{"seconds", func(s *schedule.Schedule) {
			s.Entries[0].Route.Stops[0].(*schedule.CornerStop).Lat.Seconds += 1e-6
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schedule.Sample()
			tt.mutate(s)
			if schedule.Equal(base, s) {
				t.Error("Equal = true, want false")
			}
		})
	}
}

func TestPositionEqual(t *testing.T) {
	p := schedule.Position{Degrees: 35, Minutes: 59, Seconds: 24.567}
	tests := []struct {
		other schedule.Position
		want  bool
	}{
		{p, true},
		{schedule.Position{Degrees: 35, Minutes: 59, Seconds: 24.567 + 1e-12}, true},
		{schedule.Position{Degrees: 35, Minutes: 59, Seconds: 24.568}, false},
		{schedule.Position{Degrees: 35, Minutes: 58, Seconds: 24.567}, false},
		{schedule.Position{Degrees: 36, Minutes: 59, Seconds: 24.567}, false},
	}
	for _, tt := range tests {
		if got := p.Equal(tt.other); got != tt.want {
			t.Errorf("Equal(%v) = %v, want %v", tt.other, got, tt.want)
		}
	}
	if got, want := p.String(), "35°59'24.567\""; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// =============================================================================
// Versions and corrupt input
// =============================================================================

func TestLoadVersion1Trips(t *testing.T) {
	s, err := schedule.Load(filepath.Join("testdata", "trip_v1.busarchive"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(s.Entries))
	}
	want := []schedule.Trip{{Hour: 6, Minute: 24}, {Hour: 9, Minute: 57}}
	for i, e := range s.Entries {
		if e.Trip != want[i] {
			t.Errorf("trip %d = %+v, want %+v", i, e.Trip, want[i])
		}
	}
	if s.Entries[0].Route != s.Entries[1].Route {
		t.Error("trips should share their route")
	}
	r := s.Entries[0].Route
	if len(r.Stops) != 2 || r.Stops[0] != r.Stops[1] {
		t.Error("route should list one shared stop twice")
	}
}

func TestFutureTripVersion(t *testing.T) {
	data := encoded(t, schedule.Sample())
	future := strings.Replace(data, "\nv2 ", "\nv3 ", 1)
	if future == data {
		t.Fatal("fixture: no version 2 trip record found")
	}
	if _, err := schedule.Read(strings.NewReader(future)); !aerrors.Is(err, aerrors.ErrCodeFutureVersion) {
		t.Errorf("error = %v, want %s", err, aerrors.ErrCodeFutureVersion)
	}
}

func TestCorruptedDiscriminator(t *testing.T) {
	data := encoded(t, schedule.Sample())
	corrupt := strings.Replace(data, " corner ", " kiosk ", 1)
	if corrupt == data {
		t.Fatal("fixture: no corner stop found")
	}
	s, err := schedule.Read(strings.NewReader(corrupt))
	if !aerrors.Is(err, aerrors.ErrCodeUnknownVariant) {
		t.Errorf("error = %v, want %s", err, aerrors.ErrCodeUnknownVariant)
	}
	if s != nil {
		t.Error("a failed Read must not return a schedule")
	}
}

func TestTruncatedArchive(t *testing.T) {
	data := encoded(t, schedule.Sample())
	lines := strings.SplitAfter(data, "\n")
	for n := 1; n < len(lines)-1; n++ {
		prefix := strings.Join(lines[:n], "")
		s, err := schedule.Read(strings.NewReader(prefix))
		if !aerrors.Is(err, aerrors.ErrCodeMalformedArchive) {
			t.Errorf("truncated to %d lines: error = %v, want %s", n, err, aerrors.ErrCodeMalformedArchive)
		}
		if s != nil {
			t.Errorf("truncated to %d lines: got a schedule", n)
		}
	}
}

// =============================================================================
// Files
// =============================================================================

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.busarchive")
	want := schedule.Sample()

	if err := schedule.Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := schedule.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !schedule.Equal(want, got) || !schedule.SameShape(want, got) {
		t.Error("loaded schedule differs from the saved one")
	}
}

func TestSaveTruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.busarchive")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 10000), 0o644); err != nil {
		t.Fatal(err)
	}
	small := schedule.New()
	if err := schedule.Save(small, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := schedule.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(got.Entries))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := schedule.Load(filepath.Join(t.TempDir(), "missing.busarchive"))
	if !aerrors.Is(err, aerrors.ErrCodeNotFound) {
		t.Errorf("error = %v, want %s", err, aerrors.ErrCodeNotFound)
	}
}

func TestSaveUnwritableDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "schedule.busarchive")
	err := schedule.Save(schedule.Sample(), path)
	if !aerrors.Is(err, aerrors.ErrCodeIOUnavailable) {
		t.Errorf("error = %v, want %s", err, aerrors.ErrCodeIOUnavailable)
	}
}

func TestFormatLabelsSharedObjects(t *testing.T) {
	var buf bytes.Buffer
	if err := schedule.Format(&buf, schedule.Sample()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if got := strings.Count(out, "route#0"); got != 3 {
		t.Errorf("route#0 appears %d times, want 3", got)
	}
	if got := strings.Count(out, "route#1"); got != 3 {
		t.Errorf("route#1 appears %d times, want 3", got)
	}
	// White House is stop#2 on route 0 and shows up on every trip.
	if got := strings.Count(out, "stop#2 "); got != 6 {
		t.Errorf("stop#2 appears %d times, want 6", got)
	}
	if strings.Contains(out, "stop#4") {
		t.Error("sample has only four stops")
	}
	if !strings.Contains(out, "11:02 alice route#0") {
		t.Errorf("output missing padded minute line:\n%s", out)
	}
}
