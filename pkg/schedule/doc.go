// Package schedule models a bus schedule as a graph of shared objects and
// persists it with package archive.
//
// # Object Graph
//
// Stops are polymorphic ([CornerStop] or [DestinationStop]) and are only
// ever held through the [Stop] interface. A [Route] is an ordered list of
// stop references and may list one stop more than once. A [Schedule] pairs
// each [Trip] with a reference to the route it runs on, so many trips share
// one route and many routes share one stop:
//
//	s := schedule.New()
//	main := schedule.NewDestinationStop(lat, lon, "Main Station")
//	r := &schedule.Route{}
//	r.Append(main)
//	s.Append("bob", 6, 24, r)
//	s.Append("alice", 9, 57, r)
//
// # Persistence
//
// [Save] and [Load] write and read a schedule file; [Write] and [Read] do
// the same on arbitrary streams. A loaded schedule has freshly allocated
// stops and routes wired exactly as before: shared references stay shared
// and distinct objects stay distinct, even when their fields are equal.
// [SameShape] checks that property, and [Equal] checks field values.
//
// Record versions: [Position] 1, stops 1, [Route] 1, [Trip] 2 (the driver
// was added in version 2; version 1 archives load with an empty driver),
// [Schedule] 1.
//
// # Definitions
//
// [ParseDefinition] builds a schedule from a TOML file naming stops and
// routes by id; see definition.go for the layout.
package schedule
