package schedule

// Sample returns the demo schedule: four stops on two routes that share
// two of them, with three trips on each route.
func Sample() *Schedule {
	bs0 := NewCornerStop(Position{34, 135, 52.56}, Position{134, 22, 78.3}, "24th Street", "10th Avenue")
	bs1 := NewCornerStop(Position{35, 137, 23.456}, Position{133, 35, 54.12}, "State street", "Cathedral Vista Lane")
	bs2 := NewDestinationStop(Position{35, 136, 15.456}, Position{133, 32, 15.3}, "White House")
	bs3 := NewDestinationStop(Position{35, 134, 48.789}, Position{133, 32, 16.23}, "Lincoln Memorial")

	route0 := &Route{}
	route0.Append(bs0)
	route0.Append(bs1)
	route0.Append(bs2)

	route1 := &Route{}
	route1.Append(bs3)
	route1.Append(bs2)
	route1.Append(bs1)

	s := New()
	s.Append("bob", 6, 24, route0)
	s.Append("bob", 9, 57, route0)
	s.Append("alice", 11, 2, route0)
	s.Append("ted", 7, 17, route1)
	s.Append("ted", 9, 38, route1)
	s.Append("alice", 11, 47, route1)
	return s
}
