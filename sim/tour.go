package sim

import (
	"log/slog"
	"slices"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/world"
)

// Tour moves the observer through a fixed schedule of regions.
type Tour struct {
	stops  []config.TourStop // sorted by day
	radius int
	next   int
}

// NewTour creates a tour over stops. Every stop uses the same radius.
func NewTour(stops []config.TourStop, radius int) *Tour {
	sorted := slices.Clone(stops)
	slices.SortStableFunc(sorted, func(a, b config.TourStop) int {
		switch {
		case a.Day < b.Day:
			return -1
		case a.Day > b.Day:
			return 1
		}
		return 0
	})
	return &Tour{stops: sorted, radius: radius}
}

// Apply focuses the observer on the latest stop whose day has been reached
// and that has not been applied yet.
func (t *Tour) Apply(s *Simulation) error {
	now := s.Time()
	var due *config.TourStop
	for t.next < len(t.stops) && t.stops[t.next].Day <= now {
		due = &t.stops[t.next]
		t.next++
	}
	if due == nil {
		return nil
	}

	if err := s.Focus(world.RegionID(due.Region), t.radius); err != nil {
		return err
	}
	slog.Info("observer_moved", "day", now, "region", due.Region, "radius", t.radius)
	return nil
}

// Done reports whether every stop has been applied.
func (t *Tour) Done() bool {
	return t.next >= len(t.stops)
}
