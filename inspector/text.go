package inspector

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm-cable/ecosim/sim"
	"github.com/pthm-cable/ecosim/world"
)

const barWidth = 20

// Bar renders value/full as a fixed-width text bar, e.g. "[#####.....] 0.50".
func Bar(value, full float64) string {
	ratio := min(max(value/full, 0), 1)
	fill := int(ratio*barWidth + 0.5)
	return fmt.Sprintf("[%s%s] %.2f", strings.Repeat("#", fill), strings.Repeat(".", barWidth-fill), value)
}

// Line renders one field.
func Line(f Field) string {
	switch f.Style {
	case StyleBar:
		if v, ok := Float(f.Value); ok {
			return fmt.Sprintf("%s: %s", f.Name, Bar(v, f.Max))
		}
	case StyleFlag:
		if b, ok := f.Value.(bool); ok {
			if b {
				return f.Name + ": yes"
			}
			return f.Name + ": no"
		}
	}
	return fmt.Sprintf("%s: %s", f.Name, FormatValue(f.Value, f.Format))
}

// Describe writes a titled block with one indented line per inspectable
// field of component.
func Describe(w io.Writer, title string, component any) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, f := range ExtractFields(component) {
		if _, err := fmt.Fprintf(w, "  %s\n", Line(f)); err != nil {
			return err
		}
	}
	return nil
}

// DumpRegion writes the region header, its populations and up to limit of
// its creatures (all of them when limit <= 0).
func DumpRegion(w io.Writer, s *sim.Simulation, id world.RegionID, limit int) error {
	r, err := s.World().Region(id)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Region %d %s (%s, food %.0f/%.0f, %.0f°)\n",
		r.ID, r.Name, r.Mode, r.CurrentFood, r.FoodCapacity, r.Temperature); err != nil {
		return err
	}

	for _, p := range s.PopulationsInRegion(id) {
		if err := Describe(w, fmt.Sprintf("Population %d", p.ID), p.Population); err != nil {
			return err
		}
	}

	creatures := s.CreaturesInRegion(id)
	for i, c := range creatures {
		if limit > 0 && i >= limit {
			_, err := fmt.Fprintf(w, "... %d more creatures\n", len(creatures)-limit)
			return err
		}
		if err := Describe(w, fmt.Sprintf("Creature %d", c.ID), c.Genome); err != nil {
			return err
		}
		if err := Describe(w, "  Lifecycle", c.Lifecycle); err != nil {
			return err
		}
	}
	return nil
}
