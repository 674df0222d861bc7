package effects

import (
	"fmt"
	"io"
	"log/slog"
)

// Log is an append-only effect buffer. The driver clears it at the start of
// each tick; nothing here enforces that window.
type Log struct {
	effects []Effect
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{effects: make([]Effect, 0, 256)}
}

// Record appends an effect.
func (l *Log) Record(e Effect) {
	l.effects = append(l.effects, e)
}

// Clear empties the log, keeping its capacity.
func (l *Log) Clear() {
	clear(l.effects)
	l.effects = l.effects[:0]
}

// Effects returns the recorded effects in order. The slice aliases the log and
// is only valid until the next Record or Clear.
func (l *Log) Effects() []Effect {
	return l.effects
}

// Len returns the number of recorded effects.
func (l *Log) Len() int {
	return len(l.effects)
}

// Filter returns copies of the effects of the given kind.
func (l *Log) Filter(kind Kind) []Effect {
	var out []Effect
	for _, e := range l.effects {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Counts tallies the log by kind.
type Counts [numKinds]int

// Of returns the count for kind.
func (c Counts) Of(kind Kind) int {
	if kind >= numKinds {
		return 0
	}
	return c[kind]
}

// CountByKind tallies the recorded effects.
func (l *Log) CountByKind() Counts {
	var c Counts
	for _, e := range l.effects {
		if e.Kind < numKinds {
			c[e.Kind]++
		}
	}
	return c
}

// WriteTo writes one formatted effect per line.
func (l *Log) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range l.effects {
		n, err := fmt.Fprintln(w, e.String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// LogValue summarizes the log as per-kind counts.
func (l *Log) LogValue() slog.Value {
	c := l.CountByKind()
	attrs := make([]slog.Attr, 0, numKinds+1)
	attrs = append(attrs, slog.Int("total", len(l.effects)))
	for k := Kind(0); k < numKinds; k++ {
		if c[k] > 0 {
			attrs = append(attrs, slog.Int(k.String(), c[k]))
		}
	}
	return slog.GroupValue(attrs...)
}
