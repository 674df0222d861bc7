package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSpeciesCrash    BookmarkType = "species_crash"
	BookmarkExtinction      BookmarkType = "extinction"
	BookmarkSpeciesRecovery BookmarkType = "species_recovery"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	SimTime     float64      `csv:"sim_time"`
	Species     string       `csv:"species"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"species", b.Species,
		"description", b.Description,
	)
}

type speciesTrack struct {
	peak uint64 // highest total since the last crash
	low  uint64 // lowest nonzero total since the last recovery
	gone bool
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	species            map[string]*speciesTrack
	stableWindowsCount int // consecutive windows with stable biomass
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		species:     make(map[string]*speciesTrack),
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, sp := range stats.Species {
		tr, ok := bd.species[sp.Name]
		if !ok {
			tr = &speciesTrack{peak: sp.Total, low: sp.Total}
			bd.species[sp.Name] = tr
		}
		if b := bd.checkSpecies(stats, sp, tr); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if b := bd.checkStableEcosystem(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) checkSpecies(stats WindowStats, sp SpeciesStats, tr *speciesTrack) *Bookmark {
	mark := func(t BookmarkType, desc string) *Bookmark {
		return &Bookmark{
			Type:        t,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTime,
			Species:     sp.Name,
			Description: desc,
		}
	}

	switch {
	case sp.Total == 0:
		if tr.gone || tr.peak == 0 {
			return nil
		}
		tr.gone = true
		return mark(BookmarkExtinction, fmt.Sprintf("%s died out (peak %d)", sp.Name, tr.peak))

	case tr.gone:
		tr.gone = false
		tr.peak, tr.low = sp.Total, sp.Total
		return nil
	}

	if sp.Total > tr.peak {
		tr.peak = sp.Total
	}
	if tr.low == 0 || sp.Total < tr.low {
		tr.low = sp.Total
	}

	// Crash: dropped >30% from the recent peak
	drop := 1.0 - float64(sp.Total)/float64(tr.peak)
	if drop > 0.30 && sp.Total+10 < tr.peak {
		oldPeak := tr.peak
		tr.peak = sp.Total
		tr.low = sp.Total
		return mark(BookmarkSpeciesCrash,
			fmt.Sprintf("%s crashed %.0f%% from peak %d to %d", sp.Name, drop*100, oldPeak, sp.Total))
	}

	// Recovery: at least 3x the recent low
	if tr.low <= sp.Total/3 && sp.Total >= 6 {
		oldLow := tr.low
		tr.low = sp.Total
		tr.peak = max(tr.peak, sp.Total)
		return mark(BookmarkSpeciesRecovery,
			fmt.Sprintf("%s recovered from %d to %d", sp.Name, oldLow, sp.Total))
	}

	return nil
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	n = min(n, size)
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, bd.history[(bd.historyIdx-i+bd.historySize)%bd.historySize])
	}
	return out
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	// Every species must be present
	for _, sp := range stats.Species {
		if sp.Total == 0 {
			bd.stableWindowsCount = 0
			return nil
		}
	}

	history := bd.recent(4)
	if len(history) < 4 || stats.Biomass == 0 {
		return nil
	}

	biomass := make([]float64, len(history))
	for i, h := range history {
		biomass[i] = float64(h.Biomass)
	}
	mean, variance := stat.PopMeanVariance(biomass, nil)

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			SimTime:     stats.SimTime,
			Description: fmt.Sprintf("Stable biomass around %.0f over 5+ windows", mean),
		}
	}

	return nil
}
