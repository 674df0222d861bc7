package telemetry

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	started_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS windows (
	run_id TEXT NOT NULL,
	window_start INTEGER NOT NULL,
	window_end INTEGER NOT NULL,
	sim_time REAL NOT NULL,
	aggregate INTEGER NOT NULL,
	creatures INTEGER NOT NULL,
	biomass INTEGER NOT NULL,
	pops_simulated INTEGER NOT NULL,
	pops_derived INTEGER NOT NULL,
	individual_regions INTEGER NOT NULL,
	spawned INTEGER NOT NULL,
	folded INTEGER NOT NULL,
	births INTEGER NOT NULL,
	deaths_starvation INTEGER NOT NULL,
	deaths_illness INTEGER NOT NULL,
	deaths_old_age INTEGER NOT NULL,
	extinctions INTEGER NOT NULL,
	promotions INTEGER NOT NULL,
	demotions INTEGER NOT NULL,
	migrations INTEGER NOT NULL,
	effects INTEGER NOT NULL,
	limb_mean REAL NOT NULL,
	limb_std REAL NOT NULL,
	mass_mean REAL NOT NULL,
	mass_std REAL NOT NULL,
	mass_p10 REAL NOT NULL,
	mass_p50 REAL NOT NULL,
	mass_p90 REAL NOT NULL,
	hunger_mean REAL NOT NULL,
	residence_mean REAL NOT NULL,
	PRIMARY KEY (run_id, window_end)
);

CREATE TABLE IF NOT EXISTS species_windows (
	run_id TEXT NOT NULL,
	window_end INTEGER NOT NULL,
	species_id INTEGER NOT NULL,
	species_name TEXT NOT NULL,
	aggregate INTEGER NOT NULL,
	creatures INTEGER NOT NULL,
	populations INTEGER NOT NULL,
	total INTEGER NOT NULL,
	PRIMARY KEY (run_id, window_end, species_id)
);
`

// Index is an SQLite index of window stats, one database per output
// directory, shared by every run written there.
type Index struct {
	db *sqlx.DB
}

// OpenIndex opens or creates the database at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(indexSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// AddRun records a run header.
func (ix *Index) AddRun(runID string, seed uint64, startedAt string) error {
	_, err := ix.db.Exec(`INSERT OR REPLACE INTO runs (run_id, seed, started_at) VALUES (?, ?, ?)`,
		runID, int64(seed), startedAt)
	return err
}

// AddWindow inserts a window and its species rows in one transaction.
func (ix *Index) AddWindow(s WindowStats) error {
	tx, err := ix.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(`INSERT OR REPLACE INTO windows (
		run_id, window_start, window_end, sim_time, aggregate, creatures, biomass,
		pops_simulated, pops_derived, individual_regions, spawned, folded, births,
		deaths_starvation, deaths_illness, deaths_old_age, extinctions, promotions,
		demotions, migrations, effects, limb_mean, limb_std, mass_mean, mass_std,
		mass_p10, mass_p50, mass_p90, hunger_mean, residence_mean
	) VALUES (
		:run_id, :window_start, :window_end, :sim_time, :aggregate, :creatures, :biomass,
		:pops_simulated, :pops_derived, :individual_regions, :spawned, :folded, :births,
		:deaths_starvation, :deaths_illness, :deaths_old_age, :extinctions, :promotions,
		:demotions, :migrations, :effects, :limb_mean, :limb_std, :mass_mean, :mass_std,
		:mass_p10, :mass_p50, :mass_p90, :hunger_mean, :residence_mean
	)`, s); err != nil {
		return fmt.Errorf("insert window: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO species_windows
		(run_id, window_end, species_id, species_name, aggregate, creatures, populations, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sp := range s.Species {
		if _, err := stmt.Exec(s.RunID, s.WindowEndTick, sp.Species, sp.Name,
			int64(sp.Aggregate), sp.Creatures, sp.Populations, int64(sp.Total)); err != nil {
			return fmt.Errorf("insert species window: %w", err)
		}
	}

	return tx.Commit()
}

// Windows returns the stored windows of a run in tick order. Species rows
// are not loaded.
func (ix *Index) Windows(runID string) ([]WindowStats, error) {
	var out []WindowStats
	err := ix.db.Select(&out, `SELECT * FROM windows WHERE run_id = ? ORDER BY window_end`, runID)
	return out, err
}

// SpeciesTotals returns a species' total per window of a run, in tick order.
func (ix *Index) SpeciesTotals(runID string, species uint32) ([]uint64, error) {
	var totals []int64
	err := ix.db.Select(&totals, `SELECT total FROM species_windows
		WHERE run_id = ? AND species_id = ? ORDER BY window_end`, runID, species)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(totals))
	for i, t := range totals {
		out[i] = uint64(t)
	}
	return out, nil
}
