// Package history keeps an optional local record of the occupancy samples
// the dashboard rendered, for charts and debugging. It never feeds the
// dashboard itself; every render comes from a fresh backend fetch.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/parking.report/internal/parking"
)

// Sample is one recorded occupancy status.
type Sample struct {
	ID             string    `json:"id"`
	TakenAt        time.Time `json:"taken_at"`
	Disponibles    int       `json:"disponibles"`
	Ocupados       int       `json:"ocupados"`
	Percent        float64   `json:"porcentaje_ocupacion"`
	VehiculosCount int       `json:"vehiculos_count"`
}

// Store is the sqlite-backed sample store.
type Store struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies all
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// sqlite serialises writers; one connection also keeps :memory: coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	s := &Store{DB: db, path: path}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// Record stores one sample. It satisfies the dashboard's sample recorder.
func (s *Store) Record(ctx context.Context, st parking.OccupancyStatus, at time.Time) error {
	_, err := s.ExecContext(ctx,
		`INSERT INTO occupancy_samples (
			sample_id, taken_at_ms, disponibles, ocupados, porcentaje_ocupacion, vehiculos_count
		) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), at.UnixMilli(), st.Disponibles, st.Ocupados, st.PorcentajeOcupacion, st.VehiculosCount,
	)
	if err != nil {
		return fmt.Errorf("insert occupancy sample: %w", err)
	}
	return nil
}

// Samples returns samples taken in [since, until), oldest first. A limit of
// zero or less returns every match; otherwise the newest limit samples are
// returned, still oldest first.
func (s *Store) Samples(ctx context.Context, since, until time.Time, limit int) ([]Sample, error) {
	q := `SELECT sample_id, taken_at_ms, disponibles, ocupados, porcentaje_ocupacion, vehiculos_count
		FROM occupancy_samples
		WHERE taken_at_ms >= ? AND taken_at_ms < ?
		ORDER BY taken_at_ms DESC`
	args := []interface{}{since.UnixMilli(), until.UnixMilli()}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query occupancy samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var smp Sample
		var ms int64
		if err := rows.Scan(&smp.ID, &ms, &smp.Disponibles, &smp.Ocupados, &smp.Percent, &smp.VehiculosCount); err != nil {
			return nil, fmt.Errorf("scan occupancy sample: %w", err)
		}
		smp.TakenAt = time.UnixMilli(ms).UTC()
		out = append(out, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Count returns the number of stored samples.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM occupancy_samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count occupancy samples: %w", err)
	}
	return n, nil
}

// Prune deletes samples taken before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.ExecContext(ctx, `DELETE FROM occupancy_samples WHERE taken_at_ms < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune occupancy samples: %w", err)
	}
	return res.RowsAffected()
}
