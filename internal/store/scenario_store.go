package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/events"
	"github.com/charleschow/superleague-points/internal/telemetry"

	_ "modernc.org/sqlite"
)

const evictPct = 0.10

// Entry is one logged computation.
type Entry struct {
	EventID     string
	Ts          time.Time
	Source      string
	Batting     string
	Chasing     string
	Result      scenario.Result
	WinningRows int
	LosingRows  int
}

// Store appends every computed scenario to a SQLite table capped at
// maxRows. The oldest 10% of rows are evicted once the cap is exceeded.
// It only observes results; nothing reads it back into a computation.
type Store struct {
	db       *sql.DB
	mu       sync.Mutex
	maxRows  int64
	rowCount int64
	detach   func()
}

func Open(path string, maxRows int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS scenario_log (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id     TEXT    NOT NULL,
			ts           TEXT    NOT NULL,
			source       TEXT    NOT NULL,
			scenario     TEXT    NOT NULL,
			batting      TEXT,
			chasing      TEXT,
			first_runs   INTEGER,
			first_overs  INTEGER,
			second_runs  INTEGER,
			second_balls INTEGER,
			winning_rows INTEGER,
			losing_rows  INTEGER,
			result_json  TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sl_ts ON scenario_log(ts)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM scenario_log`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("read row count: %w", err)
	}

	telemetry.Infof("scenario store: opened %s  rows=%d  max=%d", path, count, maxRows)

	return &Store{db: db, maxRows: int64(maxRows), rowCount: count}, nil
}

// Attach subscribes the store to computed-scenario events until Close.
func (s *Store) Attach(bus *events.Bus) {
	s.detach = bus.Subscribe(events.EventScenarioComputed, s.Record)
}

// Record is a bus handler.
func (s *Store) Record(evt events.Event) error {
	sc, ok := evt.Payload.(events.ScenarioComputedEvent)
	if !ok {
		return nil
	}
	if err := s.insert(evt.ID, evt.Timestamp, sc); err != nil {
		telemetry.Metrics.StoreErrors.Inc()
		return err
	}
	telemetry.Metrics.StoreWrites.Inc()
	return nil
}

func (s *Store) insert(eventID string, ts time.Time, sc events.ScenarioComputedEvent) error {
	resultJSON, err := json.Marshal(sc.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := sc.Result.State
	_, err = s.db.Exec(
		`INSERT INTO scenario_log (
			event_id, ts, source, scenario, batting, chasing,
			first_runs, first_overs, second_runs, second_balls,
			winning_rows, losing_rows, result_json
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		eventID,
		ts.UTC().Format(time.RFC3339Nano),
		sc.Source,
		string(sc.Result.Kind),
		sc.Batting,
		sc.Chasing,
		st.FirstRuns,
		st.FirstOvers,
		st.SecondRuns,
		st.CurrentBalls(),
		len(sc.Result.Winning),
		len(sc.Result.Losing),
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("scenario log insert: %w", err)
	}

	s.rowCount++
	if s.maxRows > 0 && s.rowCount > s.maxRows {
		s.evict()
	}
	return nil
}

func (s *Store) evict() {
	toDelete := int64(float64(s.rowCount) * evictPct)
	if toDelete < 1 {
		toDelete = 1
	}

	res, err := s.db.Exec(
		`DELETE FROM scenario_log WHERE id IN (
			SELECT id FROM scenario_log ORDER BY id ASC LIMIT ?
		)`, toDelete,
	)
	if err != nil {
		telemetry.Warnf("scenario store evict: %v", err)
		return
	}

	deleted, _ := res.RowsAffected()
	s.rowCount -= deleted
	telemetry.Debugf("scenario store: evicted %d rows (target %d)", deleted, toDelete)
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT event_id, ts, source, batting, chasing, winning_rows, losing_rows, result_json
		FROM scenario_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			ts         string
			resultJSON string
		)
		if err := rows.Scan(&e.EventID, &ts, &e.Source, &e.Batting, &e.Chasing,
			&e.WinningRows, &e.LosingRows, &resultJSON); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		if e.Ts, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse ts %q: %w", ts, err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &e.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowCount
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.detach != nil {
		s.detach()
	}
	return s.db.Close()
}
