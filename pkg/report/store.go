package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/IlikeChooros/go-hdagger/pkg/dagger"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	algorithm    TEXT NOT NULL,
	trial        INTEGER NOT NULL,
	config_json  TEXT,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS rounds (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id             TEXT NOT NULL,
	round              INTEGER NOT NULL,
	discounted_return  REAL NOT NULL,
	log_likelihood     REAL NOT NULL,
	reward_mse         REAL NOT NULL,
	samples            INTEGER NOT NULL,
	duration_ms        INTEGER NOT NULL,
	created_at         TEXT NOT NULL,
	UNIQUE (run_id, round),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Store is a SQLite ledger of runs and their per-round results
type Store struct {
	db *sql.DB
}

type RunRecord struct {
	ID         string
	Name       string
	Algorithm  string
	Trial      int
	Config     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Opens the database at 'path' and creates the tables
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Registers a run and returns its id, a new one unless info.ID is set
func (s *Store) StartRun(info RunInfo) (string, error) {
	id := info.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, name, algorithm, trial, config_json, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, info.FileName(), info.Algorithm, info.Trial, info.Config,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

func (s *Store) RecordRound(runID string, res dagger.RoundResult) error {
	_, err := s.db.Exec(
		`INSERT INTO rounds (run_id, round, discounted_return, log_likelihood, reward_mse, samples, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.Round, res.Return, res.LogLikelihood, res.RewardMSE, res.Samples,
		res.Duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert round %d: %w", res.Round, err)
	}
	return nil
}

func (s *Store) FinishRun(runID string) error {
	res, err := s.db.Exec(`UPDATE runs SET finished_at = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: no run %s", runID)
	}
	return nil
}

// Rounds of a run, in order
func (s *Store) Rounds(runID string) ([]dagger.RoundResult, error) {
	rows, err := s.db.Query(
		`SELECT round, discounted_return, log_likelihood, reward_mse, samples, duration_ms
		 FROM rounds WHERE run_id = ? ORDER BY round`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var out []dagger.RoundResult
	for rows.Next() {
		var res dagger.RoundResult
		var ms int64
		if err := rows.Scan(&res.Round, &res.Return, &res.LogLikelihood, &res.RewardMSE, &res.Samples, &ms); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		res.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, res)
	}
	return out, rows.Err()
}

// All runs, oldest first
func (s *Store) Runs() ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, name, algorithm, trial, COALESCE(config_json, ''), started_at, COALESCE(finished_at, '')
		 FROM runs ORDER BY started_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Algorithm, &rec.Trial, &rec.Config, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
