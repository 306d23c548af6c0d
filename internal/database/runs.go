package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lawnchairsociety/procgen/internal/dungeon"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("generation run not found")

// Run is one recorded generation pass.
type Run struct {
	ID        int64
	Seed      int64
	Floor     int
	Width     int
	Height    int
	Target    int
	RoomCount int
	SpawnX    int
	SpawnY    int
	ExitX     int
	ExitY     int
	ExitRoom  int
	Success   bool
	State     string // Final state, or the state a failed run aborted in
	Failure   string // Error message of a failed run
	Warnings  []string
	Rooms     []dungeon.Room
	CreatedAt time.Time
}

// RunFromResult converts a generation result to a Run.
func RunFromResult(res *dungeon.Result) *Run {
	run := &Run{
		Seed:      res.Seed,
		Floor:     res.Floor,
		Width:     res.Width,
		Height:    res.Height,
		Target:    res.Target,
		RoomCount: len(res.Rooms),
		SpawnX:    res.Spawn.X,
		SpawnY:    res.Spawn.Y,
		ExitX:     res.Exit.X,
		ExitY:     res.Exit.Y,
		ExitRoom:  res.ExitRoom,
		Success:   res.Success,
		State:     res.State.String(),
		Rooms:     append([]dungeon.Room(nil), res.Rooms...),
	}
	if res.State == dungeon.StateAborted {
		run.State = res.AbortedAt.String()
	}
	if res.Err != nil {
		run.Failure = res.Err.Error()
	}
	for _, w := range res.Warnings {
		run.Warnings = append(run.Warnings, w.Error())
	}
	return run
}

// RecordResult stores a generation result and returns its run id.
func (d *Database) RecordResult(res *dungeon.Result) (int64, error) {
	if res == nil {
		return 0, errors.New("nil generation result")
	}
	return d.RecordRun(RunFromResult(res))
}

// RecordRun stores a run and its rooms in one transaction. A zero
// run.CreatedAt is stamped with the current time. run.ID and run.CreatedAt
// are set on success.
func (d *Database) RecordRun(run *Run) (int64, error) {
	createdAt := run.CreatedAt.UTC()
	if run.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := d.qb.BuildWithReturning(
		`INSERT INTO generation_runs (seed, floor, width, height, target, room_count,
			spawn_x, spawn_y, exit_x, exit_y, exit_room, success, state, failure, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, "id")
	args := []any{
		run.Seed, run.Floor, run.Width, run.Height, run.Target, run.RoomCount,
		run.SpawnX, run.SpawnY, run.ExitX, run.ExitY, run.ExitRoom,
		boolToInt(run.Success), run.State, run.Failure, strings.Join(run.Warnings, "\n"), createdAt,
	}

	var id int64
	if d.dialect.SupportsLastInsertID() {
		result, err := tx.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get run id: %w", err)
		}
	} else {
		if err := tx.QueryRow(query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
	}

	roomQuery := d.qb.Build(
		`INSERT INTO generation_rooms (run_id, position, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?)`)
	for i, r := range run.Rooms {
		if _, err := tx.Exec(roomQuery, id, i, r.X, r.Y, r.Width, r.Height); err != nil {
			return 0, fmt.Errorf("failed to insert room %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	run.CreatedAt = createdAt
	return id, nil
}

const runColumns = `id, seed, floor, width, height, target, room_count,
	spawn_x, spawn_y, exit_x, exit_y, exit_room, success, state, failure, warnings, created_at`

// GetRun returns a run and its rooms by id.
func (d *Database) GetRun(id int64) (*Run, error) {
	row := d.db.QueryRow(d.qb.Build("SELECT "+runColumns+" FROM generation_runs WHERE id = ?"), id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := d.loadRooms(run); err != nil {
		return nil, err
	}
	return run, nil
}

// RecentRuns returns up to limit runs, newest first. Rooms are not loaded.
func (d *Database) RecentRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.Query(d.qb.Build("SELECT "+runColumns+" FROM generation_runs ORDER BY id DESC LIMIT ?"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunsForSeed returns every run recorded with the given seed, oldest first.
func (d *Database) RunsForSeed(seed int64) ([]*Run, error) {
	rows, err := d.db.Query(d.qb.Build("SELECT "+runColumns+" FROM generation_runs WHERE seed = ? ORDER BY id"), seed)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunsAfter returns up to limit runs with id greater than afterID, oldest
// first, rooms included. It pages through the whole history.
func (d *Database) RunsAfter(afterID int64, limit int) ([]*Run, error) {
	rows, err := d.db.Query(d.qb.Build("SELECT "+runColumns+" FROM generation_runs WHERE id > ? ORDER BY id LIMIT ?"), afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for _, run := range runs {
		if err := d.loadRooms(run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// CopyRuns copies every run of src into dst, oldest first, keeping creation
// times. Ids are assigned by dst. With dryRun set nothing is written and the
// number of runs that would be copied is returned.
func CopyRuns(src, dst *Database, batchSize int, dryRun bool) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	copied := 0
	var last int64
	for {
		runs, err := src.RunsAfter(last, batchSize)
		if err != nil {
			return copied, err
		}
		if len(runs) == 0 {
			return copied, nil
		}

		for _, run := range runs {
			last = run.ID
			if !dryRun {
				if _, err := dst.RecordRun(run); err != nil {
					return copied, fmt.Errorf("run %d: %w", last, err)
				}
			}
			copied++
		}
	}
}

// CountRuns returns the number of recorded runs and how many succeeded.
func (d *Database) CountRuns() (total, succeeded int, err error) {
	err = d.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(success), 0) FROM generation_runs").Scan(&total, &succeeded)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return total, succeeded, nil
}

func (d *Database) loadRooms(run *Run) error {
	rows, err := d.db.Query(d.qb.Build(
		"SELECT x, y, width, height FROM generation_rooms WHERE run_id = ? ORDER BY position"), run.ID)
	if err != nil {
		return fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r dungeon.Room
		if err := rows.Scan(&r.X, &r.Y, &r.Width, &r.Height); err != nil {
			return fmt.Errorf("failed to scan room: %w", err)
		}
		run.Rooms = append(run.Rooms, r)
	}
	return rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*Run, error) {
	var run Run
	var success int
	var warnings string

	err := s.Scan(&run.ID, &run.Seed, &run.Floor, &run.Width, &run.Height, &run.Target, &run.RoomCount,
		&run.SpawnX, &run.SpawnY, &run.ExitX, &run.ExitY, &run.ExitRoom,
		&success, &run.State, &run.Failure, &warnings, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.Success = success != 0
	if warnings != "" {
		run.Warnings = strings.Split(warnings, "\n")
	}
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
