package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- session types ---

func (a *App) InsertSessionType(ctx context.Context, t *SessionType) error {
	if err := validateSessionType(t); err != nil {
		return err
	}
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	q := `INSERT INTO session_types (id, name, category, priority, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := a.DB.Exec(ctx, q, t.ID, t.Name, t.Category, t.Priority, t.CreatedAt, t.UpdatedAt)
	return err
}

func (a *App) ListSessionTypes(ctx context.Context) ([]SessionType, error) {
	q := `SELECT id, name, category, priority, created_at, updated_at
	      FROM session_types ORDER BY created_at`
	rows, err := a.DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionType
	for rows.Next() {
		var t SessionType
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (a *App) GetSessionType(ctx context.Context, id string) (SessionType, error) {
	q := `SELECT id, name, category, priority, created_at, updated_at
	      FROM session_types WHERE id=$1`
	var t SessionType
	err := a.DB.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.Category, &t.Priority, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionType{}, fmt.Errorf("%w: session type %s", ErrNotFound, id)
	}
	return t, err
}

func (a *App) UpdateSessionType(ctx context.Context, t *SessionType) error {
	if err := validateSessionType(t); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	q := `UPDATE session_types SET name=$1, category=$2, priority=$3, updated_at=$4
	      WHERE id=$5 RETURNING created_at`
	err := a.DB.QueryRow(ctx, q, t.Name, t.Category, t.Priority, t.UpdatedAt, t.ID).Scan(&t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: session type %s", ErrNotFound, t.ID)
	}
	return err
}

func (a *App) DeleteSessionType(ctx context.Context, id string) error {
	res, err := a.DB.Exec(ctx, `DELETE FROM session_types WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: session type %s", ErrNotFound, id)
	}
	return nil
}

// --- availability windows ---

func (a *App) InsertAvailabilityWindow(ctx context.Context, w *AvailabilityWindow) error {
	if err := validateAvailabilityWindow(w); err != nil {
		return err
	}
	now := time.Now().UTC()
	w.ID = uuid.NewString()
	w.CreatedAt = now
	w.UpdatedAt = now

	q := `INSERT INTO availability_windows (id, day_of_week, start_time, end_time, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := a.DB.Exec(ctx, q, w.ID, w.DayOfWeek, w.StartTime, w.EndTime, w.CreatedAt, w.UpdatedAt)
	return err
}

func (a *App) ListAvailabilityWindows(ctx context.Context) ([]AvailabilityWindow, error) {
	q := `SELECT id, day_of_week, start_time, end_time, created_at, updated_at
	      FROM availability_windows ORDER BY day_of_week, start_time`
	rows, err := a.DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AvailabilityWindow
	for rows.Next() {
		var w AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.DayOfWeek, &w.StartTime, &w.EndTime, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (a *App) UpdateAvailabilityWindow(ctx context.Context, w *AvailabilityWindow) error {
	if err := validateAvailabilityWindow(w); err != nil {
		return err
	}
	w.UpdatedAt = time.Now().UTC()
	q := `UPDATE availability_windows SET day_of_week=$1, start_time=$2, end_time=$3, updated_at=$4
	      WHERE id=$5 RETURNING created_at`
	err := a.DB.QueryRow(ctx, q, w.DayOfWeek, w.StartTime, w.EndTime, w.UpdatedAt, w.ID).Scan(&w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: availability window %s", ErrNotFound, w.ID)
	}
	return err
}

func (a *App) DeleteAvailabilityWindow(ctx context.Context, id string) error {
	res, err := a.DB.Exec(ctx, `DELETE FROM availability_windows WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: availability window %s", ErrNotFound, id)
	}
	return nil
}

// --- sessions ---

const sessionColumns = `s.id, s.session_type_id, s.start_time, s.end_time, s.completed, s.created_at, s.updated_at,
	t.id, t.name, t.category, t.priority, t.created_at, t.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (Session, error) {
	var s Session
	err := r.Scan(&s.ID, &s.SessionTypeID, &s.StartTime, &s.EndTime, &s.Completed, &s.CreatedAt, &s.UpdatedAt,
		&s.SessionType.ID, &s.SessionType.Name, &s.SessionType.Category, &s.SessionType.Priority,
		&s.SessionType.CreatedAt, &s.SessionType.UpdatedAt)
	return s, err
}

func (a *App) InsertSession(ctx context.Context, s *Session) error {
	if err := validateSessionTimes(s.StartTime, s.EndTime); err != nil {
		return err
	}
	st, err := a.GetSessionType(ctx, s.SessionTypeID)
	if err != nil {
		return err
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := checkSessionConflict(ctx, tx, s.StartTime, s.EndTime, ""); err != nil {
		return err
	}

	now := time.Now().UTC()
	s.ID = uuid.NewString()
	s.SessionType = st
	s.CreatedAt = now
	s.UpdatedAt = now

	q := `INSERT INTO sessions (id, session_type_id, start_time, end_time, completed, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := tx.Exec(ctx, q, s.ID, s.SessionTypeID, s.StartTime.UTC(), s.EndTime.UTC(), s.Completed, now, now); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// checkSessionConflict rejects intervals overlapping any existing session
// under half-open semantics. excludeID skips the session being updated.
func checkSessionConflict(ctx context.Context, tx pgx.Tx, start, end time.Time, excludeID string) error {
	q := `SELECT ` + sessionColumns + `
	      FROM sessions s JOIN session_types t ON t.id = s.session_type_id
	      WHERE s.start_time < $1 AND $2 < s.end_time AND s.id != $3
	      LIMIT 1 FOR UPDATE OF s`
	row := tx.QueryRow(ctx, q, end.UTC(), start.UTC(), excludeID)
	existing, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return conflictWith(existing)
}

func (a *App) ListSessions(ctx context.Context, from, to *time.Time, completed *bool) ([]Session, error) {
	q := `SELECT ` + sessionColumns + `
	      FROM sessions s JOIN session_types t ON t.id = s.session_type_id`
	var (
		conds []string
		args  []any
	)
	if from != nil {
		args = append(args, from.UTC())
		conds = append(conds, fmt.Sprintf("s.start_time >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, to.UTC())
		conds = append(conds, fmt.Sprintf("s.start_time < $%d", len(args)))
	}
	if completed != nil {
		args = append(args, *completed)
		conds = append(conds, fmt.Sprintf("s.completed = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY s.start_time"

	rows, err := a.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *App) GetSession(ctx context.Context, id string) (Session, error) {
	q := `SELECT ` + sessionColumns + `
	      FROM sessions s JOIN session_types t ON t.id = s.session_type_id
	      WHERE s.id=$1`
	s, err := scanSession(a.DB.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	return s, err
}

func (a *App) UpdateSession(ctx context.Context, s *Session) error {
	if err := validateSessionTimes(s.StartTime, s.EndTime); err != nil {
		return err
	}
	st, err := a.GetSessionType(ctx, s.SessionTypeID)
	if err != nil {
		return err
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := checkSessionConflict(ctx, tx, s.StartTime, s.EndTime, s.ID); err != nil {
		return err
	}

	s.SessionType = st
	s.UpdatedAt = time.Now().UTC()
	q := `UPDATE sessions SET session_type_id=$1, start_time=$2, end_time=$3, completed=$4, updated_at=$5
	      WHERE id=$6 RETURNING created_at`
	err = tx.QueryRow(ctx, q, s.SessionTypeID, s.StartTime.UTC(), s.EndTime.UTC(), s.Completed, s.UpdatedAt, s.ID).Scan(&s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: session %s", ErrNotFound, s.ID)
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (a *App) CompleteSession(ctx context.Context, id string) (Session, error) {
	q := `UPDATE sessions SET completed=TRUE, updated_at=$1 WHERE id=$2`
	res, err := a.DB.Exec(ctx, q, time.Now().UTC(), id)
	if err != nil {
		return Session{}, err
	}
	if res.RowsAffected() == 0 {
		return Session{}, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	return a.GetSession(ctx, id)
}

func (a *App) DeleteSession(ctx context.Context, id string) error {
	res, err := a.DB.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	return nil
}
