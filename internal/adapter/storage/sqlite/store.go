package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/port"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store keeps the video registry in an in-memory SQLite database. Shared
// cache keeps the schema alive across the pool's connections; the database
// disappears with the process, which is exactly the lifetime videos have.
type Store struct {
	db *sql.DB
}

var hookOnce sync.Once

func registerHook() {
	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, dsn string) error {
			pragmas := []string{
				"PRAGMA busy_timeout = 5000",
				"PRAGMA foreign_keys = ON",
			}
			for _, p := range pragmas {
				if _, err := conn.ExecContext(context.Background(), p, nil); err != nil {
					return fmt.Errorf("execute %s: %w", p, err)
				}
			}
			return nil
		})
	})
}

func NewStore() (*Store, error) {
	return newStore("file:reeledit?mode=memory&cache=shared")
}

func newStore(dsn string) (*Store, error) {
	registerHook()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection pins the in-memory database and serializes writers.
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Save(v *domain.Video) error {
	_, err := s.db.Exec(`
		INSERT INTO videos (id, original_name, stored_path, size_bytes, status, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OriginalName, v.StoredPath, v.SizeBytes, string(v.Status), v.LastError, v.CreatedAt,
	)
	return err
}

func (s *Store) Get(id string) (*domain.Video, error) {
	row := s.db.QueryRow(`
		SELECT id, original_name, stored_path, size_bytes, status, last_error, created_at
		FROM videos WHERE id = ?`, id)

	v, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	v.Segments, err = s.segmentsOf(id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) ListAll() ([]*domain.Video, error) {
	rows, err := s.db.Query(`
		SELECT id, original_name, stored_path, size_bytes, status, last_error, created_at
		FROM videos ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var videos []*domain.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, v := range videos {
		if v.Segments, err = s.segmentsOf(v.ID); err != nil {
			return nil, err
		}
	}
	return videos, nil
}

func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimProcessing flips a video into the processing state, but only from a
// state where starting is legal. The conditional update makes concurrent
// claims race safely: exactly one caller sees a row change.
func (s *Store) ClaimProcessing(id string) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE videos SET status = ?, last_error = ''
		WHERE id = ? AND status IN (?, ?)`,
		string(domain.VideoStatusProcessing), id, string(domain.VideoStatusIdle), string(domain.VideoStatusFailed),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) MarkCompleted(id string, segments []domain.Segment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM segments WHERE video_id = ?`, id); err != nil {
		return err
	}
	for _, seg := range segments {
		if _, err := tx.Exec(`
			INSERT INTO segments (id, video_id, idx, start_seconds, duration, stored_path)
			VALUES (?, ?, ?, ?, ?, ?)`,
			seg.ID, seg.VideoID, seg.Index, seg.StartSeconds, seg.Duration, seg.StoredPath,
		); err != nil {
			return err
		}
	}

	res, err := tx.Exec(`UPDATE videos SET status = ?, last_error = '' WHERE id = ?`,
		string(domain.VideoStatusCompleted), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}

func (s *Store) MarkFailed(id string, errMsg string) error {
	res, err := s.db.Exec(`UPDATE videos SET status = ?, last_error = ? WHERE id = ?`,
		string(domain.VideoStatusFailed), errMsg, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetSegment(segmentID string) (*domain.Segment, error) {
	row := s.db.QueryRow(`
		SELECT id, video_id, idx, start_seconds, duration, stored_path
		FROM segments WHERE id = ?`, segmentID)

	seg, err := scanSegment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return seg, nil
}

func (s *Store) segmentsOf(videoID string) ([]domain.Segment, error) {
	rows, err := s.db.Query(`
		SELECT id, video_id, idx, start_seconds, duration, stored_path
		FROM segments WHERE video_id = ? ORDER BY idx`, videoID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var segments []domain.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *seg)
	}
	return segments, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (*domain.Video, error) {
	var v domain.Video
	var status string
	if err := row.Scan(&v.ID, &v.OriginalName, &v.StoredPath, &v.SizeBytes, &status, &v.LastError, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.Status = domain.VideoStatus(status)
	return &v, nil
}

func scanSegment(row scanner) (*domain.Segment, error) {
	var seg domain.Segment
	if err := row.Scan(&seg.ID, &seg.VideoID, &seg.Index, &seg.StartSeconds, &seg.Duration, &seg.StoredPath); err != nil {
		return nil, err
	}
	return &seg, nil
}

var _ port.VideoRegistry = (*Store)(nil)
