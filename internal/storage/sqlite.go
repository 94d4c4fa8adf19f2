package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/relabs-tech/motion_logger/internal/imu"
	_ "modernc.org/sqlite"
)

// SQLiteSink appends records to a local sqlite database, one row per tick.
type SQLiteSink struct {
	db     *sql.DB
	insert *sql.Stmt
}

func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open record database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts_utc TEXT NOT NULL,
			tick INTEGER NOT NULL,
			ax_g DOUBLE NOT NULL,
			ay_g DOUBLE NOT NULL,
			az_g DOUBLE NOT NULL,
			gx_dps DOUBLE NOT NULL,
			gy_dps DOUBLE NOT NULL,
			gz_dps DOUBLE NOT NULL,
			temp_c DOUBLE NOT NULL,
			roll_deg DOUBLE NOT NULL,
			pitch_deg DOUBLE NOT NULL,
			yaw_deg DOUBLE NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}

	insert, err := db.Prepare(`
		INSERT INTO records (
			ts_utc, tick, ax_g, ay_g, az_g, gx_dps, gy_dps, gz_dps,
			temp_c, roll_deg, pitch_deg, yaw_deg
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare record insert: %w", err)
	}

	return &SQLiteSink{db: db, insert: insert}, nil
}

func (s *SQLiteSink) Append(rec imu.Record) error {
	_, err := s.insert.Exec(
		rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.Tick,
		rec.Ax, rec.Ay, rec.Az,
		rec.Gx, rec.Gy, rec.Gz,
		rec.TempC, rec.Roll, rec.Pitch, rec.Yaw,
	)
	if err != nil {
		return fmt.Errorf("insert record %d: %w", rec.Tick, err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	s.insert.Close()
	return s.db.Close()
}
