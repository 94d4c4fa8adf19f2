package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_logger/internal/imu"
)

func testRecord(tick uint64) imu.Record {
	return imu.Record{
		Timestamp: time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC),
		Tick:      tick,
		Ax:        0.01, Ay: -0.02, Az: 0.998,
		Gx: 0.5, Gy: -0.25, Gz: 0.1,
		TempC: 21.4,
		Roll:  1.2, Pitch: -0.8, Yaw: 15.0,
	}
}

func TestSQLiteSinkAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Append(testRecord(uint64(i))))
	}
	require.NoError(t, sink.Close())

	// Reopen independently and verify the rows landed.
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count))
	assert.Equal(t, 3, count)

	var ts string
	var tick int64
	var az, roll float64
	require.NoError(t, db.QueryRow(
		"SELECT ts_utc, tick, az_g, roll_deg FROM records ORDER BY tick LIMIT 1").
		Scan(&ts, &tick, &az, &roll))
	assert.Equal(t, "2026-03-14T15:09:26.535Z", ts)
	assert.Equal(t, int64(0), tick)
	assert.InDelta(t, 0.998, az, 1e-9)
	assert.InDelta(t, 1.2, roll, 1e-9)
}

func TestSQLiteSinkAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	// Two sessions against the same file must accumulate, not truncate.
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(testRecord(0)))
	require.NoError(t, sink.Close())

	sink, err = NewSQLiteSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(testRecord(1)))
	require.NoError(t, sink.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count))
	assert.Equal(t, 2, count)
}

type countingSink struct {
	appended int
	fail     bool
}

func (c *countingSink) Append(imu.Record) error {
	if c.fail {
		return errors.New("sink failed")
	}
	c.appended++
	return nil
}

func (c *countingSink) Close() error { return nil }

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	multi := NewMultiSink(a, b)

	require.NoError(t, multi.Append(testRecord(0)))
	assert.Equal(t, 1, a.appended)
	assert.Equal(t, 1, b.appended)
}

func TestMultiSinkStopsOnFirstError(t *testing.T) {
	a := &countingSink{fail: true}
	b := &countingSink{}
	multi := NewMultiSink(a, b)

	require.Error(t, multi.Append(testRecord(0)))
	assert.Zero(t, b.appended, "later sinks must not receive a record the run will refuse")
}
