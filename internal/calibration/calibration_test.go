package calibration

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_logger/internal/imu"
)

// stationary is a plausible resting reading at ±2g / ±250°/s: small accel
// offsets, gravity on Z slightly off one g, small gyro bias.
var stationary = imu.RawSample{
	Ax: 120, Ay: -80, Az: 16500,
	Gx: -30, Gy: 12, Gz: 5,
	Temp: -1000,
}

func feedN(c *Collector, s imu.RawSample, n int) {
	for i := 0; i < n; i++ {
		c.Feed(s)
	}
}

func TestStationaryWindowBias(t *testing.T) {
	col := NewCollector(100)
	feedN(col, stationary, 100)
	require.True(t, col.Done())

	profile, err := col.Profile(0, 0)
	require.NoError(t, err)

	assert.InDelta(t, 120, profile.AccelBiasX, 1e-9)
	assert.InDelta(t, -80, profile.AccelBiasY, 1e-9)
	assert.InDelta(t, 16500-16384, profile.AccelBiasZ, 1e-9)
	assert.InDelta(t, -30, profile.GyroBiasX, 1e-9)
	assert.InDelta(t, 12, profile.GyroBiasY, 1e-9)
	assert.InDelta(t, 5, profile.GyroBiasZ, 1e-9)

	// Constant input, zero spread.
	assert.InDelta(t, 0, profile.AccelStdDev, 1e-6)
	assert.InDelta(t, 0, profile.GyroStdDev, 1e-6)

	// Applying the profile to the same resting reading must give level,
	// one-g, zero-rate output.
	cal := profile.Apply(stationary)
	assert.InDelta(t, 0, cal.Ax, 1e-9)
	assert.InDelta(t, 0, cal.Ay, 1e-9)
	assert.InDelta(t, 1, cal.Az, 1e-9)
	assert.InDelta(t, 0, cal.Gx, 1e-9)
	assert.InDelta(t, 0, cal.Gy, 1e-9)
	assert.InDelta(t, 0, cal.Gz, 1e-9)
}

func TestShortWindowRejected(t *testing.T) {
	col := NewCollector(100)
	feedN(col, stationary, 99) // simulates a bus fault ending the window early
	require.False(t, col.Done())

	_, err := col.Profile(0, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestWindowIgnoresExtraSamples(t *testing.T) {
	col := NewCollector(10)
	feedN(col, stationary, 10)
	// A disturbed sample after the window is full must not shift the bias.
	col.Feed(imu.RawSample{Ax: 30000, Gz: 30000})

	profile, err := col.Profile(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 120, profile.AccelBiasX, 1e-9)
	assert.InDelta(t, 5, profile.GyroBiasZ, 1e-9)
}

func TestIdentityProfile(t *testing.T) {
	p := Identity(0, 0)
	assert.True(t, p.Uncalibrated)

	// Identity offsets: unit conversion only.
	cal := p.Apply(imu.RawSample{Az: 16384, Gx: 131})
	assert.InDelta(t, 1, cal.Az, 1e-9)
	assert.InDelta(t, 1, cal.Gx, 1e-9)
}

func TestApplyUsesConfiguredRange(t *testing.T) {
	// The same raw count means different physical values under different
	// full-scale ranges.
	p2g := Identity(0, 0)
	p16g := Identity(3, 3)

	raw := imu.RawSample{Az: 2048, Gx: 164}
	assert.InDelta(t, 0.125, p2g.Apply(raw).Az, 1e-9)
	assert.InDelta(t, 1.0, p16g.Apply(raw).Az, 1e-9)
	assert.InDelta(t, 10.0, p16g.Apply(raw).Gx, 1e-9)
}

func TestProfileSaveLoadRoundTrip(t *testing.T) {
	col := NewCollector(50)
	feedN(col, stationary, 50)
	want, err := col.Profile(1, 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, want.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want.AccelBiasZ, got.AccelBiasZ)
	assert.Equal(t, want.GyroBiasX, got.GyroBiasX)
	assert.Equal(t, byte(1), got.AccelRange)
	assert.Equal(t, byte(2), got.GyroRange)
	assert.Equal(t, want.Window, got.Window)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	p := Identity(0, 0)
	p.Version = 99

	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, p.Save(path))

	_, err := Load(path)
	require.Error(t, err)
}
