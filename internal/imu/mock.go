// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"time"
)

// MockSource synthesizes raw samples with a smooth, gentle rocking motion,
// for running the full pipeline on a machine without the sensor attached.
// The samples are in raw counts for the given sensitivities so calibration
// and unit conversion behave exactly as with hardware.
type MockSource struct {
	start       time.Time
	accelLSBG   float64 // LSB per g
	gyroLSBDPS  float64 // LSB per °/s
	tempLSBPerC float64
}

func NewMockSource(accelLSBPerG, gyroLSBPerDPS float64) *MockSource {
	return &MockSource{
		start:       time.Now(),
		accelLSBG:   accelLSBPerG,
		gyroLSBDPS:  gyroLSBPerDPS,
		tempLSBPerC: 340.0,
	}
}

// ReadSample returns the next synthetic sample. Never fails.
func (m *MockSource) ReadSample() (RawSample, error) {
	elapsed := time.Since(m.start).Seconds()

	// ±5° roll and ±3° pitch swell, with the matching angular rates in °/s.
	rollRad := 5 * math.Pi / 180 * math.Sin(elapsed)
	pitchRad := 3 * math.Pi / 180 * math.Cos(elapsed*0.7)
	rollRate := 5 * math.Cos(elapsed)
	pitchRate := -3 * 0.7 * math.Sin(elapsed*0.7)

	return RawSample{
		Ax:   int16(-math.Sin(pitchRad) * m.accelLSBG),
		Ay:   int16(math.Sin(rollRad) * math.Cos(pitchRad) * m.accelLSBG),
		Az:   int16(math.Cos(rollRad) * math.Cos(pitchRad) * m.accelLSBG),
		Gx:   int16(rollRate * m.gyroLSBDPS),
		Gy:   int16(pitchRate * m.gyroLSBDPS),
		Gz:   0,
		Temp: int16((25.0 - 36.53) * m.tempLSBPerC),
	}, nil
}
