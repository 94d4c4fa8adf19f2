// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/relabs-tech/motion_logger/internal/imu"
	"github.com/relabs-tech/motion_logger/internal/mpu6050"
)

const profileVersion = 1

// Profile holds the per-axis bias offsets (raw counts) and scale factors
// derived from one stationary window. Read-only after creation; persisted as
// JSON so a logger run can reuse it instead of recalibrating.
type Profile struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Window    int       `json:"window"`

	// Range codes the biases were measured under. A profile only applies
	// to the ranges it was created for.
	AccelRange byte `json:"accel_range"`
	GyroRange  byte `json:"gyro_range"`

	AccelBiasX float64 `json:"accel_bias_x"`
	AccelBiasY float64 `json:"accel_bias_y"`
	AccelBiasZ float64 `json:"accel_bias_z"`
	GyroBiasX  float64 `json:"gyro_bias_x"`
	GyroBiasY  float64 `json:"gyro_bias_y"`
	GyroBiasZ  float64 `json:"gyro_bias_z"`

	AccelScaleX float64 `json:"accel_scale_x"`
	AccelScaleY float64 `json:"accel_scale_y"`
	AccelScaleZ float64 `json:"accel_scale_z"`

	// Stillness figures from the window, for eyeballing capture quality.
	AccelStdDev float64 `json:"accel_static_stddev"`
	GyroStdDev  float64 `json:"gyro_static_stddev"`

	// Uncalibrated marks an identity profile: zero bias, unit scale.
	Uncalibrated bool `json:"uncalibrated,omitempty"`
}

// Identity returns an explicitly uncalibrated profile for the given ranges:
// identity offsets, unit conversion only.
func Identity(accelRange, gyroRange byte) Profile {
	return Profile{
		Version:      profileVersion,
		Timestamp:    time.Now().UTC(),
		AccelRange:   accelRange,
		GyroRange:    gyroRange,
		AccelScaleX:  1.0,
		AccelScaleY:  1.0,
		AccelScaleZ:  1.0,
		Uncalibrated: true,
	}
}

// Apply subtracts bias, applies scale and converts raw counts to physical
// units (g, °/s, °C). Pure and cheap; called once per tick.
func (p Profile) Apply(raw imu.RawSample) imu.CalibratedSample {
	accelLSB := mpu6050.AccelSensitivity(p.AccelRange)
	gyroLSB := mpu6050.GyroSensitivity(p.GyroRange)

	return imu.CalibratedSample{
		Ax:    (float64(raw.Ax) - p.AccelBiasX) * p.AccelScaleX / accelLSB,
		Ay:    (float64(raw.Ay) - p.AccelBiasY) * p.AccelScaleY / accelLSB,
		Az:    (float64(raw.Az) - p.AccelBiasZ) * p.AccelScaleZ / accelLSB,
		Gx:    (float64(raw.Gx) - p.GyroBiasX) / gyroLSB,
		Gy:    (float64(raw.Gy) - p.GyroBiasY) / gyroLSB,
		Gz:    (float64(raw.Gz) - p.GyroBiasZ) / gyroLSB,
		TempC: mpu6050.TempRawToC(raw.Temp),
	}
}

// Save writes the profile as indented JSON.
func (p Profile) Save(path string) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Load reads a previously saved profile.
func Load(path string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if p.Version != profileVersion {
		return Profile{}, fmt.Errorf("profile %s: unsupported version %d", path, p.Version)
	}
	return p, nil
}
