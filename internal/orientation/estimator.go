// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/motion_logger/internal/imu"
)

// Estimator fuses calibrated accelerometer and gyroscope samples into a
// stable pose with a complementary filter: the gyro-integrated angle is
// smooth but drifts, the accelerometer tilt is noisy but absolute, and the
// blend constant alpha (close to 1) weighs the former against the latter.
//
// The estimator owns its pose exclusively; only the sample loop's goroutine
// may call Update.
type Estimator struct {
	alpha     float64
	trustBand float64

	pose   Pose
	primed bool
}

// NewEstimator creates an estimator with blend constant alpha in [0,1) and
// an accelerometer trust band in g: while the measured magnitude is within
// 1±trustBand g the accelerometer term participates in the blend, otherwise
// the device is under non-gravitational acceleration and the tick falls back
// to pure gyro integration.
func NewEstimator(alpha, trustBand float64) *Estimator {
	if alpha < 0 || alpha >= 1 {
		alpha = 0.98
	}
	if trustBand <= 0 {
		trustBand = 0.2
	}
	return &Estimator{alpha: alpha, trustBand: trustBand}
}

// Update advances the estimate by one tick. dt is the measured elapsed time
// in seconds since the previous tick, not the nominal period: bus retries
// make tick duration variable and the integration must use real time.
func (e *Estimator) Update(s imu.CalibratedSample, dt float64) Pose {
	mag := math.Sqrt(s.Ax*s.Ax + s.Ay*s.Ay + s.Az*s.Az)
	accelTrusted := math.Abs(mag-1.0) <= e.trustBand

	if !e.primed {
		// Seed from the first trusted accelerometer reading so the
		// filter does not spend its first seconds converging from zero.
		if accelTrusted {
			e.pose = TiltFromAccel(s.Ax, s.Ay, s.Az)
		}
		e.primed = true
		return e.pose
	}

	// Gyro axes map onto the tilt angles: X rate drives roll, Y rate
	// drives pitch, Z rate drives (drift-only) yaw.
	gyroRoll := e.pose.Roll + s.Gx*dt
	gyroPitch := e.pose.Pitch + s.Gy*dt
	yaw := e.pose.Yaw + s.Gz*dt

	if accelTrusted {
		tilt := TiltFromAccel(s.Ax, s.Ay, s.Az)
		e.pose = Pose{
			Roll:  e.alpha*gyroRoll + (1-e.alpha)*tilt.Roll,
			Pitch: e.alpha*gyroPitch + (1-e.alpha)*tilt.Pitch,
			Yaw:   yaw,
		}
	} else {
		e.pose = Pose{Roll: gyroRoll, Pitch: gyroPitch, Yaw: yaw}
	}
	return e.pose
}

// Pose returns the current estimate without advancing it.
func (e *Estimator) Pose() Pose { return e.pose }
