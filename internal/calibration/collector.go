// Package calibration computes per-axis bias offsets from a stationary
// sample window and applies them to subsequent readings. A profile is only
// ever produced from a full window; partial windows would bias the
// estimates and are rejected outright.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/motion_logger/internal/imu"
	"github.com/relabs-tech/motion_logger/internal/mpu6050"
)

// ErrInsufficientData reports a calibration window that ended short, e.g.
// because a bus read failed mid-window. The caller may retry the whole
// window; the partial one is discarded.
var ErrInsufficientData = errors.New("insufficient calibration data")

// Collector accumulates a stationary window of raw samples. The device is
// assumed motionless with gravity on the Z axis for the duration.
type Collector struct {
	window int
	n      int

	sum   [7]float64 // ax ay az gx gy gz temp
	sumSq [7]float64
}

func NewCollector(window int) *Collector {
	if window < 1 {
		window = 1
	}
	return &Collector{window: window}
}

// Feed adds one raw sample. Samples beyond the window size are ignored.
func (c *Collector) Feed(s imu.RawSample) {
	if c.n >= c.window {
		return
	}
	for i, v := range [7]int16{s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.Temp} {
		f := float64(v)
		c.sum[i] += f
		c.sumSq[i] += f * f
	}
	c.n++
}

// Count returns the number of samples collected so far.
func (c *Collector) Count() int { return c.n }

// Done reports whether the window is full.
func (c *Collector) Done() bool { return c.n >= c.window }

// Profile computes the calibration profile for the configured full-scale
// ranges. Gyro bias is the window mean (true rate is zero at rest); accel
// X/Y bias is the mean (level surface reads zero); accel Z bias is the mean
// minus one g in raw counts (gravity is expected on that axis).
func (c *Collector) Profile(accelRange, gyroRange byte) (Profile, error) {
	if c.n < c.window {
		return Profile{}, fmt.Errorf("%d of %d samples: %w", c.n, c.window, ErrInsufficientData)
	}

	mean := [7]float64{}
	std := [7]float64{}
	for i := range mean {
		mean[i] = c.sum[i] / float64(c.n)
		variance := c.sumSq[i]/float64(c.n) - mean[i]*mean[i]
		if variance < 0 {
			variance = 0
		}
		std[i] = math.Sqrt(variance)
	}

	oneG := mpu6050.AccelSensitivity(accelRange)

	return Profile{
		Version:    profileVersion,
		Timestamp:  time.Now().UTC(),
		Window:     c.n,
		AccelRange: accelRange,
		GyroRange:  gyroRange,

		AccelBiasX: mean[0],
		AccelBiasY: mean[1],
		AccelBiasZ: mean[2] - oneG,
		GyroBiasX:  mean[3],
		GyroBiasY:  mean[4],
		GyroBiasZ:  mean[5],

		AccelScaleX: 1.0,
		AccelScaleY: 1.0,
		AccelScaleZ: 1.0,

		AccelStdDev: (std[0] + std[1] + std[2]) / 3,
		GyroStdDev:  (std[3] + std[4] + std[5]) / 3,
	}, nil
}
