package orientation

import (
	"math"
)

// Pose is the canonical orientation representation: roll and pitch in
// degrees. Yaw cannot be observed from accelerometer+gyroscope alone and is
// reported as drift-only gyro integration.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// TiltFromAccel computes roll and pitch from the gravity vector alone.
// Noisy but drift-free; only the axis ratios matter, so any unit works.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func TiltFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
		Yaw:   0,
	}
}
