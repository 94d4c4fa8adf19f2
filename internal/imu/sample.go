package imu

import "time"

// RawSample is one burst read of the sensor's data registers, decoded to
// signed integers but not yet calibrated or converted to physical units.
type RawSample struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Temp int16 `json:"temp"` // die temperature
}

// CalibratedSample is a RawSample with the calibration profile applied and
// raw counts converted to physical units.
type CalibratedSample struct {
	Ax float64 `json:"ax_g"` // g
	Ay float64 `json:"ay_g"`
	Az float64 `json:"az_g"`

	Gx float64 `json:"gx_dps"` // °/s
	Gy float64 `json:"gy_dps"`
	Gz float64 `json:"gz_dps"`

	TempC float64 `json:"temp_c"` // °C
}

// Record is the flat, self-describing unit handed to the record sink once
// per tick. Yaw is gyro integration only and drifts without bound; roll and
// pitch are the fused estimates.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`

	Ax float64 `json:"ax_g"`
	Ay float64 `json:"ay_g"`
	Az float64 `json:"az_g"`

	Gx float64 `json:"gx_dps"`
	Gy float64 `json:"gy_dps"`
	Gz float64 `json:"gz_dps"`

	TempC float64 `json:"temp_c"`

	Roll  float64 `json:"roll_deg"`
	Pitch float64 `json:"pitch_deg"`
	Yaw   float64 `json:"yaw_deg"` // drift-only
}
