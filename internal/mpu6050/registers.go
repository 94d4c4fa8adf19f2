// Package mpu6050 talks to the InvenSense MPU-6050 (GY-521 breakout) at the
// register level: bring-up with read-back verification, one burst read per
// tick over the contiguous data block, and the pure decode of that block.
//
// Register map: https://invensense.tdk.com/wp-content/uploads/2015/02/MPU-6000-Register-Map1.pdf
package mpu6050

// Register addresses.
const (
	RegSmplrtDiv   = 0x19
	RegConfig      = 0x1A // DLPF + external frame sync
	RegGyroConfig  = 0x1B
	RegAccelConfig = 0x1C
	RegIntPinCfg   = 0x37
	RegIntEnable   = 0x38
	RegIntStatus   = 0x3A
	RegAccelXoutH  = 0x3B // start of the 14-byte data block
	RegTempOutH    = 0x41
	RegGyroXoutH   = 0x43
	RegPwrMgmt1    = 0x6B
	RegPwrMgmt2    = 0x6C
	RegWhoAmI      = 0x75
)

// DefaultAddr is the I²C address with AD0 wired to ground; 0x69 with AD0
// high.
const DefaultAddr = 0x68

// whoAmIValue is the identity the WHO_AM_I register must report.
const whoAmIValue = 0x68

// PWR_MGMT_1 bits.
const (
	pwrReset = 1 << 7
	pwrSleep = 1 << 6
)

// RegisterNames maps the configuration and status registers to datasheet
// names, for the register debug tool.
var RegisterNames = map[byte]string{
	RegSmplrtDiv:   "SMPLRT_DIV",
	RegConfig:      "CONFIG",
	RegGyroConfig:  "GYRO_CONFIG",
	RegAccelConfig: "ACCEL_CONFIG",
	RegIntPinCfg:   "INT_PIN_CFG",
	RegIntEnable:   "INT_ENABLE",
	RegIntStatus:   "INT_STATUS",
	RegAccelXoutH:  "ACCEL_XOUT_H",
	RegTempOutH:    "TEMP_OUT_H",
	RegGyroXoutH:   "GYRO_XOUT_H",
	RegPwrMgmt1:    "PWR_MGMT_1",
	RegPwrMgmt2:    "PWR_MGMT_2",
	RegWhoAmI:      "WHO_AM_I",
}

// Sensitivity scale factors per full-scale range code (FS_SEL/AFS_SEL 0-3).
var (
	accelLSBPerG   = [4]float64{16384, 8192, 4096, 2048} // ±2g ±4g ±8g ±16g
	gyroLSBPerDPS  = [4]float64{131.0, 65.5, 32.8, 16.4} // ±250 ±500 ±1000 ±2000 °/s
	accelRangeG    = [4]int{2, 4, 8, 16}
	gyroRangeDPS   = [4]int{250, 500, 1000, 2000}
	tempLSBPerDegC = 340.0
	tempOffsetC    = 36.53 // register map rev 4.2, section 4.18
)

// AccelSensitivity returns LSB/g for a range code 0-3.
func AccelSensitivity(rangeCode byte) float64 {
	return accelLSBPerG[rangeCode&0x03]
}

// GyroSensitivity returns LSB/(°/s) for a range code 0-3.
func GyroSensitivity(rangeCode byte) float64 {
	return gyroLSBPerDPS[rangeCode&0x03]
}

// AccelRangeG returns the configured full-scale range in g.
func AccelRangeG(rangeCode byte) int { return accelRangeG[rangeCode&0x03] }

// GyroRangeDPS returns the configured full-scale range in °/s.
func GyroRangeDPS(rangeCode byte) int { return gyroRangeDPS[rangeCode&0x03] }

// TempRawToC converts a raw temperature reading to °C.
func TempRawToC(raw int16) float64 {
	return float64(raw)/tempLSBPerDegC + tempOffsetC
}
