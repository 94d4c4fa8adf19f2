package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Bus / device
	I2CBus  string
	I2CAddr uint16

	// Sensor configuration
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	GyroRange     byte
	DLPFConfig    byte // Digital Low Pass Filter configuration (0-7)
	SampleRateDiv byte // output rate = internal rate / (1 + div)
	ClockSource   byte // PWR_MGMT_1 CLKSEL (1 = gyro X PLL)

	// Bus retry policy
	BusRetries      int // extra attempts per transfer after the first
	BusRetryBackoff int // milliseconds between attempts

	// Timing
	TickInterval int // milliseconds between samples

	// Calibration
	CalibrationWindow   int
	CalibrationAttempts int
	ProfilePath         string // optional saved profile; skips startup calibration

	// Orientation filter
	FilterAlpha    float64 // complementary blend constant
	AccelTrustBand float64 // g deviation from 1 g beyond which accel is ignored

	// Record sinks
	DBPath       string
	MQTTBroker   string // optional live mirror
	MQTTClientID string
	TopicRecord  string

	// Development
	MockIMU bool
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//     This enforces encapsulation and prevents external code from modifying config without proper locking.
//     Has package-level scope (visible to all functions in this package, persists for program lifetime).
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns a Config preloaded with the documented operational
// defaults; the file only needs to override what differs.
func defaults() *Config {
	return &Config{
		I2CAddr:             0x68,
		ClockSource:         1, // gyro X PLL for clock stability
		BusRetries:          3,
		BusRetryBackoff:     2,
		CalibrationWindow:   200,
		CalibrationAttempts: 3,
		FilterAlpha:         0.98,
		AccelTrustBand:      0.2,
		MQTTClientID:        "motion-logger",
		TopicRecord:         "motion/record",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Bus / device
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid I2C_ADDR %q: %w", value, err)
		}
		c.I2CAddr = uint16(addr)

	// Sensor configuration
	case "ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.AccelRange = byte(rangeVal)
	case "GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("GYRO_RANGE must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", rangeVal)
		}
		c.GyroRange = byte(rangeVal)
	case "DLPF_CFG":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DLPF_CFG %q: %w", value, err)
		}
		if val < 0 || val > 7 {
			return fmt.Errorf("DLPF_CFG must be 0-7, got %d", val)
		}
		c.DLPFConfig = byte(val)
	case "SMPLRT_DIV":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SMPLRT_DIV %q: %w", value, err)
		}
		if val < 0 || val > 255 {
			return fmt.Errorf("SMPLRT_DIV must be 0-255, got %d", val)
		}
		c.SampleRateDiv = byte(val)
	case "CLOCK_SOURCE":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CLOCK_SOURCE %q: %w", value, err)
		}
		if val < 0 || val > 7 {
			return fmt.Errorf("CLOCK_SOURCE must be 0-7, got %d", val)
		}
		c.ClockSource = byte(val)

	// Bus retry policy
	case "BUS_RETRIES":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BUS_RETRIES %q: %w", value, err)
		}
		if val < 0 {
			return fmt.Errorf("BUS_RETRIES must be >= 0, got %d", val)
		}
		c.BusRetries = val
	case "BUS_RETRY_BACKOFF":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BUS_RETRY_BACKOFF %q: %w", value, err)
		}
		if val < 0 {
			return fmt.Errorf("BUS_RETRY_BACKOFF must be >= 0, got %d", val)
		}
		c.BusRetryBackoff = val

	// Timing
	case "TICK_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("TICK_INTERVAL must be > 0, got %d", interval)
		}
		c.TickInterval = interval

	// Calibration
	case "CALIBRATION_WINDOW":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CALIBRATION_WINDOW %q: %w", value, err)
		}
		if val < 1 {
			return fmt.Errorf("CALIBRATION_WINDOW must be >= 1, got %d", val)
		}
		c.CalibrationWindow = val
	case "CALIBRATION_ATTEMPTS":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CALIBRATION_ATTEMPTS %q: %w", value, err)
		}
		if val < 1 {
			return fmt.Errorf("CALIBRATION_ATTEMPTS must be >= 1, got %d", val)
		}
		c.CalibrationAttempts = val
	case "PROFILE_PATH":
		c.ProfilePath = value

	// Orientation filter
	case "FILTER_ALPHA":
		val, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FILTER_ALPHA %q: %w", value, err)
		}
		if val < 0 || val >= 1 {
			return fmt.Errorf("FILTER_ALPHA must be in [0,1), got %g", val)
		}
		c.FilterAlpha = val
	case "ACCEL_TRUST_BAND":
		val, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACCEL_TRUST_BAND %q: %w", value, err)
		}
		if val <= 0 {
			return fmt.Errorf("ACCEL_TRUST_BAND must be > 0, got %g", val)
		}
		c.AccelTrustBand = val

	// Record sinks
	case "DB_PATH":
		c.DBPath = value
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_RECORD":
		c.TopicRecord = value

	// Development
	case "MOCK_IMU":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_IMU %q: %w", value, err)
		}
		c.MockIMU = b

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.I2CBus == "" && !c.MockIMU {
		return fmt.Errorf("I2C_BUS is required")
	}
	if c.TickInterval == 0 {
		return fmt.Errorf("TICK_INTERVAL is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// Acquires write lock (configMu.Lock) during initialization to prevent concurrent access.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
// Uses read lock (configMu.RLock) to allow multiple concurrent readers without blocking.
// This is thread-safe and efficient for concurrent access across goroutines.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
