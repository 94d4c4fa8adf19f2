package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/motion_logger/internal/bus"
	"github.com/relabs-tech/motion_logger/internal/calibration"
	"github.com/relabs-tech/motion_logger/internal/config"
	"github.com/relabs-tech/motion_logger/internal/imu"
	"github.com/relabs-tech/motion_logger/internal/mpu6050"
	"github.com/relabs-tech/motion_logger/internal/orientation"
	"github.com/relabs-tech/motion_logger/internal/storage"
)

// RunLogger wires the configured pipeline and runs it until ctx is cancelled
// or the run faults.
func RunLogger(ctx context.Context) error {
	log.Println("starting motion-logger acquisition pipeline")

	cfg := config.Get()

	// --- sample source: real device or mock ---
	var reader SampleReader
	if cfg.MockIMU {
		log.Println("using mock IMU source")
		reader = imu.NewMockSource(
			mpu6050.AccelSensitivity(cfg.AccelRange),
			mpu6050.GyroSensitivity(cfg.GyroRange),
		)
	} else {
		ch, err := bus.Open(cfg.I2CBus, cfg.I2CAddr, cfg.BusRetries,
			time.Duration(cfg.BusRetryBackoff)*time.Millisecond)
		if err != nil {
			return fmt.Errorf("bus channel: %w", err)
		}
		defer ch.Close()

		dev, err := mpu6050.New(ch, mpu6050.Opts{
			AccelRange:    cfg.AccelRange,
			GyroRange:     cfg.GyroRange,
			DLPF:          cfg.DLPFConfig,
			SampleRateDiv: cfg.SampleRateDiv,
			ClockSource:   cfg.ClockSource,
		})
		if err != nil {
			return fmt.Errorf("device: %w", err)
		}
		if err := dev.Init(); err != nil {
			return fmt.Errorf("device init: %w", err)
		}
		defer func() {
			if err := dev.Sleep(); err != nil {
				log.Printf("device sleep: %v", err)
			}
		}()
		reader = dev
	}

	// --- record sinks ---
	sqliteSink, err := storage.NewSQLiteSink(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("record sink: %w", err)
	}
	sinks := []storage.Sink{sqliteSink}

	if cfg.MQTTBroker != "" {
		mqttSink, err := storage.NewMQTTSink(cfg.MQTTBroker, cfg.MQTTClientID, cfg.TopicRecord)
		if err != nil {
			sqliteSink.Close()
			return fmt.Errorf("MQTT mirror: %w", err)
		}
		log.Printf("mirroring records to %s (%s)", cfg.MQTTBroker, cfg.TopicRecord)
		sinks = append(sinks, mqttSink)
	}

	sink := storage.NewMultiSink(sinks...)
	defer sink.Close()

	// --- optional saved calibration profile ---
	var profile *calibration.Profile
	if cfg.ProfilePath != "" {
		p, err := calibration.Load(cfg.ProfilePath)
		if err != nil {
			return fmt.Errorf("calibration profile: %w", err)
		}
		if p.AccelRange != cfg.AccelRange || p.GyroRange != cfg.GyroRange {
			return fmt.Errorf("calibration profile %s was measured for ranges accel=%d gyro=%d, config has accel=%d gyro=%d",
				cfg.ProfilePath, p.AccelRange, p.GyroRange, cfg.AccelRange, cfg.GyroRange)
		}
		profile = &p
	}

	est := orientation.NewEstimator(cfg.FilterAlpha, cfg.AccelTrustBand)

	sampler := NewSampler(reader, sink, est, SamplerOpts{
		TickInterval: time.Duration(cfg.TickInterval) * time.Millisecond,
		Window:       cfg.CalibrationWindow,
		Attempts:     cfg.CalibrationAttempts,
		AccelRange:   cfg.AccelRange,
		GyroRange:    cfg.GyroRange,
		Profile:      profile,
	})

	return sampler.Run(ctx)
}
