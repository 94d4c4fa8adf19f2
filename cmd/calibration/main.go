// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Guided stationary calibration. Captures a full bias window while the
// operator keeps the device still and level, reports stillness statistics,
// and writes the profile JSON the logger can load via PROFILE_PATH.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/relabs-tech/motion_logger/internal/bus"
	"github.com/relabs-tech/motion_logger/internal/calibration"
	"github.com/relabs-tech/motion_logger/internal/config"
	"github.com/relabs-tech/motion_logger/internal/mpu6050"
)

func main() {
	configPath := flag.String("config", "./motion_config.txt", "path to configuration file")
	outPath := flag.String("out", "", "profile output path (default: calibration_<timestamp>.json)")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	ch, err := bus.Open(cfg.I2CBus, cfg.I2CAddr, cfg.BusRetries,
		time.Duration(cfg.BusRetryBackoff)*time.Millisecond)
	if err != nil {
		fatal(fmt.Errorf("bus channel: %w", err))
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
		fatal(err)
	}
	if err := dev.Init(); err != nil {
		fatal(fmt.Errorf("device init: %w", err))
	}
	defer dev.Sleep()

	in := bufio.NewReader(os.Stdin)

	fmt.Println("=== Motion logger calibration ===")
	fmt.Printf("Window: %d samples at %d ms (≈ %s)\n",
		cfg.CalibrationWindow, cfg.TickInterval,
		time.Duration(cfg.CalibrationWindow*cfg.TickInterval)*time.Millisecond)
	fmt.Println()
	fmt.Println("Place the device on a level, vibration-free surface with the")
	fmt.Println("Z axis pointing up, and do not touch it during the capture.")
	waitEnter(in, "Press Enter to start...")

	profile, err := capture(dev, cfg)
	if err != nil {
		fatal(err)
	}

	fmt.Println()
	fmt.Printf("Gyro bias:   (%8.2f, %8.2f, %8.2f) LSB   stddev %.2f\n",
		profile.GyroBiasX, profile.GyroBiasY, profile.GyroBiasZ, profile.GyroStdDev)
	fmt.Printf("Accel bias:  (%8.2f, %8.2f, %8.2f) LSB   stddev %.2f\n",
		profile.AccelBiasX, profile.AccelBiasY, profile.AccelBiasZ, profile.AccelStdDev)

	// A noisy window usually means the device was disturbed. Warn, don't
	// refuse: on a moored vessel some residual motion is unavoidable.
	oneG := mpu6050.AccelSensitivity(cfg.AccelRange)
	if profile.AccelStdDev > oneG*0.02 {
		fmt.Println()
		fmt.Println("WARNING: accelerometer noise is high for a stationary capture;")
		fmt.Println("consider re-running on a steadier surface.")
	}

	name := *outPath
	if name == "" {
		name = fmt.Sprintf("calibration_%s.json", time.Now().Format("20060102_150405"))
	}
	if err := profile.Save(name); err != nil {
		fatal(err)
	}
	fmt.Printf("\nProfile written to %s\n", name)
	fmt.Printf("Set PROFILE_PATH=%s in the config to use it.\n", name)
}

// capture collects one full window, retrying per the configured attempt
// budget when reads fail mid-window.
func capture(dev *mpu6050.Dev, cfg *config.Config) (calibration.Profile, error) {
	interval := time.Duration(cfg.TickInterval) * time.Millisecond

	for attempt := 1; attempt <= cfg.CalibrationAttempts; attempt++ {
		col := calibration.NewCollector(cfg.CalibrationWindow)
		lastPct := -1

		for !col.Done() {
			raw, err := dev.ReadSample()
			if err != nil {
				log.Printf("calibration: read failed after %d samples: %v", col.Count(), err)
				break
			}
			col.Feed(raw)

			if pct := col.Count() * 100 / cfg.CalibrationWindow; pct/10 != lastPct/10 {
				fmt.Printf("  %3d%%\r", pct)
				lastPct = pct
			}
			time.Sleep(interval)
		}
		fmt.Println()

		profile, err := col.Profile(cfg.AccelRange, cfg.GyroRange)
		if err != nil {
			log.Printf("calibration: attempt %d/%d: %v", attempt, cfg.CalibrationAttempts, err)
			continue
		}
		return profile, nil
	}

	return calibration.Profile{}, fmt.Errorf("calibration failed after %d attempts: %w",
		cfg.CalibrationAttempts, calibration.ErrInsufficientData)
}

func waitEnter(in *bufio.Reader, prompt string) {
	fmt.Print(prompt)
	_, _ = in.ReadString('\n')
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
