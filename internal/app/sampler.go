// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/motion_logger/internal/calibration"
	"github.com/relabs-tech/motion_logger/internal/imu"
	"github.com/relabs-tech/motion_logger/internal/orientation"
	"github.com/relabs-tech/motion_logger/internal/storage"
)

// State is the sampler's run state. Faulted and Stopped are terminal for the
// run; a restart goes back through Uninitialized.
type State int

const (
	StateUninitialized State = iota
	StateCalibrating
	StateRunning
	StateFaulted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCalibrating:
		return "calibrating"
	case StateRunning:
		return "running"
	case StateFaulted:
		return "faulted"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// SampleReader is one burst acquisition from the device. Implemented by
// mpu6050.Dev and by the mock source.
type SampleReader interface {
	ReadSample() (imu.RawSample, error)
}

// SamplerOpts configures a Sampler.
type SamplerOpts struct {
	TickInterval time.Duration

	// Calibration window and retry budget. Ignored when Profile is set.
	Window   int
	Attempts int

	// Range codes the bias computation and unit conversion run under.
	AccelRange byte
	GyroRange  byte

	// Profile, when non-nil, is a saved calibration profile; the sampler
	// skips the calibration phase and goes straight to running.
	Profile *calibration.Profile
}

// Sampler drives the full pipeline at a fixed cadence: burst read → decode →
// apply calibration → update orientation → append one record to the sink.
// A single goroutine owns it end to end; the estimator and profile are never
// touched concurrently.
type Sampler struct {
	reader SampleReader
	sink   storage.Sink
	est    *orientation.Estimator
	opts   SamplerOpts

	profile calibration.Profile
	state   State
	ticks   uint64 // records emitted so far; also the next record's index
}

func NewSampler(reader SampleReader, sink storage.Sink, est *orientation.Estimator, opts SamplerOpts) *Sampler {
	return &Sampler{
		reader: reader,
		sink:   sink,
		est:    est,
		opts:   opts,
		state:  StateUninitialized,
	}
}

// State returns the current run state.
func (s *Sampler) State() State { return s.state }

// Ticks returns the number of records emitted so far.
func (s *Sampler) Ticks() uint64 { return s.ticks }

// Profile returns the calibration profile in effect. Meaningful once the
// sampler has left the calibrating state.
func (s *Sampler) Profile() calibration.Profile { return s.profile }

// Run calibrates (unless a saved profile was supplied) and then samples
// until ctx is cancelled or a fault surfaces. Cancellation is honored
// between ticks only, never mid-transfer, so the device registers are never
// left half-written.
//
// A nil return means a clean operator stop; a non-nil return means the run
// faulted and the error names the last successful tick. Either way all
// previously appended records remain intact in the sink.
func (s *Sampler) Run(ctx context.Context) error {
	start := time.Now()

	s.state = StateCalibrating
	if s.opts.Profile != nil {
		s.profile = *s.opts.Profile
		log.Printf("sampler: using saved calibration profile from %s (window %d)",
			s.profile.Timestamp.Format(time.RFC3339), s.profile.Window)
	} else if err := s.calibrate(ctx); err != nil {
		if ctx.Err() != nil {
			s.state = StateStopped
			log.Printf("sampler: stopped during calibration")
			return nil
		}
		s.state = StateFaulted
		return err
	}

	s.state = StateRunning
	log.Printf("sampler: running, tick interval %s", s.opts.TickInterval)

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	// deltaTime is measured between ticks rather than assumed: bus retries
	// stretch individual ticks and the gyro integration must use real
	// elapsed time.
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.state = StateStopped
			log.Printf("sampler: stopped after %d records in %s", s.ticks, time.Since(start).Round(time.Millisecond))
			return nil

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			raw, err := s.reader.ReadSample()
			if err != nil {
				s.state = StateFaulted
				return fmt.Errorf("sampler: faulted at tick %d after %d records: %w",
					s.ticks, s.ticks, err)
			}

			cal := s.profile.Apply(raw)
			pose := s.est.Update(cal, dt)

			rec := imu.Record{
				Timestamp: now,
				Tick:      s.ticks,
				Ax:        cal.Ax,
				Ay:        cal.Ay,
				Az:        cal.Az,
				Gx:        cal.Gx,
				Gy:        cal.Gy,
				Gz:        cal.Gz,
				TempC:     cal.TempC,
				Roll:      pose.Roll,
				Pitch:     pose.Pitch,
				Yaw:       pose.Yaw,
			}
			if err := s.sink.Append(rec); err != nil {
				s.state = StateFaulted
				return fmt.Errorf("sampler: sink failed at tick %d: %w", s.ticks, err)
			}
			s.ticks++
		}
	}
}

// calibrate collects a full stationary window, retrying the whole window up
// to the attempt budget. A read failure mid-window abandons that window
// entirely; partial windows are never used.
func (s *Sampler) calibrate(ctx context.Context) error {
	log.Printf("sampler: calibrating over %d samples, keep the device still", s.opts.Window)

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.opts.Attempts; attempt++ {
		col := calibration.NewCollector(s.opts.Window)

	window:
		for !col.Done() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				raw, err := s.reader.ReadSample()
				if err != nil {
					log.Printf("sampler: calibration read failed after %d samples: %v", col.Count(), err)
					break window
				}
				col.Feed(raw)
			}
		}

		profile, err := col.Profile(s.opts.AccelRange, s.opts.GyroRange)
		if err != nil {
			log.Printf("sampler: calibration attempt %d/%d: %v", attempt, s.opts.Attempts, err)
			continue
		}

		s.profile = profile
		log.Printf("sampler: calibrated; gyro bias (%.1f, %.1f, %.1f) LSB, accel bias (%.1f, %.1f, %.1f) LSB, gyro stddev %.2f",
			profile.GyroBiasX, profile.GyroBiasY, profile.GyroBiasZ,
			profile.AccelBiasX, profile.AccelBiasY, profile.AccelBiasZ,
			profile.GyroStdDev)
		return nil
	}

	return fmt.Errorf("sampler: calibration failed after %d attempts: %w",
		s.opts.Attempts, calibration.ErrInsufficientData)
}
