// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/motion_logger/internal/bus"
	"github.com/relabs-tech/motion_logger/internal/imu"
)

// Opts selects the device configuration written once at bring-up.
type Opts struct {
	AccelRange    byte // AFS_SEL 0-3: ±2g ±4g ±8g ±16g
	GyroRange     byte // FS_SEL 0-3: ±250 ±500 ±1000 ±2000 °/s
	DLPF          byte // CONFIG DLPF_CFG 0-7
	SampleRateDiv byte // SMPLRT_DIV: output rate = internal rate / (1 + div)
	ClockSource   byte // PWR_MGMT_1 CLKSEL; 1 = gyro X PLL for better stability
}

// Dev is an MPU-6050 behind a bus channel.
type Dev struct {
	ch   bus.Channel
	opts Opts
}

func New(ch bus.Channel, opts Opts) (*Dev, error) {
	if opts.AccelRange > 3 {
		return nil, fmt.Errorf("accel range code %d out of range 0-3", opts.AccelRange)
	}
	if opts.GyroRange > 3 {
		return nil, fmt.Errorf("gyro range code %d out of range 0-3", opts.GyroRange)
	}
	if opts.DLPF > 7 {
		return nil, fmt.Errorf("DLPF config %d out of range 0-7", opts.DLPF)
	}
	if opts.ClockSource > 7 {
		return nil, fmt.Errorf("clock source %d out of range 0-7", opts.ClockSource)
	}
	return &Dev{ch: ch, opts: opts}, nil
}

// Init resets and configures the device. Every configuration write is read
// back and verified; a mismatch is fatal here rather than retried, since a
// device that does not hold its configuration cannot be trusted to sample.
func (d *Dev) Init() error {
	id, err := d.ch.ReadReg(RegWhoAmI)
	if err != nil {
		return fmt.Errorf("read WHO_AM_I: %w", err)
	}
	if id != whoAmIValue {
		return fmt.Errorf("unexpected WHO_AM_I 0x%02X, want 0x%02X", id, whoAmIValue)
	}

	// Software reset, then give the device time to come back up.
	if err := d.ch.WriteReg(RegPwrMgmt1, pwrReset); err != nil {
		return fmt.Errorf("device reset: %w", err)
	}
	time.Sleep(100 * time.Millisecond)

	// Wake with the selected clock source (clears the sleep bit the reset
	// leaves set).
	if err := d.writeVerified("PWR_MGMT_1", RegPwrMgmt1, d.opts.ClockSource); err != nil {
		return err
	}
	// All six axes and the thermometer active.
	if err := d.writeVerified("PWR_MGMT_2", RegPwrMgmt2, 0x00); err != nil {
		return err
	}

	if err := d.writeVerified("CONFIG", RegConfig, d.opts.DLPF); err != nil {
		return err
	}
	if err := d.writeVerified("SMPLRT_DIV", RegSmplrtDiv, d.opts.SampleRateDiv); err != nil {
		return err
	}
	if err := d.writeVerified("GYRO_CONFIG", RegGyroConfig, d.opts.GyroRange<<3); err != nil {
		return err
	}
	if err := d.writeVerified("ACCEL_CONFIG", RegAccelConfig, d.opts.AccelRange<<3); err != nil {
		return err
	}

	log.Printf("mpu6050: configured ±%dg, ±%d°/s, DLPF %d, sample rate divider %d",
		AccelRangeG(d.opts.AccelRange), GyroRangeDPS(d.opts.GyroRange),
		d.opts.DLPF, d.opts.SampleRateDiv)
	return nil
}

func (d *Dev) writeVerified(name string, reg, val byte) error {
	if err := d.ch.WriteReg(reg, val); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	got, err := d.ch.ReadReg(reg)
	if err != nil {
		return fmt.Errorf("verify %s: %w", name, err)
	}
	if got != val {
		return fmt.Errorf("%s read-back mismatch: wrote 0x%02X, read 0x%02X", name, val, got)
	}
	return nil
}

// ReadSample performs one burst read of the 14-byte data block so that all
// seven values come from the same sampling instant, and decodes it.
func (d *Dev) ReadSample() (imu.RawSample, error) {
	var block [BlockLen]byte
	if err := d.ch.ReadBlock(RegAccelXoutH, block[:]); err != nil {
		return imu.RawSample{}, err
	}
	return DecodeBlock(block[:])
}

// Sleep puts the device into low-power sleep. Called on shutdown; the write
// is best-effort and not verified.
func (d *Dev) Sleep() error {
	return d.ch.WriteReg(RegPwrMgmt1, d.opts.ClockSource|pwrSleep)
}
