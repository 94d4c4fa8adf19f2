// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// I2CChannel is the Channel implementation over a periph.io I²C bus. It is
// the exclusive owner of the bus handle; no other component may issue
// transfers while it is open.
type I2CChannel struct {
	dev     i2c.Dev
	closer  i2c.BusCloser
	retries int
	backoff time.Duration
}

// Open initializes the periph host, opens the named I²C bus and returns a
// channel to the device at addr. retries is the number of extra attempts per
// transfer after the first; backoff is the fixed delay between attempts.
func Open(busName string, addr uint16, retries int, backoff time.Duration) (*I2CChannel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", busName, err)
	}

	ch := NewChannel(b, addr, retries, backoff)
	ch.closer = b
	return ch, nil
}

// NewChannel wraps an already-open bus. Used by Open and by tests that
// inject a scripted bus.
func NewChannel(b i2c.Bus, addr uint16, retries int, backoff time.Duration) *I2CChannel {
	if retries < 0 {
		retries = 0
	}
	return &I2CChannel{
		dev:     i2c.Dev{Addr: addr, Bus: b},
		retries: retries,
		backoff: backoff,
	}
}

func (c *I2CChannel) ReadBlock(reg byte, buf []byte) error {
	return c.transfer("read block", reg, []byte{reg}, buf)
}

func (c *I2CChannel) ReadReg(reg byte) (byte, error) {
	var buf [1]byte
	if err := c.transfer("read", reg, []byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (c *I2CChannel) WriteReg(reg, val byte) error {
	return c.transfer("write", reg, []byte{reg, val}, nil)
}

// transfer runs one bounded-length transaction, retrying transient faults.
// Each attempt is a fresh transfer; the channel never hands back stale or
// zeroed data in place of a failed read.
func (c *I2CChannel) transfer(op string, reg byte, w, r []byte) error {
	var last error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.backoff)
		}
		err := c.dev.Tx(w, r)
		if err == nil {
			return nil
		}
		last = &Fault{Op: op, Reg: reg, Err: err}
		log.Printf("bus: %v (attempt %d/%d)", last, attempt+1, c.retries+1)
	}
	return fmt.Errorf("%s reg 0x%02X failed after %d attempts (%v): %w",
		op, reg, c.retries+1, last, ErrUnavailable)
}

// Close releases the bus handle. Only channels created by Open own one.
func (c *I2CChannel) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
