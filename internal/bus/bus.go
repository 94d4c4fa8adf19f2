// Package bus provides the register-level channel to a device on the shared
// I²C bus. The channel owns the bus handle for the process lifetime and
// absorbs transient transfer faults with a bounded retry policy; anything it
// surfaces to a caller is fatal for the current run.
package bus

import (
	"errors"
	"fmt"
)

// ErrUnavailable reports that a transfer kept failing after the channel's
// retry budget was spent. Callers must not keep polling through it.
var ErrUnavailable = errors.New("bus unavailable")

// Fault is a single failed transfer attempt. It is retryable; the channel
// retries internally and only escalates as ErrUnavailable.
type Fault struct {
	Op  string
	Reg byte
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("bus fault: %s reg 0x%02X: %v", f.Op, f.Reg, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Channel is a register-level channel to one device.
//
// ReadBlock fills buf with len(buf) consecutive registers starting at reg,
// relying on the device's address auto-increment so all values come from the
// same transfer.
type Channel interface {
	ReadBlock(reg byte, buf []byte) error
	ReadReg(reg byte) (byte, error)
	WriteReg(reg, val byte) error
}
