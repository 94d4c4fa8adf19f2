package mpu6050

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/motion_logger/internal/imu"
)

// fakeChannel is an in-memory register file implementing bus.Channel.
type fakeChannel struct {
	regs       map[byte]byte
	stickyRegs map[byte]byte // registers that ignore writes, to provoke verify failures
	block      []byte
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		regs:       map[byte]byte{RegWhoAmI: 0x68},
		stickyRegs: map[byte]byte{},
	}
}

func (f *fakeChannel) ReadBlock(reg byte, buf []byte) error {
	copy(buf, f.block)
	return nil
}

func (f *fakeChannel) ReadReg(reg byte) (byte, error) {
	if v, ok := f.stickyRegs[reg]; ok {
		return v, nil
	}
	return f.regs[reg], nil
}

func (f *fakeChannel) WriteReg(reg, val byte) error {
	if reg == RegPwrMgmt1 && val&pwrReset != 0 {
		// Reset completes immediately in the fake; sleep bit untouched
		// so Init's wake write is still observable.
		return nil
	}
	f.regs[reg] = val
	return nil
}

func TestInitConfiguresAndVerifies(t *testing.T) {
	ch := newFakeChannel()
	dev, err := New(ch, Opts{AccelRange: 1, GyroRange: 2, DLPF: 3, SampleRateDiv: 9, ClockSource: 1})
	require.NoError(t, err)

	require.NoError(t, dev.Init())

	assert.Equal(t, byte(1), ch.regs[RegPwrMgmt1], "clock source")
	assert.Equal(t, byte(0), ch.regs[RegPwrMgmt2], "all axes active")
	assert.Equal(t, byte(3), ch.regs[RegConfig])
	assert.Equal(t, byte(9), ch.regs[RegSmplrtDiv])
	assert.Equal(t, byte(2<<3), ch.regs[RegGyroConfig])
	assert.Equal(t, byte(1<<3), ch.regs[RegAccelConfig])
}

func TestInitRejectsWrongIdentity(t *testing.T) {
	ch := newFakeChannel()
	ch.regs[RegWhoAmI] = 0x71 // some other InvenSense part

	dev, err := New(ch, Opts{})
	require.NoError(t, err)
	require.Error(t, dev.Init())
}

func TestInitFailsOnReadBackMismatch(t *testing.T) {
	ch := newFakeChannel()
	ch.stickyRegs[RegGyroConfig] = 0x00 // write appears to succeed, read-back disagrees

	dev, err := New(ch, Opts{GyroRange: 3})
	require.NoError(t, err)

	err = dev.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GYRO_CONFIG")
	assert.Contains(t, err.Error(), "mismatch")
}

func TestNewValidatesOpts(t *testing.T) {
	ch := newFakeChannel()
	for _, opts := range []Opts{
		{AccelRange: 4},
		{GyroRange: 7},
		{DLPF: 8},
		{ClockSource: 9},
	} {
		_, err := New(ch, opts)
		assert.Error(t, err, "%+v", opts)
	}
}

func TestReadSampleDecodesBurstBlock(t *testing.T) {
	want := imu.RawSample{Ax: 100, Ay: -200, Az: 16384, Gx: -50, Gy: 60, Gz: -70, Temp: -521}

	ch := newFakeChannel()
	ch.block = EncodeBlock(want)

	dev, err := New(ch, Opts{})
	require.NoError(t, err)

	got, err := dev.ReadSample()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
