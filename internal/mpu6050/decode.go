package mpu6050

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/relabs-tech/motion_logger/internal/imu"
)

// BlockLen is the size of the contiguous data block at ACCEL_XOUT_H:
// accel XYZ, temperature, gyro XYZ, each a big-endian two's-complement
// 16-bit pair.
const BlockLen = 14

// ErrBlockSize reports a block whose length does not match BlockLen. This is
// a contract violation by the caller, not a runtime fault: the bus channel
// always transfers exactly BlockLen bytes.
var ErrBlockSize = errors.New("register block size mismatch")

// DecodeBlock decodes one burst-read data block into a raw sample.
func DecodeBlock(block []byte) (imu.RawSample, error) {
	if len(block) != BlockLen {
		return imu.RawSample{}, fmt.Errorf("got %d bytes, want %d: %w", len(block), BlockLen, ErrBlockSize)
	}
	return imu.RawSample{
		Ax:   int16(binary.BigEndian.Uint16(block[0:2])),
		Ay:   int16(binary.BigEndian.Uint16(block[2:4])),
		Az:   int16(binary.BigEndian.Uint16(block[4:6])),
		Temp: int16(binary.BigEndian.Uint16(block[6:8])),
		Gx:   int16(binary.BigEndian.Uint16(block[8:10])),
		Gy:   int16(binary.BigEndian.Uint16(block[10:12])),
		Gz:   int16(binary.BigEndian.Uint16(block[12:14])),
	}, nil
}

// EncodeBlock is the inverse of DecodeBlock.
func EncodeBlock(s imu.RawSample) []byte {
	block := make([]byte, BlockLen)
	binary.BigEndian.PutUint16(block[0:2], uint16(s.Ax))
	binary.BigEndian.PutUint16(block[2:4], uint16(s.Ay))
	binary.BigEndian.PutUint16(block[4:6], uint16(s.Az))
	binary.BigEndian.PutUint16(block[6:8], uint16(s.Temp))
	binary.BigEndian.PutUint16(block[8:10], uint16(s.Gx))
	binary.BigEndian.PutUint16(block[10:12], uint16(s.Gy))
	binary.BigEndian.PutUint16(block[12:14], uint16(s.Gz))
	return block
}
