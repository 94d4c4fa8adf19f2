package imu

import (
	"math"
	"testing"
)

func TestMockSourceStaysNearOneG(t *testing.T) {
	src := NewMockSource(16384, 131)

	for i := 0; i < 50; i++ {
		s, err := src.ReadSample()
		if err != nil {
			t.Fatalf("mock read: %v", err)
		}

		ax := float64(s.Ax) / 16384
		ay := float64(s.Ay) / 16384
		az := float64(s.Az) / 16384
		mag := math.Sqrt(ax*ax + ay*ay + az*az)
		if math.Abs(mag-1) > 0.02 {
			t.Fatalf("sample %d: |a| = %.4f, want ≈ 1 g", i, mag)
		}
	}
}
