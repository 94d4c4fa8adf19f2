// Package storage implements the record sinks: durable append-only sqlite
// storage, an optional MQTT mirror of the live record stream, and a fan-out
// over both.
package storage

import (
	"fmt"

	"github.com/relabs-tech/motion_logger/internal/imu"
)

// Sink accepts the finished records the sample loop emits. Append-only; the
// caller relinquishes ownership of the record on handoff.
type Sink interface {
	Append(rec imu.Record) error
	Close() error
}

// MultiSink fans each record out to every sink. The first append error
// aborts the tick: a record that did not reach durable storage must not be
// silently dropped.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Append(rec imu.Record) error {
	for _, s := range m.sinks {
		if err := s.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = fmt.Errorf("close sink: %w", err)
		}
	}
	return first
}
