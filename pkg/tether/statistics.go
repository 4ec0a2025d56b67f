// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package tether

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Statistics tracks frame counts and error rates for a decode stream. It is
// safe for concurrent use by a reader goroutine and a display loop.
type Statistics struct {
	mu sync.Mutex

	StartTime time.Time

	TotalFrames  uint64
	ValidFrames  uint64
	Commands     uint64
	Responses    uint64
	CRCErrors    uint64
	DecodeErrors uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// Update records the outcome of one DecodeByte call that produced either a
// frame or an error.
func (s *Statistics) Update(frame *Frame, decodeErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalFrames++

	if decodeErr != nil {
		if strings.HasPrefix(decodeErr.Error(), "CRC mismatch") {
			s.CRCErrors++
		} else {
			s.DecodeErrors++
		}
		return
	}

	s.ValidFrames++
	if frame.IsResponse() {
		s.Responses++
	} else {
		s.Commands++
	}
}

// Counters is a mutex-free copy of the frame counters.
type Counters struct {
	TotalFrames  uint64
	ValidFrames  uint64
	Commands     uint64
	Responses    uint64
	CRCErrors    uint64
	DecodeErrors uint64
}

// Counters returns a consistent copy of the counters, safe to read while the
// decode stream is still running.
func (s *Statistics) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counters{
		TotalFrames:  s.TotalFrames,
		ValidFrames:  s.ValidFrames,
		Commands:     s.Commands,
		Responses:    s.Responses,
		CRCErrors:    s.CRCErrors,
		DecodeErrors: s.DecodeErrors,
	}
}

// CalculateRates recomputes the frame and error rates
func (s *Statistics) CalculateRates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRatesLocked()
}

func (s *Statistics) calculateRatesLocked() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.CRCErrors+s.DecodeErrors) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRatesLocked()

	var validPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)
	result += fmt.Sprintf("  Commands:      %8d\n", s.Commands)
	result += fmt.Sprintf("  Responses:     %8d\n", s.Responses)
	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d\n", s.CRCErrors)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d\n", s.DecodeErrors)
	}
	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all counters
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StartTime = time.Now()
	s.TotalFrames = 0
	s.ValidFrames = 0
	s.Commands = 0
	s.Responses = 0
	s.CRCErrors = 0
	s.DecodeErrors = 0
	s.FrameRate = 0
	s.ErrorRate = 0
}
