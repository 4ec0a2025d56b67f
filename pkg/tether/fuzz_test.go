// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package tether

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func TestFuzz_RoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	decoder := NewDecoder()
	for round := 0; round < rounds; round++ {
		command := uint8(rng.Intn(0x100))
		payload := make([]byte, rng.Intn(MaxPayloadSize+1))
		rng.Read(payload)

		wire, err := EncodeFrame(command, payload)
		if err != nil {
			t.Fatalf("round %d: encode error: %v", round, err)
		}

		var frame *Frame
		for _, b := range wire {
			f, decodeErr := decoder.DecodeByte(b)
			if decodeErr != nil {
				t.Fatalf("round %d: decode error: %v", round, decodeErr)
			}
			if f != nil {
				frame = f
			}
		}

		if frame == nil {
			t.Fatalf("round %d: no frame decoded", round)
		}
		if frame.Command() != command {
			t.Fatalf("round %d: command 0x%02X != 0x%02X", round, frame.Command(), command)
		}
		if !bytes.Equal(frame.Payload(), payload) {
			t.Fatalf("round %d: payload mismatch", round)
		}
	}
}

func TestFuzz_GarbageNeverPanics(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	decoder := NewDecoder()
	for round := 0; round < rounds; round++ {
		garbage := make([]byte, rng.Intn(256))
		rng.Read(garbage)
		for _, b := range garbage {
			decoder.DecodeByte(b)
		}
	}

	// The decoder must still work after arbitrary garbage.
	decoder.Reset()
	var frame *Frame
	for _, b := range MustEncodeFrame(CmdPing, nil) {
		if f, _ := decoder.DecodeByte(b); f != nil {
			frame = f
		}
	}
	if frame == nil || frame.Command() != CmdPing {
		t.Error("decoder unusable after garbage stream")
	}
}

func TestFuzz_InterleavedGarbageAndFrames(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	decoder := NewDecoder()
	decoded := 0
	for round := 0; round < rounds; round++ {
		// Garbage burst guaranteed to leave the decoder in WaitStart: it
		// contains no start byte and follows a Reset.
		decoder.Reset()
		burst := make([]byte, rng.Intn(64))
		for i := range burst {
			burst[i] = byte(rng.Intn(0x100))
			if burst[i] == StartByte {
				burst[i] = 0x00
			}
		}
		for _, b := range burst {
			decoder.DecodeByte(b)
		}

		payload := make([]byte, rng.Intn(8))
		rng.Read(payload)
		wire := MustEncodeFrame(CmdPing, payload)
		for _, b := range wire {
			if f, _ := decoder.DecodeByte(b); f != nil {
				decoded++
			}
		}
	}

	if decoded != rounds {
		t.Errorf("decoded %d frames, want %d", decoded, rounds)
	}
}
