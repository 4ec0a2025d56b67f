// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Avery Hallewell

package transport

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestPipe_RoundTrip(t *testing.T) {
	a, b := NewPipe(50 * time.Millisecond)
	defer a.Close()
	defer b.Close()

	msg := []byte{0xA5, 0x02, 0x02, 0x01, 0x99}
	if n, err := a.Write(msg); err != nil || n != len(msg) {
		t.Fatalf("write: n=%d err=%v", n, err)
	}

	buf := make([]byte, 16)
	n, err := b.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf[:n], msg) {
		t.Errorf("read %v, want %v", buf[:n], msg)
	}
}

func TestPipe_ReadTimeout(t *testing.T) {
	a, b := NewPipe(20 * time.Millisecond)
	defer a.Close()
	defer b.Close()

	start := time.Now()
	n, err := b.Read(make([]byte, 8))
	if n != 0 || err != nil {
		t.Errorf("timeout read: n=%d err=%v, want 0, nil", n, err)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("read returned before the timeout elapsed")
	}
}

func TestPipe_ShortReadKeepsRemainder(t *testing.T) {
	a, b := NewPipe(50 * time.Millisecond)
	defer a.Close()
	defer b.Close()

	a.Write([]byte{1, 2, 3, 4})

	buf := make([]byte, 2)
	if n, _ := b.Read(buf); n != 2 || !bytes.Equal(buf, []byte{1, 2}) {
		t.Fatalf("first read: n=%d buf=%v", n, buf)
	}
	if n, _ := b.Read(buf); n != 2 || !bytes.Equal(buf, []byte{3, 4}) {
		t.Fatalf("second read: n=%d buf=%v", n, buf)
	}
}

func TestPipe_Close(t *testing.T) {
	a, b := NewPipe(time.Second)
	a.Close()

	if _, err := a.Write([]byte{1}); err != io.ErrClosedPipe {
		t.Errorf("write after close: err=%v, want io.ErrClosedPipe", err)
	}
	if _, err := a.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("read after close: err=%v, want io.EOF", err)
	}
	b.Close()
}
