// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import (
	"fmt"
	"sync"
	"time"
)

// Buffer is a unit of media data moving through a pipeline.
type Buffer struct {
	PTS      time.Duration
	Duration time.Duration
	Offset   uint64

	mu      sync.Mutex
	data    []byte
	readers int
	writer  bool
}

// NewBuffer allocates a zeroed buffer of size bytes.
func NewBuffer(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	return &Buffer{data: make([]byte, size)}
}

// NewBufferFromBytes wraps data without copying it.
func NewBufferFromBytes(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Size returns the payload length.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Bytes returns a copy of the payload.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// MapFlags selects the access mode of a buffer map.
type MapFlags int

const (
	MapRead  MapFlags = 1 << 0
	MapWrite MapFlags = 1 << 1
)

func (f MapFlags) String() string {
	switch f {
	case MapRead:
		return "read"
	case MapWrite:
		return "write"
	case MapRead | MapWrite:
		return "readwrite"
	}
	return fmt.Sprintf("MapFlags(%d)", int(f))
}

// MapInfo gives direct access to a mapped buffer's memory until it is unmapped.
type MapInfo struct {
	Data  []byte
	Size  int
	Flags MapFlags
}

// Maps maps buffers for direct memory access.
type Maps struct{}

// MapBuffer maps buf with the requested access. Any number of read maps may
// coexist; a write map is exclusive.
func (Maps) MapBuffer(buf *Buffer, flags MapFlags) (MapInfo, error) {
	if buf == nil {
		return MapInfo{}, fmt.Errorf("map buffer: nil buffer")
	}
	if flags&(MapRead|MapWrite) == 0 {
		return MapInfo{}, fmt.Errorf("map buffer: invalid flags %s", flags)
	}

	buf.mu.Lock()
	defer buf.mu.Unlock()

	if buf.writer {
		return MapInfo{}, ErrBufferMapped
	}
	if flags&MapWrite != 0 {
		if buf.readers > 0 {
			return MapInfo{}, ErrBufferMapped
		}
		buf.writer = true
	} else {
		buf.readers++
	}
	return MapInfo{Data: buf.data, Size: len(buf.data), Flags: flags}, nil
}

// UnmapBuffer releases a map obtained from MapBuffer.
func (Maps) UnmapBuffer(buf *Buffer, info MapInfo) {
	if buf == nil {
		return
	}
	buf.mu.Lock()
	defer buf.mu.Unlock()
	if info.Flags&MapWrite != 0 {
		buf.writer = false
		return
	}
	if buf.readers > 0 {
		buf.readers--
	}
}
