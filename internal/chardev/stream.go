package chardev

import (
	log "github.com/sirupsen/logrus"
	"io"
	"sync"
)

// Stream is one open of the device. Each stream has its own read cursor.
type Stream struct {
	id  string
	dev *Device

	mu     sync.Mutex
	cursor int
	closed bool
}

// ID identifies the stream in logs.
func (s *Stream) ID() string {
	return s.id
}

// Read copies the advisory message from the read cursor on. Once the message is
// exhausted it returns io.EOF until the device is opened again.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if s.dev.isDetached() {
		return 0, ErrDetached
	}

	msg := s.dev.message
	if s.cursor >= len(msg) {
		return 0, io.EOF
	}
	n := copy(p, msg[s.cursor:])
	s.cursor += n

	log.WithFields(log.Fields{"stream": s.id, "bytes": n}).Debug("LCD CHARDEV: read")
	return n, nil
}

// Write renders p on the display. At most the capacity of the display is taken from p
// and the last byte taken is treated as a terminator and not shown. After the first
// line is full the cursor moves to the second line once; anything beyond is dropped.
// The whole of p is always reported as written.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if s.dev.isDetached() {
		return 0, ErrDetached
	}

	n := payloadLength(len(p), s.dev.geometry.Capacity())
	log.WithFields(log.Fields{"stream": s.id, "bytes": len(p), "rendered": n}).Debug("LCD CHARDEV: write")

	for i := 0; i < n; i++ {
		if i == s.dev.geometry.Columns {
			s.dev.display.SecondLine()
		}
		s.dev.display.WriteChar(p[i])
	}

	return len(p), nil
}

// Close releases the device for the next open.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.dev.release()

	log.WithField("stream", s.id).Info("LCD CHARDEV: closing")
	return nil
}

// payloadLength is the number of bytes of a write that are rendered. A write of zero or
// one byte renders nothing.
func payloadLength(requested, capacity int) int {
	n := requested
	if n > capacity {
		n = capacity
	}
	if n <= 1 {
		return 0
	}
	return n - 1
}
