// Package lineedit provides the byte buffer for the command line being
// typed. The buffer holds raw bytes between line terminators; echo and
// erase rendering is the caller's job.
package lineedit

// Buffer accumulates the current command line. The zero value is usable.
type Buffer struct {
	b []byte
}

// Append adds one byte to the end of the buffer.
func (l *Buffer) Append(c byte) {
	l.b = append(l.b, c)
}

// AppendString adds s to the end of the buffer.
func (l *Buffer) AppendString(s string) {
	l.b = append(l.b, s...)
}

// Backspace removes the last byte. Reports whether a byte was removed;
// on an empty buffer it is a no-op.
func (l *Buffer) Backspace() bool {
	if len(l.b) == 0 {
		return false
	}
	l.b = l.b[:len(l.b)-1]
	return true
}

// Take returns the buffered line and clears the buffer.
func (l *Buffer) Take() string {
	s := string(l.b)
	l.b = l.b[:0]
	return s
}

// Load replaces the buffer contents with s.
func (l *Buffer) Load(s string) {
	l.b = append(l.b[:0], s...)
}

// Len returns the number of buffered bytes.
func (l *Buffer) Len() int {
	return len(l.b)
}

// String returns the buffered bytes without clearing them.
func (l *Buffer) String() string {
	return string(l.b)
}
