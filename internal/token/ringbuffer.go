package token

import "errors"

// RingBuffer is a bounded producer/consumer token queue. The cursor-based
// Queue is the parser's normal input; RingBuffer exists for the lexer's
// streaming mode (Lexer.Tokens), where a pathologically large single line
// must not force the whole token stream to live in memory at once.
type RingBuffer struct {
	data       []Token
	readIndex  int
	writeIndex int
	size       int
}

// ErrRingBufferFull is returned by Push when the buffer has no free slot.
var ErrRingBufferFull = errors.New("ring buffer full")

// NewRingBuffer allocates a ring buffer with room for capacity tokens.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 2048
	}
	return &RingBuffer{data: make([]Token, capacity)}
}

// Push enqueues tok, returning ErrRingBufferFull if the buffer is saturated.
func (rb *RingBuffer) Push(tok Token) error {
	if rb.size == len(rb.data) {
		return ErrRingBufferFull
	}
	rb.data[rb.writeIndex] = tok
	rb.writeIndex = (rb.writeIndex + 1) % len(rb.data)
	rb.size++
	return nil
}

// Pop dequeues the oldest token. ok is false when the buffer is empty.
func (rb *RingBuffer) Pop() (Token, bool) {
	if rb.size == 0 {
		return Token{}, false
	}
	tok := rb.data[rb.readIndex]
	rb.readIndex = (rb.readIndex + 1) % len(rb.data)
	rb.size--
	return tok, true
}

// Peek returns the oldest token without dequeuing it.
func (rb *RingBuffer) Peek() (Token, bool) {
	if rb.size == 0 {
		return Token{}, false
	}
	return rb.data[rb.readIndex], true
}

// Empty reports whether the buffer currently holds no tokens.
func (rb *RingBuffer) Empty() bool { return rb.size == 0 }

// Full reports whether the buffer has no free slot.
func (rb *RingBuffer) Full() bool { return rb.size == len(rb.data) }
