package bound

import (
	"github.com/pulseengine/wrt/internal/verify"
)

// Stack is a fixed-capacity last-in-first-out sequence with a running
// checksum, grounded on BoundedStack in
// original_source/wrt-types/src/bounded.rs.
type Stack[T Byteser] struct {
	data     []T
	capacity int
	level    verify.Level
	checksum verify.Checksum
	sampling samplingCounter
}

// NewStack constructs an empty Stack with the given fixed capacity and
// verification level.
func NewStack[T Byteser](capacity int, level verify.Level) *Stack[T] {
	return &Stack[T]{
		data:     make([]T, 0, capacity),
		capacity: capacity,
		level:    level,
		checksum: verify.NewChecksum(),
		sampling: newSamplingCounter(),
	}
}

func (s *Stack[T]) Len() int      { return len(s.data) }
func (s *Stack[T]) Capacity() int { return s.capacity }
func (s *Stack[T]) IsFull() bool  { return len(s.data) >= s.capacity }

func (s *Stack[T]) VerificationLevel() verify.Level { return s.level }

func (s *Stack[T]) SetVerificationLevel(level verify.Level) {
	wasNone := s.level == verify.None
	s.level = level
	if wasNone && level != verify.None {
		s.recomputeChecksum()
	}
}

func (s *Stack[T]) recomputeChecksum() {
	c := verify.NewChecksum()
	for _, item := range s.data {
		c = c.Update(item.Bytes())
	}
	s.checksum = c
	verify.Record(verify.OpChecksum)
}

func (s *Stack[T]) settleChecksum() {
	switch s.level {
	case verify.Sampling:
		if s.sampling.shouldSample() {
			s.recomputeChecksum()
		}
	case verify.Standard, verify.Full:
		s.recomputeChecksum()
	}
}

// Push pushes item onto the top of the stack.
func (s *Stack[T]) Push(item T) error {
	verify.Record(verify.OpPush)
	if s.IsFull() {
		return capacityError("Stack", s.capacity, len(s.data)+1)
	}
	s.data = append(s.data, item)
	s.settleChecksum()
	return nil
}

// Pop removes and returns the top element, or ok=false if empty.
func (s *Stack[T]) Pop() (item T, ok bool) {
	verify.Record(verify.OpPop)
	n := len(s.data)
	if n == 0 {
		return item, false
	}
	item = s.data[n-1]
	s.data = s.data[:n-1]
	s.settleChecksum()
	return item, true
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() (item T, ok bool) {
	verify.Record(verify.OpLookup)
	if len(s.data) == 0 {
		return item, false
	}
	if s.level == verify.Full && !s.VerifyChecksum() {
		return item, false
	}
	return s.data[len(s.data)-1], true
}

// Iter returns a copy of the underlying slice, bottom to top.
func (s *Stack[T]) Iter() []T {
	out := make([]T, len(s.data))
	copy(out, s.data)
	return out
}

// VerifyChecksum recomputes the checksum fresh and compares.
func (s *Stack[T]) VerifyChecksum() bool {
	verify.Record(verify.OpValidate)
	if len(s.data) == 0 {
		return true
	}
	fresh := verify.NewChecksum()
	for _, item := range s.data {
		fresh = fresh.Update(item.Bytes())
	}
	return fresh.Equal(s.checksum)
}

// ForceRecalculateChecksum recomputes and stores the checksum
// unconditionally.
func (s *Stack[T]) ForceRecalculateChecksum() {
	s.recomputeChecksum()
}
