package verify

import "sync/atomic"

// OperationType enumerates the operation categories tracked by the
// process-wide counter (spec section 3/4.A: "push, pop, lookup, checksum,
// validate").
type OperationType int

const (
	OpPush OperationType = iota
	OpPop
	OpLookup
	OpChecksum
	OpValidate
	opCount
)

func (o OperationType) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	case OpLookup:
		return "lookup"
	case OpChecksum:
		return "checksum"
	case OpValidate:
		return "validate"
	default:
		return "unknown"
	}
}

// counters is the module's single process-wide shared mutable state
// (spec section 5: "Exactly one: the operation counter for verification").
// It is a fixed-size array of atomics, never resized after package init,
// satisfying "must be initialized once at process start and never torn
// down" (spec section 9).
var counters [opCount]atomic.Uint64

// Record increments the process-wide counter for op by one. It never
// blocks and never panics; on saturation at math.MaxUint64 the counter
// simply stops incrementing (a bounded counter, per spec section 3:
// "counter is monotonic and bounded").
func Record(op OperationType) {
	if op < 0 || op >= opCount {
		return
	}
	c := &counters[op]
	for {
		cur := c.Load()
		if cur == ^uint64(0) {
			return
		}
		if c.CompareAndSwap(cur, cur+1) {
			return
		}
	}
}

// Count returns the current value of the process-wide counter for op.
func Count(op OperationType) uint64 {
	if op < 0 || op >= opCount {
		return 0
	}
	return counters[op].Load()
}

// ResetCounters zeroes every process-wide counter. Exposed only for test
// isolation between independent test cases that assert on exact counts.
func ResetCounters() {
	for i := range counters {
		counters[i].Store(0)
	}
}
