// Package component implements the cross-component call lifecycle
// (section 4.H) and the component type graph (section 4.I).
//
// This file covers the call context manager: prepare_call, get_call_context,
// complete_call and fail_call, parameter marshaling under the Canonical ABI,
// resource-lock coordination with deterministic ordering, a three-part call
// validator, and a sweeper for timed-out calls. Grounded one-to-one on
// original_source/wrt-component/src/call_context.rs's struct shapes
// (CallContextManager, ManagedCallContext, ParameterMarshaler,
// ResourceCoordinator, CallValidator, PerformanceMonitor, ResourceLock,
// TransferPolicy). That source's validate_call, coordinate_resources and
// record_call_completion bodies are stubs — validate_call always returns
// Passed without inspecting its arguments, coordinate_resources hands out
// locks with a placeholder owner_call_id/acquired_at/expires_at of zero,
// and there is no fail_call or sweeper at all. This port implements the
// genuine logic spec.md mandates (real parameter/security/resource checks,
// real lock bookkeeping with deterministic handle-ascending acquisition
// order, a timeout sweeper, fail_call) in the source's idiom rather than
// carrying its stubs forward; see DESIGN.md for the itemized deviation.
package component

import (
	"sort"
	"sync"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/pulseengine/wrt/internal/bound"
	"github.com/pulseengine/wrt/internal/verify"
	"github.com/pulseengine/wrt/wrterr"
	"github.com/pulseengine/wrt/wrtlog"
)

// Canonical ABI size limits (spec 4.H).
const (
	MaxParameterDataSize = 1024 * 1024
	MaxStringLength       = 65536
	MaxArrayLength        = 4096
	MaxCallContexts       = 256
)

// CallID identifies one managed call context. It satisfies bound.Byteser
// so the manager's context table can reuse internal/bound.Map's
// deterministic, checksum-verified storage instead of a bare Go map.
type CallID uint64

// Bytes returns the big-endian encoding of id, used both for bound.Map's
// sorted iteration and for its running checksum.
func (id CallID) Bytes() []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(id)
		id >>= 8
	}
	return b
}

func callIDEqual(a, b CallID) bool { return a == b }

// CallState is the call context's lifecycle state machine (spec 4.H):
// Prepared -> Marshaling -> Executing -> Completed | Failed. Transitions
// are driven exclusively by the manager's exported methods; a context
// never advances itself.
type CallState int

const (
	CallPrepared CallState = iota
	CallMarshaling
	CallExecuting
	CallCompleted
	CallFailed
)

func (s CallState) String() string {
	switch s {
	case CallPrepared:
		return "prepared"
	case CallMarshaling:
		return "marshaling"
	case CallExecuting:
		return "executing"
	case CallCompleted:
		return "completed"
	case CallFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ResourceLockKind is the kind of advisory lock a call holds on a
// resource handle, grounded on ResourceLockType in call_context.rs.
type ResourceLockKind int

const (
	SharedRead ResourceLockKind = iota
	ExclusiveWrite
	Transfer
)

func (k ResourceLockKind) String() string {
	switch k {
	case SharedRead:
		return "shared_read"
	case ExclusiveWrite:
		return "exclusive_write"
	case Transfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// exclusive reports whether k excludes every other lock on the same
// handle (ExclusiveWrite and Transfer are both exclusive; SharedRead
// coexists with other SharedRead locks only).
func (k ResourceLockKind) exclusive() bool { return k != SharedRead }

// ResourceLock is one held lock on a resource handle, grounded on
// ResourceLock in call_context.rs. AcquiredAt/ExpiresAt are caller-supplied
// logical clock values (this package never reads the wall clock per the
// module-wide "no Time.Now in hot paths" rule carried from the engine),
// so the host advances time explicitly via the sweeper's `now` argument.
type ResourceLock struct {
	Handle      uint64
	OwnerCallID CallID
	Kind        ResourceLockKind
	AcquiredAt  uint64
	ExpiresAt   uint64
}

// TransferPolicy bounds resource movement between one ordered pair of
// instances, grounded on TransferPolicy in call_context.rs.
type TransferPolicy struct {
	MaxConcurrent       int
	AllowedKinds        []ResourceLockKind
	RequiredPermissions []string
}

func (p TransferPolicy) allows(kind ResourceLockKind) bool {
	if len(p.AllowedKinds) == 0 {
		return true
	}
	for _, k := range p.AllowedKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// instancePair keys the manager's per-pair transfer-policy table.
type instancePair struct {
	source, target uint32
}

// SecurityPolicy is the per-source-instance access policy consulted by
// the validator's security sub-check, grounded on SecurityPolicy in
// call_context.rs.
type SecurityPolicy struct {
	AllowedTargets        []uint32
	AllowedFunctions      []string // glob-style patterns, matched via matchPattern
	MaxMemoryBytes        uint32
	AllowResourceWrite    bool
	AllowResourceTransfer bool
}

// CallMetrics accumulates the per-call counters recorded at completion,
// grounded on CallMetrics in call_context.rs, trimmed to the fields this
// port actually computes (no wall-clock timing, since the engine proper
// has no timer dependency either).
type CallMetrics struct {
	ParameterDataSize     uint32
	ResourceTransferCount uint32
}

// CallContext is the immutable request a caller hands to PrepareCall:
// which function on which target instance, with which parameters and
// resource handles, issued by which source instance.
type CallContext struct {
	SourceInstance    uint32
	TargetInstance    uint32
	FunctionName      string
	Parameters        []ComponentValue
	ParameterTypes    []wit.Type // optional: signature resolved from a .wit document, checked by validateParameters
	ResourceHandles   []uint64
	RequestedLockKind ResourceLockKind
	MaxDurationUs     uint64
	StartedAt         uint64 // logical clock value supplied by the caller; PrepareCall does not set it
}

// ManagedCallContext is the full tracked state for one call, grounded on
// ManagedCallContext in call_context.rs.
type ManagedCallContext struct {
	ID            CallID
	Context       CallContext
	State         CallState
	Marshaled     []ComponentValue
	MarshaledSize uint32
	AcquiredLocks []uint64
	Metrics       CallMetrics
	FailureReason string
}

func (c *ManagedCallContext) Bytes() []byte {
	// The manager's Map folds each value's Bytes() into its checksum
	// alongside the key's. The call ID is used as the encoding, so the
	// checksum covers which calls are present, not their mutable state.
	return c.ID.Bytes()
}

// CallContextManager owns every active call context plus the marshaler,
// resource coordinator and validator it delegates to, grounded on
// CallContextManager in call_context.rs. One manager is single-threaded
// per spec section 5; the mutex guards against a host driving the
// sweeper from a separate goroutine than the one issuing prepare/complete
// calls, not against genuine concurrent Wasm execution.
type CallContextManager struct {
	mu sync.Mutex

	contexts *bound.Map[CallID, *ManagedCallContext]
	nextID   CallID

	// locks holds every outstanding lock per handle. Multiple SharedRead
	// locks from different calls may coexist on one handle; an
	// ExclusiveWrite or Transfer lock is always the sole entry.
	locks    map[uint64][]*ResourceLock
	policies map[instancePair]TransferPolicy
	security map[uint32]SecurityPolicy

	level verify.Level
}

// NewCallContextManager constructs an empty manager with the spec's fixed
// 256-context capacity.
func NewCallContextManager(level verify.Level) *CallContextManager {
	return &CallContextManager{
		contexts: bound.NewMap[CallID, *ManagedCallContext](MaxCallContexts, level, callIDEqual),
		locks:    make(map[uint64][]*ResourceLock),
		policies: make(map[instancePair]TransferPolicy),
		security: make(map[uint32]SecurityPolicy),
		level:    level,
	}
}

// SetTransferPolicy installs the policy governing resource movement from
// source to target. Call before PrepareCall for the pair; the default for
// an unconfigured pair is "any kind, unlimited concurrency", matching the
// Rust source's permissive stub default.
func (m *CallContextManager) SetTransferPolicy(source, target uint32, policy TransferPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[instancePair{source, target}] = policy
}

// SetSecurityPolicy installs the access policy for calls issued by
// sourceInstance.
func (m *CallContextManager) SetSecurityPolicy(sourceInstance uint32, policy SecurityPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.security[sourceInstance] = policy
}

// PrepareCall validates, marshals and locks resources for a new call,
// then transitions it Prepared -> Marshaling -> Executing, per spec 4.H.
// On any validation or marshaling failure the call never enters the
// table: the returned error is a *wrterr.ValidationError or
// *wrterr.MarshalingError and no call_id is allocated.
func (m *CallContextManager) PrepareCall(ctx CallContext) (CallID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validateCall(ctx); err != nil {
		return 0, err
	}

	marshaled, size, err := marshalParameters(ctx.Parameters)
	if err != nil {
		return 0, err
	}

	if m.contexts.IsFull() {
		return 0, &wrterr.CapacityError{Collection: "CallContextManager", Capacity: MaxCallContexts, Attempted: m.contexts.Len() + 1}
	}

	locks, err := m.acquireLocks(ctx)
	if err != nil {
		return 0, err
	}

	id := m.nextID
	m.nextID++

	mc := &ManagedCallContext{
		ID:            id,
		Context:       ctx,
		State:         CallExecuting,
		Marshaled:     marshaled,
		MarshaledSize: size,
		AcquiredLocks: locks,
		Metrics: CallMetrics{
			ParameterDataSize:     size,
			ResourceTransferCount: uint32(len(locks)),
		},
	}
	if _, _, err := m.contexts.Insert(id, mc); err != nil {
		m.releaseLocks(id, locks)
		return 0, err
	}

	wrtlog.Logger().Debug("component call prepared",
		zap.Uint64("call_id", uint64(id)),
		zap.Uint32("source", ctx.SourceInstance),
		zap.Uint32("target", ctx.TargetInstance),
		zap.Uint32("marshaled_size", size))
	return id, nil
}

// GetCallContext returns a read-only view of the call, or false if call_id
// is unknown (already completed/failed contexts are removed from the
// table, matching the Rust source's HashMap::remove on completion).
func (m *CallContextManager) GetCallContext(id CallID) (ManagedCallContext, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mc, ok := m.contexts.Get(id)
	if !ok {
		return ManagedCallContext{}, false
	}
	return *mc, true
}

// CompleteCall releases every lock the call held, transitions it to
// Completed, and removes it from the table.
func (m *CallContextManager) CompleteCall(id CallID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mc, ok := m.contexts.Get(id)
	if !ok {
		return &wrterr.ValidationError{Kind: wrterr.ValidationResourceUnavailable, Detail: "unknown call_id"}
	}
	m.releaseLocks(id, mc.AcquiredLocks)
	mc.State = CallCompleted
	mc.AcquiredLocks = nil
	m.contexts.Remove(id)
	wrtlog.Logger().Debug("component call completed", zap.Uint64("call_id", uint64(id)))
	return nil
}

// FailCall releases every lock the call held, records reason, transitions
// it to Failed, and removes it from the table. The Rust source has no
// equivalent method at all; spec.md 4.H requires it explicitly
// ("fail_call(call_id, error): releases locks; transitions to Failed"),
// so this is new logic built in the source's style rather than ported.
func (m *CallContextManager) FailCall(id CallID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mc, ok := m.contexts.Get(id)
	if !ok {
		return &wrterr.ValidationError{Kind: wrterr.ValidationResourceUnavailable, Detail: "unknown call_id"}
	}
	m.releaseLocks(id, mc.AcquiredLocks)
	mc.State = CallFailed
	mc.FailureReason = reason
	mc.AcquiredLocks = nil
	m.contexts.Remove(id)
	wrtlog.Logger().Debug("component call failed", zap.Uint64("call_id", uint64(id)), zap.String("reason", reason))
	return nil
}

// Sweep finds every context whose MaxDurationUs has elapsed as of now
// (StartedAt + MaxDurationUs < now), releases its locks and marks it
// Failed with CallTimeout. It returns the ids it reclaimed. Spec.md 4.H
// requires this explicitly; the Rust source has no sweeper at all, so
// this logic is new, not ported.
func (m *CallContextManager) Sweep(now uint64) []CallID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []CallID
	for _, e := range m.contexts.Iter() {
		mc := e.Value
		deadline := mc.Context.StartedAt + mc.Context.MaxDurationUs
		if mc.Context.MaxDurationUs > 0 && deadline < now {
			expired = append(expired, e.Key)
		}
	}
	for _, id := range expired {
		mc, ok := m.contexts.Get(id)
		if !ok {
			continue
		}
		m.releaseLocks(id, mc.AcquiredLocks)
		mc.State = CallFailed
		mc.FailureReason = "CallTimeout"
		mc.AcquiredLocks = nil
		m.contexts.Remove(id)
		wrtlog.Logger().Debug("component call timed out", zap.Uint64("call_id", uint64(id)))
	}
	return expired
}

// Stats reports the manager's current load, for hosts building their own
// dashboards; mirrors the spec's "stats show N calls" language in S5.
func (m *CallContextManager) Stats() (activeCalls int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contexts.Len()
}

// --- validation (spec 4.H: "three independent sub-validators") ---

func (m *CallContextManager) validateCall(ctx CallContext) error {
	if err := validateParameters(ctx.Parameters, ctx.ParameterTypes); err != nil {
		return err
	}
	if err := m.validateSecurity(ctx); err != nil {
		return err
	}
	return m.validateResources(ctx)
}

// validateParameters enforces the structural well-formedness every
// ComponentValue must satisfy (e.g. a List's element count within
// bounds), which is the part spec.md actually tests in S5. When the
// caller supplies witTypes (a signature resolved from an actual .wit
// document), each parameter's Kind is additionally checked against it
// via MatchesWitType — a mismatched count or kind is a validation
// failure, not merely a marshaling one, since it means the call doesn't
// match the target function's declared signature at all.
func validateParameters(params []ComponentValue, witTypes []wit.Type) error {
	for _, p := range params {
		if err := p.validate(); err != nil {
			return err
		}
	}
	if witTypes == nil {
		return nil
	}
	if len(witTypes) != len(params) {
		return &wrterr.ValidationError{Kind: wrterr.ValidationParameterTypeMismatch, Detail: "parameter count does not match wit signature"}
	}
	for i, p := range params {
		ok, err := p.MatchesWitType(witTypes[i])
		if err != nil {
			return err
		}
		if !ok {
			return &wrterr.ValidationError{Kind: wrterr.ValidationParameterTypeMismatch, Detail: "parameter kind does not match wit signature"}
		}
	}
	return nil
}

// validateSecurity checks the source instance's SecurityPolicy against
// the requested target and function name. An instance with no configured
// policy is allowed everything, matching the Rust stub's permissive
// default for unconfigured instances.
func (m *CallContextManager) validateSecurity(ctx CallContext) error {
	policy, ok := m.security[ctx.SourceInstance]
	if !ok {
		return nil
	}
	if len(policy.AllowedTargets) > 0 {
		allowed := false
		for _, t := range policy.AllowedTargets {
			if t == ctx.TargetInstance {
				allowed = true
				break
			}
		}
		if !allowed {
			return &wrterr.ValidationError{Kind: wrterr.ValidationSecurityDenied, Detail: "target instance not in allowed_targets"}
		}
	}
	if len(policy.AllowedFunctions) > 0 {
		matched := false
		for _, pattern := range policy.AllowedFunctions {
			if matchPattern(pattern, ctx.FunctionName) {
				matched = true
				break
			}
		}
		if !matched {
			return &wrterr.ValidationError{Kind: wrterr.ValidationSecurityDenied, Detail: "function name not in allowed_functions"}
		}
	}
	if policy.MaxMemoryBytes > 0 {
		// Parameter data size is the only memory pressure this manager
		// can see directly; a host's memory subsystem enforces the rest.
		size, err := marshaledSize(ctx.Parameters)
		if err == nil && size > policy.MaxMemoryBytes {
			return &wrterr.ValidationError{Kind: wrterr.ValidationSecurityDenied, Detail: "parameter data exceeds memory_limits"}
		}
	}
	if ctx.RequestedLockKind == ExclusiveWrite && !policy.AllowResourceWrite {
		return &wrterr.ValidationError{Kind: wrterr.ValidationSecurityDenied, Detail: "exclusive resource write not permitted"}
	}
	if ctx.RequestedLockKind == Transfer && !policy.AllowResourceTransfer {
		return &wrterr.ValidationError{Kind: wrterr.ValidationSecurityDenied, Detail: "resource transfer not permitted"}
	}
	return nil
}

// matchPattern implements the glob subset call_context.rs's doc comment
// describes ("pattern match"): "*" matches any suffix, otherwise exact.
func matchPattern(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}
	return pattern == name
}

// validateResources confirms every referenced handle is either unlocked
// or only SharedRead-locked when the caller also wants SharedRead, and
// that the pair's TransferPolicy permits the requested kind.
func (m *CallContextManager) validateResources(ctx CallContext) error {
	pair := instancePair{ctx.SourceInstance, ctx.TargetInstance}
	if policy, ok := m.policies[pair]; ok {
		if !policy.allows(ctx.RequestedLockKind) {
			return &wrterr.ValidationError{Kind: wrterr.ValidationResourceUnavailable, Detail: "transfer policy forbids requested lock kind"}
		}
		if policy.MaxConcurrent > 0 {
			active := 0
			for _, held := range m.locks {
				for _, l := range held {
					if l.Kind != SharedRead {
						active++
					}
				}
			}
			if active >= policy.MaxConcurrent {
				return &wrterr.ValidationError{Kind: wrterr.ValidationResourceUnavailable, Detail: "transfer policy concurrency limit reached"}
			}
		}
	}
	for _, h := range ctx.ResourceHandles {
		held := m.locks[h]
		if len(held) == 0 {
			continue
		}
		if ctx.RequestedLockKind.exclusive() {
			return &wrterr.ValidationError{Kind: wrterr.ValidationResourceUnavailable, Detail: "resource handle is held and an exclusive lock was requested"}
		}
		for _, l := range held {
			if l.Kind.exclusive() {
				return &wrterr.ValidationError{Kind: wrterr.ValidationResourceUnavailable, Detail: "resource handle is exclusively locked"}
			}
		}
	}
	return nil
}

// --- resource coordination (spec 4.H: deterministic ascending-handle
// acquisition order) ---

// acquireLocks grabs a lock on every handle ctx references, in ascending
// handle-id order, per spec 4.H ("lock acquisition uses deterministic
// ordering (by handle id ascending) to prevent deadlocks between
// concurrent prepare_call operations"). The Rust source's
// coordinate_resources iterates resource_handles in caller-supplied
// order with a placeholder owner_call_id of zero; this port sorts first
// and stamps the real owner, acquired_at and expires_at.
func (m *CallContextManager) acquireLocks(ctx CallContext) ([]uint64, error) {
	handles := append([]uint64(nil), ctx.ResourceHandles...)
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	kind := ctx.RequestedLockKind
	owner := m.nextID
	acquired := make([]uint64, 0, len(handles))
	for _, h := range handles {
		lock := &ResourceLock{
			Handle:      h,
			OwnerCallID: owner,
			Kind:        kind,
			AcquiredAt:  ctx.StartedAt,
			ExpiresAt:   ctx.StartedAt + ctx.MaxDurationUs,
		}
		m.locks[h] = append(m.locks[h], lock)
		acquired = append(acquired, h)
	}
	return acquired, nil
}

// releaseLocks drops every lock callID holds on handles, matching
// complete_call's "releases all locks held by this call" — other calls'
// SharedRead locks on the same handle are left intact.
func (m *CallContextManager) releaseLocks(callID CallID, handles []uint64) {
	for _, h := range handles {
		held := m.locks[h][:0]
		for _, l := range m.locks[h] {
			if l.OwnerCallID != callID {
				held = append(held, l)
			}
		}
		if len(held) == 0 {
			delete(m.locks, h)
		} else {
			m.locks[h] = held
		}
	}
}

// LockKind reports the kind of lock currently held on handle, for
// property 10's assertion that at most one exclusive lock (or any number
// of SharedRead locks) exists per handle at any instant. When multiple
// SharedRead locks are held, any one of their (identical) kinds is
// representative.
func (m *CallContextManager) LockKind(handle uint64) (ResourceLockKind, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, ok := m.locks[handle]
	if !ok || len(held) == 0 {
		return 0, false
	}
	return held[0].Kind, true
}
