package scheduler

// Per-step error policy for a reconciliation tick. Centralizing the
// policy keeps the fault handling auditable instead of scattering
// best-effort suppression through the tick logic.

type reconcileStep string

const (
	stepFetchAssignment reconcileStep = "fetch-assignment"
	stepStopContainer   reconcileStep = "stop-container"
	stepPullImage       reconcileStep = "pull-image"
	stepAllocatePort    reconcileStep = "allocate-port"
	stepRunContainer    reconcileStep = "run-container"
	stepEncryptCapacity reconcileStep = "encrypt-capacity"
	stepUpdateCapacity  reconcileStep = "update-capacity"
)

type errorPolicy int

const (
	// policyAbortTick drops the remainder of the tick without mutating
	// any state.
	policyAbortTick errorPolicy = iota
	// policySkipKey isolates the fault to one container key; other keys
	// in the same tick proceed.
	policySkipKey
	// policyLogOnly records the fault and continues: the surrounding
	// action already happened and must not be rolled back.
	policyLogOnly
)

var stepPolicies = map[reconcileStep]errorPolicy{
	// A partially-read desired state must never drive reconciliation.
	stepFetchAssignment: policyAbortTick,
	// A leaked runtime container beats a permanently stuck key.
	stepStopContainer:   policyLogOnly,
	stepPullImage:       policySkipKey,
	stepAllocatePort:    policySkipKey,
	stepRunContainer:    policySkipKey,
	// The container is already running; capacity bookkeeping is
	// best-effort.
	stepEncryptCapacity: policyLogOnly,
	stepUpdateCapacity:  policyLogOnly,
}

func policyFor(step reconcileStep) errorPolicy {
	if policy, ok := stepPolicies[step]; ok {
		return policy
	}
	return policyAbortTick
}
