// Package scheduler holds the reconciliation engine: each tick it reads
// the node's assignment from the ledger, diffs it against the locally
// tracked containers, drives the runtime to converge, and publishes the
// node's encrypted remaining capacity.
package scheduler

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/canteen-cloud/canteen-node/pkg/containerManager"
	"github.com/canteen-cloud/canteen-node/pkg/contractCaller"
	"github.com/canteen-cloud/canteen-node/pkg/encryption"
)

// DeploymentCostMb is debited from capacity after each successful
// deployment.
const DeploymentCostMb = 200

// PortFinder locates a free host port by deterministic linear scan.
type PortFinder interface {
	FindAvailable(startPort, maxAttempts int) (int, error)
}

// ManagedContainer is the engine's record of one deployed container. The
// table of these records is the only state carried across ticks; it is
// rebuilt from nothing on restart.
type ManagedContainer struct {
	Key           string
	ContainerID   string
	Image         string
	HostPort      int // 0 when unmapped
	ContainerPort int // 0 when unmapped
}

type SchedulerConfig struct {
	NodeId       string
	NodePort     int
	MemoryMb     uint64
	PollInterval time.Duration
	StopTimeout  time.Duration
}

// Scheduler owns the managed-container table and the cached capacity.
// Both are touched only from the poll loop's single flow of control; the
// "one tick at a time" invariant stands in for a lock.
type Scheduler struct {
	config    *SchedulerConfig
	contract  contractCaller.IContractCaller
	runtime   containerManager.ContainerRuntime
	encryptor encryption.Encryptor
	ports     PortFinder
	logger    *zap.Logger

	containers  map[string]*ManagedContainer
	memoryMb    uint64
	stopTimeout time.Duration
}

func NewScheduler(
	config *SchedulerConfig,
	contract contractCaller.IContractCaller,
	runtime containerManager.ContainerRuntime,
	encryptor encryption.Encryptor,
	ports PortFinder,
	logger *zap.Logger,
) *Scheduler {
	stopTimeout := config.StopTimeout
	if stopTimeout == 0 {
		stopTimeout = containerManager.DefaultStopTimeout
	}
	return &Scheduler{
		config:      config,
		contract:    contract,
		runtime:     runtime,
		encryptor:   encryptor,
		ports:       ports,
		logger:      logger,
		containers:  make(map[string]*ManagedContainer),
		memoryMb:    config.MemoryMb,
		stopTimeout: stopTimeout,
	}
}

// MemoryMb returns the engine's cached remaining capacity.
func (s *Scheduler) MemoryMb() uint64 {
	return s.memoryMb
}

// ManagedContainers returns a snapshot of the container table keyed by
// container key.
func (s *Scheduler) ManagedContainers() map[string]*ManagedContainer {
	snapshot := make(map[string]*ManagedContainer, len(s.containers))
	for k, v := range s.containers {
		copied := *v
		snapshot[k] = &copied
	}
	return snapshot
}

// PollLoop runs reconciliation ticks until ctx is cancelled. An in-flight
// tick always finishes; cancellation is observed during the sleep so a
// half-created container is never left untracked.
func (s *Scheduler) PollLoop(ctx context.Context) {
	s.logger.Sugar().Infow("Starting poll loop",
		"nodeId", s.config.NodeId,
		"interval", s.config.PollInterval,
	)

	for {
		// Outer fault boundary: nothing a tick does may kill the loop.
		if err := s.Reconcile(ctx); err != nil {
			s.logger.Sugar().Errorw("Reconciliation tick failed",
				"nodeId", s.config.NodeId,
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			s.logger.Sugar().Infow("Poll loop cancelled", "nodeId", s.config.NodeId)
			return
		case <-time.After(s.config.PollInterval):
		}
	}
}

// Reconcile performs one tick: fetch desired assignment, diff against the
// managed table, remove then add. The desired and current key sets are
// recomputed from scratch so out-of-band changes heal on the next tick.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	images, err := s.contract.GetMemberImages(ctx, s.config.NodeId)
	if err != nil {
		// Transient read failure means "no change this tick", never
		// "the assignment is empty". No state is mutated.
		s.logStepError(stepFetchAssignment, "", "", err)
		return err
	}

	desired := make(map[string]struct{}, len(images))
	for _, key := range BuildContainerKeys(images) {
		desired[key] = struct{}{}
	}

	toRemove := make([]string, 0)
	for key := range s.containers {
		if _, ok := desired[key]; !ok {
			toRemove = append(toRemove, key)
		}
	}
	toAdd := make([]string, 0)
	for key := range desired {
		if _, ok := s.containers[key]; !ok {
			toAdd = append(toAdd, key)
		}
	}

	// Order among keys carries no guarantee but must be deterministic
	// within a run.
	sort.Strings(toRemove)
	sort.Strings(toAdd)

	// Removal first: an addition in the same tick may need a port a
	// removal frees.
	for _, key := range toRemove {
		s.removeContainer(ctx, key)
	}
	for _, key := range toAdd {
		s.deployContainer(ctx, key)
	}

	return nil
}

// removeContainer tears down one managed container. The table entry goes
// away even when the runtime call fails: a leaked container is preferred
// to a key the diff would retry forever.
func (s *Scheduler) removeContainer(ctx context.Context, key string) {
	managed, ok := s.containers[key]
	if !ok {
		s.logger.Sugar().Warnw("Container not tracked, nothing to remove",
			"nodeId", s.config.NodeId,
			"containerKey", key,
		)
		return
	}

	s.logger.Sugar().Infow("Removing container",
		"nodeId", s.config.NodeId,
		"containerKey", key,
		"containerID", managed.ContainerID,
	)

	if err := s.runtime.StopAndRemove(ctx, managed.ContainerID, s.stopTimeout); err != nil {
		s.logStepError(stepStopContainer, key, managed.Image, err)
	}
	delete(s.containers, key)
}

// deployContainer pulls, port-maps, runs, and records one new container,
// then debits and publishes capacity. Faults stay local to this key.
func (s *Scheduler) deployContainer(ctx context.Context, key string) {
	image := ImageFromKey(key)
	s.logger.Sugar().Infow("Deploying container",
		"nodeId", s.config.NodeId,
		"containerKey", key,
		"image", image,
	)

	if err := s.runtime.Pull(ctx, image); err != nil {
		s.logStepError(stepPullImage, key, image, err)
		return
	}

	containerPort := containerPortFor(image)
	hostPort := 0
	if containerPort > 0 {
		port, err := s.ports.FindAvailable(portSearchStart(s.config.NodePort), maxPortAttempts)
		if err != nil {
			s.logStepError(stepAllocatePort, key, image, err)
			return
		}
		hostPort = port
	}

	info, err := s.runtime.Run(ctx, &containerManager.ContainerConfig{
		Name:          containerManager.ContainerName(s.config.NodeId, key),
		Image:         image,
		HostPort:      hostPort,
		ContainerPort: containerPort,
	})
	if err != nil {
		s.logStepError(stepRunContainer, key, image, err)
		return
	}

	s.containers[key] = &ManagedContainer{
		Key:           key,
		ContainerID:   info.ID,
		Image:         image,
		HostPort:      hostPort,
		ContainerPort: containerPort,
	}

	s.logger.Sugar().Infow("Container deployed",
		"nodeId", s.config.NodeId,
		"containerKey", key,
		"containerID", info.ID,
		"hostPort", hostPort,
		"containerPort", containerPort,
	)

	// The deployment stands regardless of what bookkeeping does next.
	s.debitAndPublishCapacity(ctx, key)
}

// debitAndPublishCapacity reduces the cached capacity by the fixed
// per-deployment cost, clamped at zero, and pushes the encrypted value to
// the ledger. Best-effort: the engine never rolls a container back over a
// bookkeeping failure.
func (s *Scheduler) debitAndPublishCapacity(ctx context.Context, key string) {
	if s.memoryMb > DeploymentCostMb {
		s.memoryMb -= DeploymentCostMb
	} else {
		s.memoryMb = 0
	}

	s.logger.Sugar().Infow("Capacity debited",
		"nodeId", s.config.NodeId,
		"containerKey", key,
		"remainingMb", s.memoryMb,
	)

	ciphertext, err := s.encryptor.EncryptCapacity(ctx, s.memoryMb)
	if err != nil {
		s.logStepError(stepEncryptCapacity, key, "", err)
		return
	}

	if err := s.contract.UpdateMemberMemory(ctx, s.config.NodeId, ciphertext); err != nil {
		s.logStepError(stepUpdateCapacity, key, "", err)
	}
}

// Drain removes every managed container. Run by the lifecycle controller
// during shutdown; best-effort.
func (s *Scheduler) Drain(ctx context.Context) {
	keys := make([]string, 0, len(s.containers))
	for key := range s.containers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	s.logger.Sugar().Infow("Draining containers",
		"nodeId", s.config.NodeId,
		"count", len(keys),
	)
	for _, key := range keys {
		s.removeContainer(ctx, key)
	}
}

func (s *Scheduler) logStepError(step reconcileStep, key, image string, err error) {
	fields := []interface{}{
		"nodeId", s.config.NodeId,
		"step", string(step),
		"error", err,
	}
	if key != "" {
		fields = append(fields, "containerKey", key)
	}
	if image != "" {
		fields = append(fields, "image", image)
	}

	switch policyFor(step) {
	case policyLogOnly:
		s.logger.Sugar().Warnw("Reconciliation step failed, continuing", fields...)
	case policySkipKey:
		s.logger.Sugar().Errorw("Reconciliation step failed, skipping key", fields...)
	default:
		s.logger.Sugar().Errorw("Reconciliation step failed, aborting tick", fields...)
	}
}
