// Package node sequences the agent's lifecycle around the reconciliation
// engine: recover the runtime, register on the ledger, run the poll loop,
// and on shutdown drain containers and unregister.
package node

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/canteen-cloud/canteen-node/pkg/config"
	"github.com/canteen-cloud/canteen-node/pkg/containerManager"
	"github.com/canteen-cloud/canteen-node/pkg/contractCaller"
	"github.com/canteen-cloud/canteen-node/pkg/encryption"
	"github.com/canteen-cloud/canteen-node/pkg/scheduler"
)

type Node struct {
	config    *config.SchedulerConfig
	contract  contractCaller.IContractCaller
	runtime   containerManager.ContainerRuntime
	encryptor encryption.Encryptor
	scheduler *scheduler.Scheduler
	logger    *zap.Logger

	state RegistrationState

	// loopCancel/loopDone let Shutdown stop the poll loop and wait for
	// the in-flight tick before draining. The container table has a
	// single writer; the drain must never overlap a tick.
	mu         sync.Mutex
	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

func NewNode(
	cfg *config.SchedulerConfig,
	contract contractCaller.IContractCaller,
	runtime containerManager.ContainerRuntime,
	encryptor encryption.Encryptor,
	portFinder scheduler.PortFinder,
	logger *zap.Logger,
) *Node {
	sched := scheduler.NewScheduler(
		&scheduler.SchedulerConfig{
			NodeId:       cfg.NodeId,
			NodePort:     cfg.NodePort,
			MemoryMb:     cfg.MemoryMb,
			PollInterval: cfg.PollInterval,
		},
		contract, runtime, encryptor, portFinder, logger,
	)

	return &Node{
		config:    cfg,
		contract:  contract,
		runtime:   runtime,
		encryptor: encryptor,
		scheduler: sched,
		logger:    logger,
		state:     Unregistered,
	}
}

// State returns the current registration lifecycle state.
func (n *Node) State() RegistrationState {
	return n.state
}

// Scheduler exposes the reconciliation engine, mainly for inspection.
func (n *Node) Scheduler() *scheduler.Scheduler {
	return n.scheduler
}

// Initialize brings the node to the Registered state: verify the runtime,
// clean up containers a previous process lifetime left behind, then
// register on the ledger with the full encrypted capacity. Any failure is
// fatal to start-up.
func (n *Node) Initialize(ctx context.Context) error {
	n.logger.Sugar().Infow("Initializing node",
		"nodeId", n.config.NodeId,
		"memoryMb", n.config.MemoryMb,
	)

	if err := n.runtime.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to container runtime: %w", err)
	}

	// Dead containers from a prior crash still hold host ports; clear
	// them before anything else touches the runtime.
	removed, err := n.runtime.RemoveExited(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean up exited containers: %w", err)
	}
	if removed > 0 {
		n.logger.Sugar().Infow("Recovered from previous run", "removedContainers", removed)
	}

	n.state = Registering
	ciphertext, err := n.encryptor.EncryptCapacity(ctx, n.config.MemoryMb)
	if err != nil {
		n.state = Unregistered
		return fmt.Errorf("failed to encrypt capacity: %w", err)
	}

	if err := n.contract.RegisterMember(ctx, n.config.NodeId, ciphertext); err != nil {
		n.state = Unregistered
		return fmt.Errorf("failed to register node: %w", err)
	}
	n.state = Registered

	n.logger.Sugar().Infow("Node initialized", "nodeId", n.config.NodeId)
	return nil
}

// Run blocks in the reconciliation poll loop until ctx is cancelled or
// Shutdown stops the loop.
func (n *Node) Run(ctx context.Context) error {
	if n.state != Registered {
		return fmt.Errorf("node is %s, expected %s", n.state, Registered)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	n.mu.Lock()
	n.loopCancel = cancel
	n.loopDone = done
	n.mu.Unlock()
	defer close(done)

	n.scheduler.PollLoop(loopCtx)
	return nil
}

// Shutdown stops the poll loop, drains every managed container, and
// unregisters from the ledger. Stopping comes first: the drain waits for
// the in-flight tick to finish so a late tick cannot re-deploy what the
// drain just removed. Best-effort: faults are logged, never raised, so a
// partial shutdown still releases as much as possible.
func (n *Node) Shutdown(ctx context.Context) {
	n.logger.Sugar().Infow("Shutting down node", "nodeId", n.config.NodeId)
	n.state = Deregistering

	n.mu.Lock()
	cancel, done := n.loopCancel, n.loopDone
	n.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	n.scheduler.Drain(ctx)

	if err := n.contract.RemoveMember(ctx, n.config.NodeId); err != nil {
		n.logger.Sugar().Errorw("Failed to unregister node",
			"nodeId", n.config.NodeId,
			"error", err,
		)
	}
	n.state = Unregistered

	n.logger.Sugar().Infow("Node shutdown complete", "nodeId", n.config.NodeId)
}
