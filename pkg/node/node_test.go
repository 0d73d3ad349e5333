package node

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/canteen-cloud/canteen-node/pkg/config"
	"github.com/canteen-cloud/canteen-node/pkg/containerManager"
	"github.com/canteen-cloud/canteen-node/pkg/contractCaller"
	"github.com/canteen-cloud/canteen-node/pkg/encryption"
)

// callLog records the order of collaborator calls across fakes.
type callLog struct {
	calls []string
}

func (l *callLog) record(name string) {
	l.calls = append(l.calls, name)
}

type fakeContract struct {
	log         *callLog
	registerErr error
	removeErr   error
	registered  [][]byte
	removed     []string
	images      []string
}

func (f *fakeContract) GetMemberImages(ctx context.Context, host string) ([]string, error) {
	return f.images, nil
}

func (f *fakeContract) GetMemberDetails(ctx context.Context, host string) (*contractCaller.MemberDetails, error) {
	return &contractCaller.MemberDetails{}, nil
}

func (f *fakeContract) RegisterMember(ctx context.Context, host string, capacity *encryption.Ciphertext) error {
	f.log.record("register")
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, capacity.WireFormat())
	return nil
}

func (f *fakeContract) UpdateMemberMemory(ctx context.Context, host string, capacity *encryption.Ciphertext) error {
	return nil
}

func (f *fakeContract) RemoveMember(ctx context.Context, host string) error {
	f.log.record("unregister")
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, host)
	return nil
}

func (f *fakeContract) GetMembersCount(ctx context.Context) (uint64, error) { return 0, nil }

func (f *fakeContract) GetMemberAt(ctx context.Context, index uint64) (string, error) {
	return "", nil
}

type fakeRuntime struct {
	log     *callLog
	pingErr error
	cleanup int
	stopped []string
	runs    int
	started chan string
}

func (f *fakeRuntime) Ping(ctx context.Context) error {
	f.log.record("ping")
	return f.pingErr
}

func (f *fakeRuntime) Pull(ctx context.Context, image string) error { return nil }

func (f *fakeRuntime) Run(ctx context.Context, cfg *containerManager.ContainerConfig) (*containerManager.ContainerInfo, error) {
	f.runs++
	if f.started != nil {
		select {
		case f.started <- cfg.Name:
		default:
		}
	}
	return &containerManager.ContainerInfo{ID: "ctr-" + cfg.Name}, nil
}

func (f *fakeRuntime) StopAndRemove(ctx context.Context, containerID string, timeout time.Duration) error {
	f.stopped = append(f.stopped, containerID)
	return nil
}

func (f *fakeRuntime) ListByStatus(ctx context.Context, status string) ([]*containerManager.ContainerInfo, error) {
	return nil, nil
}

func (f *fakeRuntime) RemoveExited(ctx context.Context) (int, error) {
	f.log.record("remove-exited")
	return f.cleanup, nil
}

type fakeEncryptor struct{}

func (f *fakeEncryptor) EncryptCapacity(ctx context.Context, capacityMb uint64) (*encryption.Ciphertext, error) {
	return encryption.NewCiphertext([]byte(fmt.Sprintf("enc:%d", capacityMb))), nil
}

type fakePorts struct{ next int }

func (f *fakePorts) FindAvailable(startPort, maxAttempts int) (int, error) {
	f.next++
	return startPort + f.next - 1, nil
}

func testConfig() *config.SchedulerConfig {
	return &config.SchedulerConfig{
		ProviderUrl:     "http://localhost:7545",
		ContractAddress: "0xad42fdE4D1886169370C89ebe74791Df7Ee326F9",
		NodeId:          "QmNodeA",
		NodePort:        5000,
		MemoryMb:        4096,
		PollInterval:    10 * time.Millisecond,
	}
}

func newTestNode(t *testing.T, contract *fakeContract, runtime *fakeRuntime) *Node {
	t.Helper()
	return NewNode(testConfig(), contract, runtime, &fakeEncryptor{}, &fakePorts{}, zaptest.NewLogger(t))
}

func TestInitialize(t *testing.T) {
	log := &callLog{}
	contract := &fakeContract{log: log}
	runtime := &fakeRuntime{log: log, cleanup: 2}
	n := newTestNode(t, contract, runtime)

	require.Equal(t, Unregistered, n.State())
	require.NoError(t, n.Initialize(context.Background()))
	assert.Equal(t, Registered, n.State())

	// Orphan cleanup runs before registration touches the ledger.
	assert.Equal(t, []string{"ping", "remove-exited", "register"}, log.calls)

	// Registration carries the encrypted full capacity.
	require.Len(t, contract.registered, 1)
	assert.Equal(t, []byte("enc:4096"), contract.registered[0])
}

func TestInitialize_RuntimeUnreachable(t *testing.T) {
	log := &callLog{}
	contract := &fakeContract{log: log}
	runtime := &fakeRuntime{log: log, pingErr: fmt.Errorf("cannot connect to docker daemon")}
	n := newTestNode(t, contract, runtime)

	err := n.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, Unregistered, n.State())
	assert.NotContains(t, log.calls, "register")
}

func TestInitialize_RegistrationFails(t *testing.T) {
	log := &callLog{}
	contract := &fakeContract{log: log, registerErr: fmt.Errorf("%w: addMember", contractCaller.ErrTransactionFailed)}
	runtime := &fakeRuntime{log: log}
	n := newTestNode(t, contract, runtime)

	err := n.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, Unregistered, n.State())
}

func TestRun_RequiresRegistration(t *testing.T) {
	log := &callLog{}
	n := newTestNode(t, &fakeContract{log: log}, &fakeRuntime{log: log})

	err := n.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	log := &callLog{}
	contract := &fakeContract{log: log}
	runtime := &fakeRuntime{log: log}
	n := newTestNode(t, contract, runtime)
	require.NoError(t, n.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestShutdown(t *testing.T) {
	log := &callLog{}
	contract := &fakeContract{log: log, images: []string{"nginx:latest"}}
	runtime := &fakeRuntime{log: log}
	n := newTestNode(t, contract, runtime)

	require.NoError(t, n.Initialize(context.Background()))
	require.NoError(t, n.Scheduler().Reconcile(context.Background()))
	require.Len(t, n.Scheduler().ManagedContainers(), 1)

	n.Shutdown(context.Background())

	assert.Equal(t, Unregistered, n.State())
	assert.Empty(t, n.Scheduler().ManagedContainers())
	assert.Len(t, runtime.stopped, 1)
	assert.Equal(t, []string{"QmNodeA"}, contract.removed)
}

func TestShutdown_StopsPollLoopBeforeDrain(t *testing.T) {
	log := &callLog{}
	contract := &fakeContract{log: log, images: []string{"nginx:latest"}}
	runtime := &fakeRuntime{log: log, started: make(chan string, 4)}
	n := newTestNode(t, contract, runtime)
	require.NoError(t, n.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- n.Run(ctx) }()

	select {
	case <-runtime.started:
	case <-time.After(time.Second):
		t.Fatal("poll loop never deployed the assignment")
	}

	// The outer context is deliberately left alive: Shutdown on its own
	// must stop the loop and wait out the in-flight tick before draining.
	n.Shutdown(context.Background())

	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poll loop still running after shutdown")
	}

	// Ticks after the drain would re-deploy the drained container and
	// leave it running with the node already unregistered.
	time.Sleep(5 * n.config.PollInterval)
	assert.Equal(t, 1, runtime.runs)
	assert.Empty(t, n.Scheduler().ManagedContainers())
	assert.Len(t, runtime.stopped, 1)
	assert.Equal(t, Unregistered, n.State())
}

func TestShutdown_UnregisterFailureIsSwallowed(t *testing.T) {
	log := &callLog{}
	contract := &fakeContract{log: log, removeErr: fmt.Errorf("provider gone")}
	runtime := &fakeRuntime{log: log}
	n := newTestNode(t, contract, runtime)
	require.NoError(t, n.Initialize(context.Background()))

	// Shutdown never raises; the state still lands on Unregistered.
	n.Shutdown(context.Background())
	assert.Equal(t, Unregistered, n.State())
}

func TestRegistrationStateString(t *testing.T) {
	assert.Equal(t, "unregistered", Unregistered.String())
	assert.Equal(t, "registering", Registering.String())
	assert.Equal(t, "registered", Registered.String())
	assert.Equal(t, "deregistering", Deregistering.String())
}
