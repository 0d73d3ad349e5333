package containerManager

import (
	"context"
	"time"

	"github.com/docker/go-connections/nat"
)

// ContainerConfig holds configuration for deploying a container.
type ContainerConfig struct {
	// Name is the runtime-visible container name.
	Name  string
	Image string
	Env   []string

	// HostPort/ContainerPort define the single published port mapping.
	// ContainerPort == 0 means the container runs without a mapping.
	HostPort      int
	ContainerPort int
}

// ContainerInfo describes a container known to the runtime.
type ContainerInfo struct {
	ID     string
	Name   string
	Image  string
	Status string
	State  string
	Ports  nat.PortMap
}

// ContainerRuntime is the capability surface the scheduler drives. It maps
// directly onto pull/run/stop+remove/list against the container runtime.
type ContainerRuntime interface {
	// Ping verifies the runtime daemon is reachable.
	Ping(ctx context.Context) error

	// Pull fetches an image, blocking until the pull completes.
	Pull(ctx context.Context, image string) error

	// Run creates and starts a container.
	Run(ctx context.Context, config *ContainerConfig) (*ContainerInfo, error)

	// StopAndRemove gracefully stops a container within timeout, then
	// force-removes it. Removal happens even when the stop failed: a
	// leaked container would keep its host port bound.
	StopAndRemove(ctx context.Context, containerID string, timeout time.Duration) error

	// ListByStatus returns all containers in the given state.
	ListByStatus(ctx context.Context, status string) ([]*ContainerInfo, error)

	// RemoveExited removes containers left in a terminal state by a prior
	// process lifetime and returns how many were cleaned up.
	RemoveExited(ctx context.Context) (int, error)
}

// RuntimeConfig holds configuration for the docker-backed runtime.
type RuntimeConfig struct {
	// DockerHost overrides the daemon endpoint; empty uses the
	// environment (DOCKER_HOST or the default socket).
	DockerHost string

	DefaultStopTimeout time.Duration
}
