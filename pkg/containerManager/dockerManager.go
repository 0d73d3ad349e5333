package containerManager

import (
	"context"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DockerRuntime implements ContainerRuntime using the Docker SDK.
type DockerRuntime struct {
	client *client.Client
	config *RuntimeConfig
	logger *zap.Logger
}

func NewDockerRuntime(config *RuntimeConfig, logger *zap.Logger) (*DockerRuntime, error) {
	if config == nil {
		config = &RuntimeConfig{}
	}
	if config.DefaultStopTimeout == 0 {
		config.DefaultStopTimeout = DefaultStopTimeout
	}

	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if config.DockerHost != "" {
		opts = append(opts, client.WithHost(config.DockerHost))
	}

	dockerClient, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Docker client")
	}

	return &DockerRuntime{
		client: dockerClient,
		config: config,
		logger: logger,
	}, nil
}

// Ping verifies the docker daemon is reachable.
func (dr *DockerRuntime) Ping(ctx context.Context) error {
	if _, err := dr.client.Ping(ctx); err != nil {
		return errors.Wrap(err, "failed to ping Docker daemon")
	}
	return nil
}

// Pull fetches an image and blocks until the pull stream is drained.
func (dr *DockerRuntime) Pull(ctx context.Context, imageName string) error {
	dr.logger.Sugar().Infow("Pulling image", "image", imageName)

	reader, err := dr.client.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return errors.Wrapf(err, "failed to pull image %s", imageName)
	}
	defer reader.Close()

	// The pull only completes once the progress stream is consumed.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return errors.Wrapf(err, "failed to read pull stream for %s", imageName)
	}

	dr.logger.Sugar().Infow("Image pulled", "image", imageName)
	return nil
}

// Run creates and starts a container from config.
func (dr *DockerRuntime) Run(ctx context.Context, config *ContainerConfig) (*ContainerInfo, error) {
	dr.logger.Sugar().Debugw("Creating container",
		"name", config.Name,
		"image", config.Image,
	)

	containerConfig := &container.Config{
		Image: config.Image,
		Env:   config.Env,
	}
	hostConfig := &container.HostConfig{}

	if config.ContainerPort > 0 {
		exposed, bindings := BuildPortBindings(config.ContainerPort, config.HostPort)
		containerConfig.ExposedPorts = exposed
		hostConfig.PortBindings = bindings
	}

	resp, err := dr.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, config.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create container %s", config.Name)
	}

	if err := dr.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		// The created container would otherwise linger and hold its name.
		if removeErr := dr.client.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true}); removeErr != nil {
			dr.logger.Sugar().Warnw("Failed to remove container after start failure",
				"containerID", resp.ID,
				"error", removeErr,
			)
		}
		return nil, errors.Wrapf(err, "failed to start container %s", config.Name)
	}

	dr.logger.Sugar().Infow("Container started",
		"containerID", resp.ID,
		"name", config.Name,
		"image", config.Image,
		"hostPort", config.HostPort,
		"containerPort", config.ContainerPort,
	)

	return &ContainerInfo{
		ID:    resp.ID,
		Name:  config.Name,
		Image: config.Image,
		State: "running",
	}, nil
}

// StopAndRemove stops a container gracefully and then force-removes it.
// The removal runs even when the stop failed.
func (dr *DockerRuntime) StopAndRemove(ctx context.Context, containerID string, timeout time.Duration) error {
	if timeout == 0 {
		timeout = dr.config.DefaultStopTimeout
	}
	timeoutSeconds := int(timeout.Seconds())

	stopErr := dr.client.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeoutSeconds})
	if stopErr != nil {
		dr.logger.Sugar().Warnw("Failed to stop container, forcing removal",
			"containerID", containerID,
			"error", stopErr,
		)
	}

	if err := dr.client.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		return errors.Wrapf(err, "failed to remove container %s", containerID)
	}

	dr.logger.Sugar().Infow("Container stopped and removed", "containerID", containerID)
	return nil
}

// ListByStatus returns all containers in the given state.
func (dr *DockerRuntime) ListByStatus(ctx context.Context, status string) ([]*ContainerInfo, error) {
	containers, err := dr.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("status", status)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list containers")
	}

	result := make([]*ContainerInfo, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = c.Names[0][1:]
		}
		result = append(result, &ContainerInfo{
			ID:     c.ID,
			Name:   name,
			Image:  c.Image,
			Status: c.Status,
			State:  c.State,
		})
	}
	return result, nil
}

// RemoveExited removes containers left in a terminal state by a previous
// process lifetime. A dead container still holds its published host ports,
// so this runs before anything else touches the runtime.
func (dr *DockerRuntime) RemoveExited(ctx context.Context) (int, error) {
	exited, err := dr.ListByStatus(ctx, StatusExited)
	if err != nil {
		return 0, err
	}

	if len(exited) == 0 {
		dr.logger.Sugar().Infow("No exited containers to clean up")
		return 0, nil
	}

	dr.logger.Sugar().Infow("Cleaning up exited containers", "count", len(exited))
	removed := 0
	for _, c := range exited {
		if err := dr.client.ContainerRemove(ctx, c.ID, container.RemoveOptions{}); err != nil {
			dr.logger.Sugar().Warnw("Failed to remove exited container",
				"containerID", c.ID,
				"error", err,
			)
			continue
		}
		removed++
	}
	return removed, nil
}
