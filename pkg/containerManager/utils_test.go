package containerManager

import (
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashHostId(t *testing.T) {
	tests := []struct {
		name   string
		hostId string
	}{
		{name: "peer id", hostId: "QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N"},
		{name: "empty", hostId: ""},
		{name: "hostname", hostId: "node-1.local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashHostId(tt.hostId)
			assert.Len(t, result, 6)
			assert.Regexp(t, "^[a-f0-9]{6}$", result)

			// Same input yields the same hash.
			assert.Equal(t, result, HashHostId(tt.hostId))
		})
	}
}

func TestContainerName(t *testing.T) {
	name := ContainerName("QmNodeA", "nginx:latest:0")

	assert.NotContains(t, name, ":")
	assert.Contains(t, name, "nginx-latest-0")
	assert.Regexp(t, "^canteen-[a-f0-9]{6}-", name)

	// Replicas of the same image produce distinct names.
	other := ContainerName("QmNodeA", "nginx:latest:1")
	assert.NotEqual(t, name, other)

	// Different nodes produce distinct names for the same key.
	assert.NotEqual(t, name, ContainerName("QmNodeB", "nginx:latest:0"))
}

func TestContainerName_RegistryPath(t *testing.T) {
	name := ContainerName("QmNodeA", "ghcr.io/acme/app:v2:3")
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, ":")
}

func TestBuildPortBindings(t *testing.T) {
	exposed, bindings := BuildPortBindings(80, 8080)

	port := nat.Port("80/tcp")
	_, ok := exposed[port]
	assert.True(t, ok)

	require.Len(t, bindings[port], 1)
	assert.Equal(t, "0.0.0.0", bindings[port][0].HostIP)
	assert.Equal(t, "8080", bindings[port][0].HostPort)
}
