package containerManager

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/docker/go-connections/nat"
)

// HashHostId takes a sha256 hash of the node's host identifier and returns
// the first 6 chars.
func HashHostId(hostId string) string {
	hasher := sha256.New()
	hasher.Write([]byte(hostId))
	hashBytes := hasher.Sum(nil)
	return hex.EncodeToString(hashBytes)[0:6]
}

// ContainerName builds the runtime-visible name for a managed container.
// Container keys contain colons, which docker names reject, so the key is
// flattened first. The node hash keeps names distinct across nodes sharing
// a daemon.
func ContainerName(hostId, containerKey string) string {
	flattened := strings.NewReplacer(":", "-", "/", "-").Replace(containerKey)
	return fmt.Sprintf("canteen-%s-%s", HashHostId(hostId), flattened)
}

// BuildPortBindings returns the exposed-port set and host binding map for a
// single published port.
func BuildPortBindings(containerPort, hostPort int) (nat.PortSet, nat.PortMap) {
	port := nat.Port(fmt.Sprintf("%d/tcp", containerPort))
	exposed := nat.PortSet{port: struct{}{}}
	bindings := nat.PortMap{
		port: []nat.PortBinding{
			{
				HostIP:   "0.0.0.0",
				HostPort: fmt.Sprintf("%d", hostPort),
			},
		},
	}
	return exposed, bindings
}
