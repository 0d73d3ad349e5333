// Package ports probes local TCP ports for availability. The search is a
// deterministic linear scan so that retries after a partial failure are
// reproducible.
package ports

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// ErrNoPortAvailable is returned when every probed port in the window was
// occupied.
var ErrNoPortAvailable = errors.New("no available port found")

const DefaultMaxAttempts = 100

// Allocator finds free host ports by attempting exclusive binds.
type Allocator struct{}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// IsAvailable reports whether an exclusive bind on all interfaces
// succeeds. The probe listener is always released before returning.
func (a *Allocator) IsAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// FindAvailable scans startPort, startPort+1, ... and returns the first
// port that binds. It wraps ErrNoPortAvailable after maxAttempts probes
// with none free.
func (a *Allocator) FindAvailable(startPort, maxAttempts int) (int, error) {
	for offset := 0; offset < maxAttempts; offset++ {
		port := startPort + offset
		if a.IsAvailable(port) {
			return port, nil
		}
	}
	return 0, errors.Wrapf(ErrNoPortAvailable, "range %d-%d", startPort, startPort+maxAttempts)
}
