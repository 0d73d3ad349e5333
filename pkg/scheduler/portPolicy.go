package scheduler

import "strings"

const (
	// DefaultContainerPort is published for every image not on the
	// no-port list.
	DefaultContainerPort = 80

	// DefaultBasePort anchors the host port search window.
	DefaultBasePort = 8080

	// ReferenceNodePort is the node port the base window is calibrated
	// against; nodes on other ports shift their window by the difference
	// so co-hosted nodes spread their searches.
	ReferenceNodePort = 5000

	maxPortAttempts = 100
)

// portRule matches images by substring. An ordered list, first match wins.
type portRule struct {
	substring     string
	containerPort int // 0 means run without a port mapping
}

var portPolicy = []portRule{
	// Diagnostic image, exposes nothing.
	{substring: "hello-world", containerPort: 0},
}

// containerPortFor returns the container port to publish for an image,
// or 0 when the image runs unmapped.
func containerPortFor(image string) int {
	for _, rule := range portPolicy {
		if strings.Contains(image, rule.substring) {
			return rule.containerPort
		}
	}
	return DefaultContainerPort
}

// portSearchStart computes the deterministic start of this node's host
// port search window.
func portSearchStart(nodePort int) int {
	return DefaultBasePort + (nodePort - ReferenceNodePort)
}
