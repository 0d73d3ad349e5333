package scheduler

import (
	"fmt"
	"strings"
)

// Container identity is positional: the same image assigned at two
// different indices is two containers. Keys are recomputed from the
// assignment every tick and never persisted.

// ContainerKey derives the identity of one assignment slot.
func ContainerKey(image string, index int) string {
	return fmt.Sprintf("%s:%d", image, index)
}

// BuildContainerKeys derives the full desired key set from an ordered
// assignment.
func BuildContainerKeys(images []string) []string {
	keys := make([]string, 0, len(images))
	for idx, image := range images {
		keys = append(keys, ContainerKey(image, idx))
	}
	return keys
}

// ImageFromKey strips the trailing position index off a container key.
// Image names themselves contain colons ("nginx:latest"), so only the
// last segment goes.
func ImageFromKey(key string) string {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return key
	}
	return key[:idx]
}
