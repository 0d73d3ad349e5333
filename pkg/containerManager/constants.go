package containerManager

import "time"

const (
	DefaultStopTimeout = 10 * time.Second

	// StatusExited marks containers left behind by a crashed process.
	StatusExited = "exited"
)
