// Package lifecycle holds shared startup and shutdown settings.
package lifecycle

import "time"

// DefaultTimeout bounds how long a component may take to stop.
const DefaultTimeout = 10 * time.Second
