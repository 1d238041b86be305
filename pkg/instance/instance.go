package instance

import (
	"os"

	"github.com/techzonevn/storefront-backend/pkg/env"
)

// GetID returns the worker instance identifier used in publisher logs.
// STOREFRONT_WORKER_ID wins, then the host name, then "worker-0".
func GetID() string {
	fallback := "worker-0"
	if host, err := os.Hostname(); err == nil && host != "" {
		fallback = host
	}
	return env.First(fallback, "STOREFRONT_WORKER_ID", "WORKER_ID")
}
