package instance

import "os"

// GetID names this worker replica for logs and lock diagnostics.
// Deployments set WORKER_ID; a bare local run gets the default.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "cleanup-0"
}
