// Package stage defines the contract shared by the four pipeline stages and
// the helpers they use while walking records.
package stage

import (
	"context"

	"voiceregen/internal/report"
)

// Handler describes what the CLI and the pipeline runner need from each stage.
type Handler interface {
	Name() string
	HealthCheck(context.Context) Health
	Run(context.Context) (*report.Summary, error)
}

// Syncer flushes buffered log output. *logging.Sink satisfies it.
type Syncer interface {
	Sync() error
}
