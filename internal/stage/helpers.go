package stage

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"voiceregen/internal/logging"
	"voiceregen/internal/record"
	"voiceregen/internal/services"
)

// LoadRecord reads a record from disk.
// On failure it returns a services.ErrValidation suitable for per-record skips.
func LoadRecord(path string) (*record.Document, error) {
	doc, err := record.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "stage", "load record", "Record vanished during the walk", err)
		}
		return nil, services.Wrap(
			services.ErrValidation, "stage", "load record",
			"Record is not valid JSON; fix or remove the file", err)
	}
	return doc, nil
}

// Sync flushes the log sink, reporting failures without interrupting the walk.
func Sync(logger *slog.Logger, sink Syncer) {
	if sink == nil {
		return
	}
	if err := sink.Sync(); err != nil {
		logging.WarnWithContext(logger, "log sync failed", "log_sync_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on log_dir"),
			logging.String(logging.FieldImpact, "log file may miss recent lines after a crash"),
		)
	}
}

// RecordLogger returns a logger annotated with the stage and the record's
// relative path.
func RecordLogger(ctx context.Context, logger *slog.Logger, rel string) (context.Context, *slog.Logger) {
	ctx = services.WithRecord(ctx, rel)
	return ctx, logging.WithContext(ctx, logger)
}

// WalkError classifies an aborted directory walk. Cancellation passes through
// unchanged; a missing input directory is a configuration error.
func WalkError(name string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrConfiguration, name, "walk",
			"Input directory does not exist; run the previous stage or fix [paths]", err)
	default:
		return services.Wrap(services.ErrValidation, name, "walk", "Directory walk aborted", err)
	}
}
