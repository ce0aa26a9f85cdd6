package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry flushes telemetry buffers before process exit. Prometheus is
// pull-based, so metrics need no push; a final gather is logged at debug as a
// shutdown breadcrumb, and the log buffers are synced. Call after in-flight
// requests have drained.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	if families, err := registry.Gather(); err == nil {
		logger.Debug("final metrics snapshot", zap.Int("metricFamilies", len(families)))
	}
	if err := logger.Sync(); err != nil {
		return fmt.Errorf("flush logs: %w", err)
	}
	return nil
}
