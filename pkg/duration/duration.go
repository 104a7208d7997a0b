// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.Generation)
//	ShutdownTimeout: duration.TelemetryShutdown,
//
// DO NOT use hardcoded time.Duration values like `30 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// RUN TIMEOUTS
// ============================================================================

const (
	// Generation bounds a whole generate run (5min). Generation itself is
	// CPU bound; the bound protects against huge documents.
	Generation = 5 * time.Minute

	// InterruptGrace is how long a second Ctrl-C forces an exit after the
	// first one cancelled the run (3s)
	InterruptGrace = 3 * time.Second
)

// ============================================================================
// TELEMETRY
// ============================================================================

const (
	// TelemetryConnect is the OTLP exporter connection timeout (10s)
	TelemetryConnect = 10 * time.Second

	// TelemetryShutdown bounds the final span flush (5s)
	TelemetryShutdown = 5 * time.Second
)
