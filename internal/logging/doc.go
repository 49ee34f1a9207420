// Package logging provides the leveled logger used across webmedia.
//
// Levels, lowest first:
//   - DEBUG: cache hits, regenerations, skipped sources
//   - INFO: startup and shutdown progress
//   - WARN: recoverable problems
//   - ERROR: failed requests and generations
//   - FATAL: logs and exits
//
// The level comes from DEBUG (any truthy value selects debug) or LOG_LEVEL,
// read once on first use. SetLevel overrides it.
package logging
