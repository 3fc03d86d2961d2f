// Package log provides a simplified structured logging interface based on
// [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("pipeline started", slog.String("name", "demo"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions ([Debug], [Info], [Warn], [Error] and their
// Context variants) write through a default logger that [Config] reconfigures.
//
// # Output Formats
//
// Two output formats are supported: [FormatText] (default, colorized with
// lipgloss when pretty printing is enabled) and [FormatJSON].
package log
