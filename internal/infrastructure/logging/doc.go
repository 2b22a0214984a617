// Package logging provides structured logging using uber/zap.
//
// Production mode emits JSON lines for machine parsing; development mode
// emits colored console output with stacktraces on errors. Tests use the
// no-op constructor.
//
//	logger := logging.NewDefault()
//	logger.Info("session opened", zap.String("session_id", sid))
package logging
