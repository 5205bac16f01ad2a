package scripta

import "go.uber.org/zap"

// log is the package-level logger, in the same spirit as the teacher's
// package-level stdlog — a single shared sink rather than one threaded
// through every call — but structured, since nothing here writes to a
// terminal directly.
var log = newLogger()

func newLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

// SetLogger lets a host (CLI, test harness) replace the package logger,
// e.g. with a development logger that writes to stderr without sampling.
func SetLogger(l *zap.SugaredLogger) {
	log = l
}
