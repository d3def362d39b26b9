package logging

import (
	"go.uber.org/zap"
)

// New builds the application logger. Debug mode uses the human-readable
// development encoder; otherwise structured JSON goes to stderr.
func New(debug bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		log, err = cfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return log
}
