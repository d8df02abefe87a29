package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger. Development mode gets the human-readable
// console encoder and debug level; everything else gets JSON at info level.
func New(development bool) *zap.SugaredLogger {
	if development {
		return zap.Must(zap.NewDevelopment()).Sugar()
	}
	return zap.Must(zap.NewProduction()).Sugar()
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
