package logging

import (
	"go.uber.org/zap"
)

var (
	// L is the default logger of the application
	L *zap.Logger
)

func init() {
	L, _ = zap.NewProduction(zap.WithCaller(false))
}

// EnableDebug replaces the default logger with a development logger that
// shows debug level logs. It should be called once, right after flag parsing.
func EnableDebug() {
	L, _ = zap.NewDevelopment()
}
