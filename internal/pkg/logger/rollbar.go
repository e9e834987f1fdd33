package logger

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"
)

// rollbarReporter is the subset of *rollbar.Client the hook needs.
type rollbarReporter interface {
	MessageWithExtras(level string, msg string, extras map[string]interface{})
}

// RollbarHook forwards error-and-above log events to Rollbar.
type RollbarHook struct {
	client rollbarReporter
}

// NewRollbarHook builds a hook backed by a dedicated Rollbar client.
// The returned close func flushes pending items and must be called on shutdown.
func NewRollbarHook(token, environment, codeVersion string) (*RollbarHook, func()) {
	client := rollbar.New(token, environment, codeVersion, "", "")
	return &RollbarHook{client: client}, func() {
		client.Wait()
		_ = client.Close()
	}
}

// Run implements zerolog.Hook
func (h *RollbarHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level < zerolog.ErrorLevel || msg == "" {
		return
	}

	rbLevel := rollbar.ERR
	if level >= zerolog.FatalLevel {
		rbLevel = rollbar.CRIT
	}
	h.client.MessageWithExtras(rbLevel, msg, map[string]interface{}{"level": level.String()})
}
