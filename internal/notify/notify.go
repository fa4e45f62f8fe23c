// Package notify delivers user-facing notifications emitted by the engine.
package notify

import (
	"go.uber.org/zap"
)

// Sink receives fire-and-forget notifications; implementations must not block
type Sink interface {
	Notify(title, body string, metadata map[string]string)
}

// Noop discards notifications
type Noop struct{}

func (Noop) Notify(string, string, map[string]string) {}

// ZapSink writes notifications to the structured log
type ZapSink struct {
	logger *zap.Logger
}

var (
	_ Sink = Noop{}
	_ Sink = (*ZapSink)(nil)
)

// NewZapSink creates a sink that logs at info level
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger.Named("notify")}
}

func (s *ZapSink) Notify(title, body string, metadata map[string]string) {
	fields := make([]zap.Field, 0, len(metadata)+2)
	fields = append(fields, zap.String("title", title), zap.String("body", body))
	for k, v := range metadata {
		fields = append(fields, zap.String(k, v))
	}
	s.logger.Info("notification", fields...)
}

// Fanout delivers to several sinks in order
type Fanout []Sink

func (f Fanout) Notify(title, body string, metadata map[string]string) {
	for _, s := range f {
		if s != nil {
			s.Notify(title, body, metadata)
		}
	}
}
