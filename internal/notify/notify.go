package notify

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers customer notifications over a channel. The boolean is the
// delivery outcome; implementations report failure by returning false, never
// by panicking or erroring. Unreachable providers are a delivery failure,
// not a program failure.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) bool
	SendSMS(ctx context.Context, phone, message string) bool
}

// LogSender simulates delivery by writing each notification to the log.
// It always succeeds. Swap in a provider-backed Sender for real delivery.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender writing through logger.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(ctx context.Context, to, subject, body string) bool {
	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return true
}

func (s *LogSender) SendSMS(ctx context.Context, phone, message string) bool {
	s.logger.Info("sms sent",
		zap.String("phone", phone),
		zap.String("message", message),
	)
	return true
}
