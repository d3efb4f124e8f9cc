package dashboard

import (
	"github.com/Xantonozar/billkhata-go/logger"
	"github.com/Xantonozar/billkhata-go/types"
)

// LogSink is the headless NotificationSink: confirmations and rollback
// notices go to the structured log instead of a toast.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Success(message string) {
	logger.GetLogger().Named("toast").Infow(message, "kind", "success")
}

func (s *LogSink) Error(message string) {
	logger.GetLogger().Named("toast").Warnw(message, "kind", "error")
}

var _ types.NotificationSink = (*LogSink)(nil)
