package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes messages to the logger instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errMissingRecipient
	}
	n.logger.Info("email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
