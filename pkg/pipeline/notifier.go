package pipeline

import "go.uber.org/zap"

// Notifier surfaces transient messages (toasts) that do not block the form.
type Notifier interface {
	Error(message string)
	Success(message string)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Error(message string) {
	n.logger().Warn("notify", zap.String("level", "error"), zap.String("message", message))
}

func (n LogNotifier) Success(message string) {
	n.logger().Info("notify", zap.String("level", "success"), zap.String("message", message))
}

func (n LogNotifier) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}

// NotifierFuncs adapts plain functions into a Notifier.
type NotifierFuncs struct {
	OnError   func(string)
	OnSuccess func(string)
}

func (n NotifierFuncs) Error(message string) {
	if n.OnError != nil {
		n.OnError(message)
	}
}

func (n NotifierFuncs) Success(message string) {
	if n.OnSuccess != nil {
		n.OnSuccess(message)
	}
}
