// Package notify surfaces user-facing notices from the sync layer: a failed
// mutation, a stale refresh, a forced logout. The presentation layer decides
// how to show them; the default implementation logs.
package notify

import "log/slog"

type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Info(msg string)  { n.log.Info("notice", "msg", msg) }
func (n *LogNotifier) Warn(msg string)  { n.log.Warn("notice", "msg", msg) }
func (n *LogNotifier) Error(msg string) { n.log.Error("notice", "msg", msg) }
