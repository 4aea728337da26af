package scheduler

import (
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// cronLogger adapts pkg/logger to cron.Logger.
// cron logs every wake-up at Info, so those go to Debug here.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Zap().Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Zap().Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
