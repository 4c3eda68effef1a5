package desim

import (
	"io"

	"github.com/sirupsen/logrus"
)

// fastLogger wraps a *logrus.Logger to stamp every line with the current
// simulation time and to skip formatting work entirely when the level is
// disabled, mirroring de_sim's FastLogger.fast_log(msg, sim_time=...)
// wrapper around its own debug_logs manager.
type fastLogger struct {
	log *logrus.Logger
}

func newFastLogger(out io.Writer, level logrus.Level) *fastLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: false})
	return &fastLogger{log: l}
}

// logf writes msg at the given level, annotated with the simulation time,
// only if that level is enabled -- avoiding format-string work on the
// common path where debug logging is off.
func (f *fastLogger) logf(level logrus.Level, simTime float64, format string, args ...any) {
	if f == nil || f.log == nil || !f.log.IsLevelEnabled(level) {
		return
	}
	entry := f.log.WithField("sim_time", simTime)
	switch level {
	case logrus.DebugLevel:
		entry.Debugf(format, args...)
	case logrus.InfoLevel:
		entry.Infof(format, args...)
	case logrus.WarnLevel:
		entry.Warnf(format, args...)
	case logrus.ErrorLevel:
		entry.Errorf(format, args...)
	default:
		entry.Printf(format, args...)
	}
}

func (f *fastLogger) debugf(simTime float64, format string, args ...any) {
	f.logf(logrus.DebugLevel, simTime, format, args...)
}

func (f *fastLogger) infof(simTime float64, format string, args ...any) {
	f.logf(logrus.InfoLevel, simTime, format, args...)
}

func (f *fastLogger) warnf(simTime float64, format string, args ...any) {
	f.logf(logrus.WarnLevel, simTime, format, args...)
}
