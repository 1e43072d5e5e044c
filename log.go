package spots

import (
	"io"
	"log"
	"sync/atomic"
)

// discard drops everything. Loggers default to it so that library users opt
// in to output.
var discard = log.New(io.Discard, "", 0)

var defaultLogger atomic.Pointer[log.Logger]

func init() {
	defaultLogger.Store(discard)
}

// SetLogger replaces the package-wide logger used by every Registry,
// Engine, Composer and Controller that was not given its own. nil restores
// the discarding logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = discard
	}
	defaultLogger.Store(l)
}

// NewLogger returns a logger writing to w with the conventional prefix.
func NewLogger(w io.Writer) *log.Logger {
	return log.New(w, "spots: ", log.Ltime|log.Lmicroseconds)
}

// logger is embedded by the stateful types. A nil *log.Logger falls back to
// the package default at call time.
type logger struct {
	l *log.Logger
}

func (lg logger) get() *log.Logger {
	if lg.l != nil {
		return lg.l
	}
	return defaultLogger.Load()
}

func (lg logger) warnf(format string, args ...any) {
	lg.get().Printf("WARN "+format, args...)
}

func (lg logger) debugf(format string, args ...any) {
	lg.get().Printf("DEBUG "+format, args...)
}
