package logger

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"
)

// Logger writes tagged entries for one subsystem to a Backend.
type Logger struct {
	level   Level
	tag     string
	backend *Backend
}

// Level returns the current level of the logger.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32((*uint32)(&l.level)))
}

// SetLevel changes the level of the logger.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32((*uint32)(&l.level), uint32(level))
}

// Backend returns the backend the logger writes to.
func (l *Logger) Backend() *Backend {
	return l.backend
}

// Tracef formats and writes an entry at LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) { l.Writef(LevelTrace, format, args...) }

// Debugf formats and writes an entry at LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) { l.Writef(LevelDebug, format, args...) }

// Infof formats and writes an entry at LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) { l.Writef(LevelInfo, format, args...) }

// Warnf formats and writes an entry at LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) { l.Writef(LevelWarn, format, args...) }

// Errorf formats and writes an entry at LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) { l.Writef(LevelError, format, args...) }

// Criticalf formats and writes an entry at LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.Writef(LevelCritical, format, args...)
}

// Trace writes its arguments at LevelTrace.
func (l *Logger) Trace(args ...interface{}) { l.Write(LevelTrace, args...) }

// Debug writes its arguments at LevelDebug.
func (l *Logger) Debug(args ...interface{}) { l.Write(LevelDebug, args...) }

// Info writes its arguments at LevelInfo.
func (l *Logger) Info(args ...interface{}) { l.Write(LevelInfo, args...) }

// Warn writes its arguments at LevelWarn.
func (l *Logger) Warn(args ...interface{}) { l.Write(LevelWarn, args...) }

// Error writes its arguments at LevelError.
func (l *Logger) Error(args ...interface{}) { l.Write(LevelError, args...) }

// Writef formats and writes an entry at the given level if the logger is
// enabled for it.
func (l *Logger) Writef(level Level, format string, args ...interface{}) {
	if level < l.Level() || !l.backend.IsRunning() {
		return
	}
	l.push(level, fmt.Sprintf(format, args...))
}

// Write writes its arguments, formatted as by fmt.Sprint, at the given
// level if the logger is enabled for it.
func (l *Logger) Write(level Level, args ...interface{}) {
	if level < l.Level() || !l.backend.IsRunning() {
		return
	}
	l.push(level, fmt.Sprint(args...))
}

func (l *Logger) push(level Level, message string) {
	buf := &bytes.Buffer{}
	buf.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	buf.WriteString(" [")
	buf.WriteString(level.String())
	buf.WriteString("] ")
	buf.WriteString(l.tag)
	if l.backend.flag&(LogFlagShortFile|LogFlagLongFile) != 0 {
		buf.WriteByte(' ')
		buf.WriteString(callsite(l.backend.flag))
	}
	buf.WriteString(": ")
	buf.WriteString(message)
	if len(message) == 0 || message[len(message)-1] != '\n' {
		buf.WriteByte('\n')
	}
	l.backend.write(logEntry{log: buf.Bytes(), level: level})
}

// callsite returns file:line of the caller of the exported logging method.
func callsite(flag uint32) string {
	_, file, line, ok := runtime.Caller(4)
	if !ok {
		return "???:0"
	}
	if flag&LogFlagShortFile != 0 {
		file = filepath.Base(file)
	}
	return fmt.Sprintf("%s:%d", file, line)
}
