// Package logger is the process-wide leveled logger for the document
// service and its tools. It writes plain timestamped lines to stdout;
// the minimum level comes from LOG_LEVEL at startup.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	}
	return "INFO"
}

var (
	current atomic.Int32
	out     = log.New(os.Stdout, "", 0)
)

func init() {
	current.Store(int32(LevelInfo))
}

// Init sets the minimum level that gets written. Accepts debug, info,
// warn(ing), error and fatal in any case; anything else keeps the
// default of info.
func Init(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		current.Store(int32(LevelDebug))
	case "warn", "warning":
		current.Store(int32(LevelWarn))
	case "error":
		current.Store(int32(LevelError))
	case "fatal":
		current.Store(int32(LevelFatal))
	default:
		current.Store(int32(LevelInfo))
	}
}

// SetOutput redirects log lines, mainly so tests can capture them.
func SetOutput(w io.Writer) {
	out.SetOutput(w)
}

func write(l Level, format string, args ...interface{}) {
	if int32(l) < current.Load() {
		return
	}
	out.Printf("%s [%s] %s", time.Now().Format(time.RFC3339), l, fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...interface{}) { write(LevelDebug, format, args...) }
func Infof(format string, args ...interface{})  { write(LevelInfo, format, args...) }
func Warnf(format string, args ...interface{})  { write(LevelWarn, format, args...) }
func Errorf(format string, args ...interface{}) { write(LevelError, format, args...) }

// Fatalf logs the line and exits the process.
func Fatalf(format string, args ...interface{}) {
	write(LevelFatal, format, args...)
	os.Exit(1)
}

func Debug(msg string) { Debugf("%s", msg) }
func Info(msg string)  { Infof("%s", msg) }
func Warn(msg string)  { Warnf("%s", msg) }
func Error(msg string) { Errorf("%s", msg) }
