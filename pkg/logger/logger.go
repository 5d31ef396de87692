package logger

import (
	"io"
	"os"

	"github.com/inconshreveable/log15"
)

var root = log15.New()

func init() {
	root.SetHandler(log15.StreamHandler(os.Stderr, log15.TerminalFormat()))
}

// Init configures the process logger. Production writes JSON records at info
// level to stdout; every other environment gets the terminal format at debug.
func Init(environment string) {
	if environment == "production" {
		SetOutput(os.Stdout, log15.LvlInfo, log15.JsonFormat())
		return
	}
	SetOutput(os.Stderr, log15.LvlDebug, log15.TerminalFormat())
}

// SetOutput swaps the handler used by every logging call.
func SetOutput(w io.Writer, level log15.Lvl, format log15.Format) {
	root.SetHandler(log15.LvlFilterHandler(level, log15.StreamHandler(w, format)))
}

// With returns a child logger carrying the given key/value pairs.
func With(args ...any) log15.Logger {
	return root.New(normalize(args)...)
}

func Debug(msg string, args ...any) {
	root.Debug(msg, normalize(args)...)
}

func Info(msg string, args ...any) {
	root.Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	root.Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	root.Error(msg, normalize(args)...)
}

// Fatal logs at critical level and exits the process.
func Fatal(msg string, args ...any) {
	root.Crit(msg, normalize(args)...)
	os.Exit(1)
}

// normalize lets callers pass a bare error, e.g. logger.Error("msg", err).
func normalize(args []any) []any {
	if len(args)%2 == 0 {
		return args
	}
	if _, ok := args[0].(error); ok {
		return append([]any{"error"}, args...)
	}
	return append(args[:len(args):len(args)], "!MISSING")
}
