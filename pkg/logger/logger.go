package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init configures the global logger for the given environment.
// development gets a console writer at debug level, everything else JSON at info.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.MessageFieldName = "message"

	level := zerolog.InfoLevel
	var l zerolog.Logger
	if env == "development" || env == "" {
		level = zerolog.DebugLevel
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		l = zerolog.New(os.Stderr)
	}

	if lv := os.Getenv("LOG_LEVEL"); lv != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(lv)); err == nil {
			level = parsed
		}
	}

	log = l.Level(level).With().Timestamp().Logger()
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debug(msg string, args ...any) {
	l := current()
	withFields(l.Debug(), args).Msg(msg)
}

func Info(msg string, args ...any) {
	l := current()
	withFields(l.Info(), args).Msg(msg)
}

func Warn(msg string, args ...any) {
	l := current()
	withFields(l.Warn(), args).Msg(msg)
}

func Error(msg string, args ...any) {
	l := current()
	withFields(l.Error(), args).Msg(msg)
}

// Fatal logs and exits the process.
func Fatal(msg string, args ...any) {
	l := current()
	withFields(l.Fatal(), args).Msg(msg)
}

// withFields turns alternating key/value args into zerolog fields.
// A value without a key is logged under "error" when it is an error, otherwise "detail".
func withFields(ev *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i < len(args); i++ {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			if err, isErr := args[i].(error); isErr {
				ev = ev.Err(err)
				continue
			}
			ev = ev.Interface(fmt.Sprintf("detail_%d", i), args[i])
			continue
		}

		val := args[i+1]
		i++
		if err, isErr := val.(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, val)
	}
	return ev
}
