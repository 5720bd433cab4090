package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init configures the package logger. Level defaults to info; set
// LOG_LEVEL=debug to see debug output.
func Init() {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	log = zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// withFields attaches trailing key/value pairs to an event. An odd
// trailing value is kept under the "extra" key rather than dropped.
func withFields(ev *zerolog.Event, kv []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		ev = ev.Interface(key, kv[i+1])
	}
	if len(kv)%2 != 0 {
		ev = ev.Interface("extra", kv[len(kv)-1])
	}
	return ev
}

func Info(msg string, kv ...interface{}) {
	withFields(log.Info(), kv).Msg(msg)
}

func Infof(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

func Error(msg string, kv ...interface{}) {
	withFields(log.Error(), kv).Msg(msg)
}

func Errorf(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

func Debug(msg string, kv ...interface{}) {
	withFields(log.Debug(), kv).Msg(msg)
}

func Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

func Warn(msg string, kv ...interface{}) {
	withFields(log.Warn(), kv).Msg(msg)
}

func Warnf(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

func Fatal(msg string) {
	log.Fatal().Msg(msg)
}

func Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(format, v...)
}
