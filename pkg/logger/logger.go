package logx

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/supplychain-optimizer/server/internal/core"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	// Service is attached to every event when set.
	Service string
}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

// Init configures the global logger. Production emits JSON at info level,
// everything else gets a console writer at debug level.
func Init(opts ...LoggerOpts) {
	o := safe(opts...)

	var ctx zerolog.Context
	if o.Environment.IsProduction() {
		ctx = zerolog.New(os.Stdout).With().Timestamp()
	} else {
		ctx = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller()
	}
	if o.Service != "" {
		ctx = ctx.Str("service", o.Service)
	}

	level := zerolog.DebugLevel
	if o.Environment.IsProduction() {
		level = zerolog.InfoLevel
	}
	log.Logger = ctx.Logger().Level(level)
}

// Logger returns the configured global logger, e.g. for handing to libraries.
func Logger() *zerolog.Logger {
	return &log.Logger
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
