package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the level and output format of the process logger.
type Config struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL"`
	Pretty bool   `mapstructure:"pretty" envconfig:"PRETTY"`
}

// DefaultConfig logs JSON lines at info level.
func DefaultConfig() Config {
	return Config{Level: "info"}
}

// Init configures the global zerolog logger. If w is nil, stdout is used
// (stderr for the pretty console writer).
func Init(cfg Config, w ...io.Writer) {
	var out io.Writer = os.Stdout
	if len(w) > 0 && w[0] != nil {
		out = w[0]
	}

	if cfg.Pretty {
		cw := zerolog.NewConsoleWriter()
		if len(w) > 0 && w[0] != nil {
			cw.Out = out
		}
		out = cw
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(level)
}

// ZerologLogger implements Logger on top of a zerolog.Logger.
type ZerologLogger struct {
	zl zerolog.Logger
}

// New returns a component-scoped logger derived from the global zerolog logger.
func New(component string) *ZerologLogger {
	return &ZerologLogger{zl: log.Logger.With().Str("component", component).Logger()}
}

// NewZerolog wraps an existing zerolog.Logger.
func NewZerolog(zl zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *ZerologLogger {
	return &ZerologLogger{zl: zerolog.Nop()}
}

func (z *ZerologLogger) Debug(msg string, fields ...Field) {
	emit(z.zl.Debug(), msg, fields)
}

func (z *ZerologLogger) Info(msg string, fields ...Field) {
	emit(z.zl.Info(), msg, fields)
}

func (z *ZerologLogger) Warn(msg string, fields ...Field) {
	emit(z.zl.Warn(), msg, fields)
}

func (z *ZerologLogger) Error(msg string, fields ...Field) {
	emit(z.zl.Error(), msg, fields)
}

func (z *ZerologLogger) With(fields ...Field) Logger {
	ctx := z.zl.With()
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			ctx = ctx.AnErr(f.Key, err)
			continue
		}
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

func emit(e *zerolog.Event, msg string, fields []Field) {
	if e == nil {
		return
	}
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			e = e.AnErr(f.Key, err)
			continue
		}
		e = e.Interface(f.Key, f.Value)
	}
	e.Msg(msg)
}
