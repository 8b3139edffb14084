// Package logging builds the console logger used by the command line tool.
package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Console verbosity levels. LevelQuiet keeps errors only and is selected by -q.
const (
	LevelNone   = "none"
	LevelQuiet  = "quiet"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// ErrUnknownLevel is returned for a level New does not recognize.
var ErrUnknownLevel = errors.New("unknown log level")

// New returns a logger writing info and debug entries to stdout and errors
// to stderr. Warnings go to stdout with the low-priority entries.
func New(level string, stdout, stderr io.Writer) (*zap.Logger, error) {
	var minLow zapcore.Level
	lowEnabled := true

	switch strings.ToLower(level) {
	case LevelNone:
		return zap.NewNop(), nil
	case LevelQuiet:
		lowEnabled = false
	case "", LevelNormal:
		minLow = zapcore.InfoLevel
	case LevelDebug:
		minLow = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	low := zapcore.Core(zapcore.NewNopCore())
	if lowEnabled {
		low = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return minLow <= lvl && lvl < zapcore.ErrorLevel
			}))
	}
	high := zapcore.NewCore(plainErrors{zapcore.NewConsoleEncoder(encoderConfig())}, zapcore.AddSync(stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))

	return zap.New(zapcore.NewTee(high, low)).Named("book2pdf"), nil
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec
}

// plainErrors prints error fields by message only, dropping the
// errorVerbose stack that zap adds for wrapped errors.
type plainErrors struct {
	zapcore.Encoder
}

func (p plainErrors) Clone() zapcore.Encoder {
	return plainErrors{p.Encoder.Clone()}
}

func (p plainErrors) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		out = append(out, f)
	}
	return p.Encoder.EncodeEntry(ent, out)
}
