// Package logging builds the zap logger of the command line tools
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing errors to stderr and everything
// else to stdout. Debug messages are only written when verbose.
func New(verbose bool) *zap.Logger {
	min := zapcore.InfoLevel
	if verbose {
		min = zapcore.DebugLevel
	}
	return NewWithWriters(min, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

// NewWithWriters splits the output by level between out and errOut
func NewWithWriters(min zapcore.Level, out, errOut zapcore.WriteSyncer) *zap.Logger {
	isErrorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= min
	})
	isInfoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= min
	})

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(config)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, errOut, isErrorLevel),
		zapcore.NewCore(encoder, out, isInfoLevel),
	)
	return zap.New(core, zap.AddCaller())
}
