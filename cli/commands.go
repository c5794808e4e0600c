// Package cli implements the pdfcertify command line.
package cli

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/digitorus/pdfcertify"
	urfave "github.com/urfave/cli/v3"
)

// NewCommand returns the root command. Normal output goes to stdout,
// diagnostics and logs to stderr.
func NewCommand(stdout, stderr io.Writer) *urfave.Command {
	return &urfave.Command{
		Name:      "pdfcertify",
		Usage:     "append a certification page to PDF documents",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*urfave.Command{
			appendCommand(),
			infoCommand(),
			hashPasswordCommand(),
		},
	}
}

// newLogger builds a JSON logger at info level, or a console logger at debug
// level when verbose is set.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if verbose {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel))
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.InfoLevel))
}

// userError carries the message shown to the user while keeping the cause
// available to errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }

func (e *userError) Unwrap() error { return e.err }

func userErr(err error) error {
	return &userError{msg: pdfcertify.UserMessage(err), err: err}
}
