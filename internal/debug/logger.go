package debug

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Logger writes structured debug output to a file so it never corrupts the
// terminal UI. All methods are safe on a disabled (or nil) logger and become
// no-ops.
type Logger struct {
	enabled bool
	zl      zerolog.Logger
}

// NewLogger opens the log file when debugging is enabled. A file open
// failure degrades to a disabled logger rather than killing the game.
func NewLogger(enabled bool, path string) *Logger {
	if !enabled {
		return &Logger{}
	}
	if path == "" {
		path = "debug.log"
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "debug log unavailable: %v\n", err)
		return &Logger{}
	}
	zl := zerolog.New(file).With().Timestamp().Logger()
	zl.Info().Msg("debug mode enabled")
	return &Logger{enabled: true, zl: zl}
}

func (d *Logger) IsEnabled() bool {
	return d != nil && d.enabled
}

func (d *Logger) Printf(format string, args ...any) {
	if d.IsEnabled() {
		d.zl.Debug().Msgf(format, args...)
	}
}

func (d *Logger) Println(args ...any) {
	if d.IsEnabled() {
		d.zl.Debug().Msg(fmt.Sprint(args...))
	}
}

// Err records a non-fatal failure with its error attached.
func (d *Logger) Err(err error, msg string) {
	if d.IsEnabled() {
		d.zl.Error().Err(err).Msg(msg)
	}
}
