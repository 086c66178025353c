// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. Debug lowers the level from warn to
// debug; structured switches from console output to JSON lines.
func Setup(debug, structured bool) {
	SetupWriter(os.Stderr, debug, structured)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(w io.Writer, debug, structured bool) {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !structured {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
			NoColor:    !isTerminal(w),
		}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// Silence turns logging off while a full-screen UI owns the terminal
func Silence() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
