package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config options du logger.
type Config struct {
	Env   string    // development → console lisible; sinon JSON
	Level string    // trace, debug, info, warn, error
	Out   io.Writer // os.Stderr par défaut
}

// New construit un logger zerolog horodaté.
// La sortie standard reste réservée au rapport.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stderr
	if cfg.Out != nil {
		w = cfg.Out
	}
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel retombe sur info pour toute valeur inconnue.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRun ajoute l'identifiant d'exécution et le mode à chaque entrée.
func WithRun(l zerolog.Logger, runID, mode string) zerolog.Logger {
	return l.With().Str("run_id", runID).Str("mode", mode).Logger()
}
