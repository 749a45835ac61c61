// Package logging wires a single decred/slog backend for the process and
// hands out per-subsystem tagged loggers, the way the retrieval pack's
// card-game servers do (one backend, Logger("TAG") per component).
package logging

import (
	"os"

	"github.com/decred/slog"
)

var (
	backend      = slog.NewBackend(os.Stdout)
	defaultLevel = slog.LevelInfo
)

// SetLevel controls the level applied to every logger subsequently
// returned by Logger. Call it once at startup, before constructing
// components.
func SetLevel(lvl slog.Level) {
	defaultLevel = lvl
}

// Logger returns a tagged logger for subsystem tag (e.g. "ROOM", "HUB",
// "HTTP", "AUTH", "AUDIT").
func Logger(tag string) slog.Logger {
	l := backend.Logger(tag)
	l.SetLevel(defaultLevel)
	return l
}
