package around

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// Sets the logger for diagnostics of skipped members (silent by default).
// Should be called before any Install.
func SetLogger(l zerolog.Logger) {
	logger = l
}
