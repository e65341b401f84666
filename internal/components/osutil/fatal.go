package osutil

import (
	"log/slog"
	"os"
)

// Fatal logs `message` with the error attached and exits with status 1.
func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
