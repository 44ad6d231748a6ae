// Package logx is a thin wrapper over the standard log package with
// leveled prefixes. Nothing in the example pack imports a structured
// logging library, so this mirrors the teacher's own habit of routing
// everything through fmt.Fprintf/log to os.Stderr rather than reaching
// for zerolog/zap/logrus.
package logx

import (
	"fmt"
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

func Info(format string, args ...any)  { std.Printf("[INFO] "+format, args...) }
func Warn(format string, args ...any)  { std.Printf("[WARN] "+format, args...) }
func Error(format string, args ...any) { std.Printf("[ERROR] "+format, args...) }

// Fatal logs then exits 2, the internal-error exit code §6 defines for the
// CLI surface.
func Fatal(format string, args ...any) {
	std.Printf("[ERROR] "+format, args...)
	os.Exit(2)
}

// ErrorLine renders an error the way §7 requires in text mode:
// "[ERROR] <kind>: <message>".
func ErrorLine(kind, message string) string {
	return fmt.Sprintf("[ERROR] %s: %s", kind, message)
}
