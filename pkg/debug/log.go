// Package debug routes engine debug output to a host writer
package debug

import (
	"fmt"
	"io"
	"log"

	"github.com/recera/synapse/pkg/scheduler"
)

var logger *log.Logger

// EnableLogging enables debug logging for the scheduler
func EnableLogging(w io.Writer) {
	logger = log.New(w, "[debug] ", log.Ltime|log.Lmicroseconds)
	scheduler.SetDebugLog(Log)
}

// DisableLogging stops debug output
func DisableLogging() {
	logger = nil
	scheduler.SetDebugLog(nil)
}

// Log logs a message when debug logging is enabled
func Log(args ...interface{}) {
	if logger != nil {
		logger.Println(args...)
	}
}

// Logf logs a formatted message when debug logging is enabled
func Logf(format string, args ...interface{}) {
	if logger != nil {
		logger.Output(2, fmt.Sprintf(format, args...))
	}
}
