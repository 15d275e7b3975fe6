package timestats

import (
	"fmt"
	"os"
	"time"
)

var debugEnabled = os.Getenv("TIMESTATS_DEBUG") == "1"

// debugf writes a trace line to stderr if TIMESTATS_DEBUG=1
func debugf(format string, args ...any) {
	if !debugEnabled {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "[TIMESTATS %s] %s\n", timestamp, msg)
}
