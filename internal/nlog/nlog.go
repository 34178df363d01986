// Package nlog is a small leveled logger for the ipc runtime: stderr by
// default, an optional file sink, timestamped lines. Trimmed from the
// teacher's cmn/nlog (severity levels, Infof/Warningf/Errorf shape) --
// the teacher's mmap-buffered file-rotation machinery is overkill for a
// library and was dropped (see DESIGN.md).
package nlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

func (s severity) String() string {
	switch s {
	case sevWarn:
		return "W"
	case sevErr:
		return "E"
	default:
		return "I"
	}
}

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects all log output; passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
}

func logf(sev severity, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s %s\n", time.Now().Format("15:04:05.000000"), sev, fmt.Sprintf(format, args...))
}

func Infof(format string, args ...any)    { logf(sevInfo, format, args...) }
func Warningf(format string, args ...any) { logf(sevWarn, format, args...) }
func Errorf(format string, args ...any)   { logf(sevErr, format, args...) }

func Infoln(args ...any)    { logf(sevInfo, "%s", fmt.Sprintln(args...)) }
func Warningln(args ...any) { logf(sevWarn, "%s", fmt.Sprintln(args...)) }
func Errorln(args ...any)   { logf(sevErr, "%s", fmt.Sprintln(args...)) }
